package api

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// StatusResponse describes the CIDR cache backing this server.
type StatusResponse struct {
	CachePath string `json:"cache_path"`

	// CacheAgeSeconds is -1 when the cache file does not exist yet.
	CacheAgeSeconds int64 `json:"cache_age_seconds"`

	IntervalSeconds int64    `json:"interval_seconds"`
	Entries         int      `json:"entries"`
	Stale           bool     `json:"stale"`
	Providers       []string `json:"providers"`
	Resolver        string   `json:"resolver"`
}

// CheckResponse is the verdict for a single host.
type CheckResponse struct {
	Host    string `json:"host"`
	Address string `json:"address"`
	CDN     bool   `json:"cdn"`

	// Lines holds exactly what the CLI would print for this host; empty
	// when the host is suppressed.
	Lines []string `json:"lines"`
}

// RefreshResponse reports the outcome of a forced cache refresh.
type RefreshResponse struct {
	RangesFetched int `json:"ranges_fetched"`
	Entries       int `json:"entries"`
}
