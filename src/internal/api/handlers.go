package api

import (
	"encoding/json"
	"net/http"
	"net/netip"
	"strconv"
	"sync"

	"github.com/cdnsift/cdnsift/src/internal/cidr"
	"github.com/cdnsift/cdnsift/src/internal/config"
	"github.com/cdnsift/cdnsift/src/internal/log"
	"github.com/cdnsift/cdnsift/src/internal/output"
	"github.com/cdnsift/cdnsift/src/internal/pipeline"
	"github.com/cdnsift/cdnsift/src/internal/ranges"
)

// Handler manages all API endpoints and their shared state.
type Handler struct {
	cfg      *config.Config
	cache    *ranges.Cache
	fetcher  *ranges.Fetcher
	lookup   pipeline.LookupFunc
	resolver string

	mu  sync.RWMutex
	set *cidr.Set
}

// NewHandler creates an API handler around an already-loaded CIDR set.
// resolver names the DNS server used for lookups, for the status endpoint.
func NewHandler(cfg *config.Config, cache *ranges.Cache, fetcher *ranges.Fetcher, set *cidr.Set, lookup pipeline.LookupFunc, resolver string) *Handler {
	return &Handler{
		cfg:      cfg,
		cache:    cache,
		fetcher:  fetcher,
		lookup:   lookup,
		resolver: resolver,
		set:      set,
	}
}

// currentSet returns the CIDR set in use for classification.
func (h *Handler) currentSet() *cidr.Set {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.set
}

// swapSet replaces the CIDR set used for classification.
func (h *Handler) swapSet(set *cidr.Set) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set = set
}

// GetStatus reports the cache location, its age against the configured
// interval, and the provider list.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ageSeconds := int64(-1)
	if age, err := h.cache.Age(); err == nil {
		ageSeconds = int64(age.Seconds())
	}

	state, err := h.cache.State()
	if err != nil {
		WriteInternalError(w, "Failed to inspect cache: "+err.Error())
		return
	}

	writeJSONData(w, StatusResponse{
		CachePath:       h.cache.Path(),
		CacheAgeSeconds: ageSeconds,
		IntervalSeconds: int64(h.cfg.Interval),
		Entries:         h.currentSet().Len(),
		Stale:           state != ranges.StateFresh,
		Providers:       h.cfg.Providers,
		Resolver:        h.resolver,
	})
}

// CheckHost classifies a single host. Query parameters mirror the CLI:
// "host" (required), "ports" (comma-separated) and "append" (bool).
func (h *Handler) CheckHost(w http.ResponseWriter, r *http.Request) {
	host := r.URL.Query().Get("host")
	if host == "" {
		WriteInvalidRequest(w, "Missing 'host' query parameter")
		return
	}

	var ports []uint16
	if raw := r.URL.Query().Get("ports"); raw != "" {
		parsed, err := output.ParsePorts(raw)
		if err != nil {
			WriteInvalidRequest(w, "Invalid 'ports' query parameter: "+err.Error())
			return
		}
		ports = parsed
	}

	appendCDN := false
	if raw := r.URL.Query().Get("append"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			WriteInvalidRequest(w, "Invalid 'append' query parameter: "+raw)
			return
		}
		appendCDN = parsed
	}

	policy, err := output.NewPolicy(ports, appendCDN, h.cfg.OutputFormat)
	if err != nil {
		WriteInternalError(w, "Failed to build output policy: "+err.Error())
		return
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		addr, err = h.lookup(r.Context(), host)
		if err != nil {
			WriteResolveFailed(w, "Host did not resolve: "+err.Error())
			return
		}
	}

	isCDN := h.currentSet().Contains(addr)
	lines := policy.Lines(host, isCDN)
	if lines == nil {
		lines = []string{}
	}

	writeJSONData(w, CheckResponse{
		Host:    host,
		Address: addr.String(),
		CDN:     isCDN,
		Lines:   lines,
	})
}

// Refresh forces a provider fetch and swaps the classification set on
// success. The old cache and set stay in place when the fetch fails.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	count, err := h.fetcher.Fetch(r.Context(), h.cache.Path())
	if err != nil {
		WriteServiceError(w, "Refresh failed: "+err.Error())
		return
	}

	set, err := h.cache.Load()
	if err != nil {
		WriteInternalError(w, "Failed to load refreshed cache: "+err.Error())
		return
	}
	h.swapSet(set)
	log.Infof("Cache refreshed via API: %d ranges", count)

	writeJSONData(w, RefreshResponse{
		RangesFetched: count,
		Entries:       set.Len(),
	})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}
