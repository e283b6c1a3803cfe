package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cdnsift/cdnsift/src/internal/config"
	"github.com/cdnsift/cdnsift/src/internal/errors"
	"github.com/cdnsift/cdnsift/src/internal/pipeline"
	"github.com/cdnsift/cdnsift/src/internal/ranges"
)

// newTestHandler builds a handler around a seeded cache file.
func newTestHandler(t *testing.T, rangeLines []string, lookup pipeline.LookupFunc, providers []string) *Handler {
	t.Helper()

	cachePath := filepath.Join(t.TempDir(), "cidr.txt")
	content := strings.Join(rangeLines, "\n") + "\n"
	if err := os.WriteFile(cachePath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to seed cache: %v", err)
	}

	cfg := &config.Config{
		Providers: providers,
		Interval:  config.DefaultInterval,
	}
	cache := ranges.NewCache(cachePath, cfg.Interval.Duration())
	set, err := cache.Load()
	if err != nil {
		t.Fatalf("Failed to load cache: %v", err)
	}

	return NewHandler(cfg, cache, ranges.NewFetcher(providers), set, lookup, "127.0.0.53:53")
}

func staticLookup(addrs map[string]string) pipeline.LookupFunc {
	return func(ctx context.Context, host string) (netip.Addr, error) {
		ip, ok := addrs[host]
		if !ok {
			return netip.Addr{}, errors.New(errors.ErrCodeResolve, "no A records for "+host)
		}
		return netip.MustParseAddr(ip), nil
	}
}

// doRequest plays a request through the full middleware chain from a
// loopback client address.
func doRequest(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:54321"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode envelope from %q: %v", rec.Body.String(), err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("Failed to decode data from %q: %v", rec.Body.String(), err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error from %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, []string{"1.2.3.0/24"}, staticLookup(nil), nil)
	server := NewServer("127.0.0.1:0", h)

	rec := doRequest(server.Router(), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Expected OK body, got %q", rec.Body.String())
	}
}

func TestStatusEndpoint(t *testing.T) {
	providers := []string{"https://cidr.example/v4"}
	h := newTestHandler(t, []string{"1.2.3.0/24", "5.6.7.0/24"}, staticLookup(nil), providers)
	server := NewServer("127.0.0.1:0", h)

	rec := doRequest(server.Router(), http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status StatusResponse
	decodeData(t, rec, &status)

	if status.Entries != 2 {
		t.Errorf("Expected 2 entries, got %d", status.Entries)
	}
	if status.Stale {
		t.Error("Expected fresh cache")
	}
	if status.IntervalSeconds != config.DefaultInterval {
		t.Errorf("Expected interval %d, got %d", config.DefaultInterval, status.IntervalSeconds)
	}
	if status.CacheAgeSeconds < 0 {
		t.Errorf("Expected non-negative cache age, got %d", status.CacheAgeSeconds)
	}
	if len(status.Providers) != 1 || status.Providers[0] != providers[0] {
		t.Errorf("Expected providers %v, got %v", providers, status.Providers)
	}
	if status.Resolver != "127.0.0.53:53" {
		t.Errorf("Expected resolver address, got %q", status.Resolver)
	}
}

func TestCheckEndpoint(t *testing.T) {
	lookup := staticLookup(map[string]string{
		"cdn.example":   "1.2.3.50",
		"plain.example": "203.0.113.9",
	})
	h := newTestHandler(t, []string{"1.2.3.0/24"}, lookup, nil)
	server := NewServer("127.0.0.1:0", h)

	tests := []struct {
		name        string
		target      string
		wantCDN     bool
		wantAddress string
		wantLines   []string
	}{
		{
			name:        "cdn host suppressed by default",
			target:      "/api/v1/check?host=cdn.example",
			wantCDN:     true,
			wantAddress: "1.2.3.50",
			wantLines:   []string{},
		},
		{
			name:        "cdn host with append",
			target:      "/api/v1/check?host=cdn.example&append=true",
			wantCDN:     true,
			wantAddress: "1.2.3.50",
			wantLines:   []string{"cdn.example"},
		},
		{
			name:        "cdn host with ports and append",
			target:      "/api/v1/check?host=cdn.example&ports=8080&append=true",
			wantCDN:     true,
			wantAddress: "1.2.3.50",
			wantLines:   []string{"cdn.example:80", "cdn.example:443"},
		},
		{
			name:        "plain host with ports",
			target:      "/api/v1/check?host=plain.example&ports=80,8080",
			wantCDN:     false,
			wantAddress: "203.0.113.9",
			wantLines:   []string{"plain.example:80", "plain.example:8080"},
		},
		{
			name:        "ip literal bypasses resolution",
			target:      "/api/v1/check?host=1.2.3.4&append=true",
			wantCDN:     true,
			wantAddress: "1.2.3.4",
			wantLines:   []string{"1.2.3.4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(server.Router(), http.MethodGet, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var check CheckResponse
			decodeData(t, rec, &check)

			if check.CDN != tt.wantCDN {
				t.Errorf("Expected cdn=%v, got %v", tt.wantCDN, check.CDN)
			}
			if check.Address != tt.wantAddress {
				t.Errorf("Expected address %s, got %s", tt.wantAddress, check.Address)
			}
			if len(check.Lines) != len(tt.wantLines) {
				t.Fatalf("Expected lines %v, got %v", tt.wantLines, check.Lines)
			}
			for i := range check.Lines {
				if check.Lines[i] != tt.wantLines[i] {
					t.Errorf("Expected lines %v, got %v", tt.wantLines, check.Lines)
					break
				}
			}
		})
	}
}

func TestCheckEndpoint_Errors(t *testing.T) {
	h := newTestHandler(t, []string{"1.2.3.0/24"}, staticLookup(nil), nil)
	server := NewServer("127.0.0.1:0", h)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantErr  ErrorCode
	}{
		{"missing host", "/api/v1/check", http.StatusBadRequest, ErrCodeInvalidRequest},
		{"bad ports", "/api/v1/check?host=x.example&ports=http", http.StatusBadRequest, ErrCodeInvalidRequest},
		{"bad append", "/api/v1/check?host=x.example&append=maybe", http.StatusBadRequest, ErrCodeInvalidRequest},
		{"unresolvable host", "/api/v1/check?host=ghost.example", http.StatusNotFound, ErrCodeResolveFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(server.Router(), http.MethodGet, tt.target)
			if rec.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if apiErr := decodeError(t, rec); apiErr.Code != tt.wantErr {
				t.Errorf("Expected error code %s, got %s", tt.wantErr, apiErr.Code)
			}
		})
	}
}

func TestRefreshEndpoint_SwapsSet(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("5.6.7.0/24\n"))
	}))
	defer provider.Close()

	h := newTestHandler(t, []string{"1.2.3.0/24"}, staticLookup(nil), []string{provider.URL})
	server := NewServer("127.0.0.1:0", h)

	rec := doRequest(server.Router(), http.MethodPost, "/api/v1/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var refresh RefreshResponse
	decodeData(t, rec, &refresh)
	if refresh.RangesFetched != 1 {
		t.Errorf("Expected 1 fetched range, got %d", refresh.RangesFetched)
	}
	if refresh.Entries != 1 {
		t.Errorf("Expected 1 entry after refresh, got %d", refresh.Entries)
	}

	// Classification must use the refreshed set.
	rec = doRequest(server.Router(), http.MethodGet, "/api/v1/check?host=5.6.7.9&append=true")
	var check CheckResponse
	decodeData(t, rec, &check)
	if !check.CDN {
		t.Error("Expected 5.6.7.9 to match the refreshed range")
	}
}

func TestRefreshEndpoint_FailureKeepsOldSet(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer provider.Close()

	h := newTestHandler(t, []string{"1.2.3.0/24"}, staticLookup(nil), []string{provider.URL})
	server := NewServer("127.0.0.1:0", h)

	rec := doRequest(server.Router(), http.MethodPost, "/api/v1/refresh")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if apiErr := decodeError(t, rec); apiErr.Code != ErrCodeServiceError {
		t.Errorf("Expected service_error, got %s", apiErr.Code)
	}

	// The old set keeps serving checks.
	rec = doRequest(server.Router(), http.MethodGet, "/api/v1/check?host=1.2.3.4&append=true")
	var check CheckResponse
	decodeData(t, rec, &check)
	if !check.CDN {
		t.Error("Expected the pre-refresh range to keep matching")
	}
}

func TestPrivateSubnetOnly(t *testing.T) {
	h := newTestHandler(t, []string{"1.2.3.0/24"}, staticLookup(nil), nil)
	server := NewServer("127.0.0.1:0", h)

	// httptest.NewRequest defaults RemoteAddr to 192.0.2.1, which is not
	// a private address.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != ErrCodeForbidden {
		t.Errorf("Expected forbidden, got %s", apiErr.Code)
	}
}
