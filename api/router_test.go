package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/serprank/cache"
	"github.com/use-agent/serprank/config"
	"github.com/use-agent/serprank/models"
	"github.com/use-agent/serprank/provider"
	"github.com/use-agent/serprank/rank"
)

const testKey = "secret"

const bingPage = `<html><body>
	<li class="b_algo"><a href="https://other.com">o</a></li>
	<li class="b_algo"><a href="https://www.example.com/page">e</a></li>
</body></html>`

type fixture struct {
	server *httptest.Server
	fetchs atomic.Int32
	err    atomic.Pointer[models.RankError]
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	f := &fixture{}

	fetch := func(ctx context.Context, req provider.PageRequest) (string, error) {
		f.fetchs.Add(1)
		if e := f.err.Load(); e != nil {
			return "", e
		}
		return bingPage, nil
	}
	d := provider.NewDispatcher(
		provider.Strategy{Provider: models.ProviderBing, Fetch: fetch, Extract: provider.ExtractBing},
		provider.Strategy{Provider: models.ProviderGoogle, SingleRequest: true, Fetch: fetch, Extract: provider.ExtractGoogle},
	)

	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Auth.APIKeys = []string{testKey}
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000
	if mutate != nil {
		mutate(cfg)
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	cc := cache.New(cache.Options{MaxEntries: cfg.Cache.MaxEntries})
	svc := rank.NewService(d, cc, rank.Options{Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	f.server = httptest.NewServer(NewRouter(ctx, svc, cfg, cc, logger, time.Now()))
	t.Cleanup(func() {
		f.server.Close()
		cancel()
		cc.Close()
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, query url.Values, header http.Header) (*http.Response, map[string]any) {
	t.Helper()
	u := f.server.URL + path
	if query != nil {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-API-Key", testKey)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && method != http.MethodOptions {
		t.Fatalf("decode body: %v", err)
	}
	return resp, body
}

func searchQuery(provider string) url.Values {
	return url.Values{
		"keywords": {"best widgets"},
		"url":      {"example.com"},
		"provider": {provider},
	}
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth_NoAuth(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/v1/health", nil, http.Header{"X-Api-Key": {""}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
	stats, _ := body["cache_stats"].(map[string]any)
	if stats["max_entries"] != float64(1000) {
		t.Errorf("cache_stats = %v", stats)
	}
}

func TestProviders(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/v1/providers", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	list, _ := body["providers"].([]any)
	if len(list) != 2 {
		t.Fatalf("providers = %v", body)
	}
	first, _ := list[0].(map[string]any)
	if first["id"] != float64(0) || first["name"] != "Google" {
		t.Errorf("first provider = %v", first)
	}
}

func TestSearch_MissThenHit(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/v1/search", searchQuery("bing"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["positions"] != "2" || body["cache_status"] != "miss" || body["provider"] != "Bing" {
		t.Errorf("first body = %v", body)
	}

	_, body = f.do(t, http.MethodGet, "/api/v1/search", searchQuery("1"), nil)
	if body["positions"] != "2" || body["cache_status"] != "hit" {
		t.Errorf("second body = %v", body)
	}
	if n := f.fetchs.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    url.Values
		fetchErr *models.RankError
		status   int
		code     string
	}{
		{
			name:   "missing keywords",
			query:  url.Values{"url": {"example.com"}},
			status: http.StatusBadRequest,
			code:   models.ErrCodeInvalidInput,
		},
		{
			name:   "max_results out of range",
			query:  url.Values{"keywords": {"x"}, "url": {"example.com"}, "max_results": {"5000"}},
			status: http.StatusBadRequest,
			code:   models.ErrCodeInvalidInput,
		},
		{
			name:   "unknown provider name",
			query:  searchQuery("yahoo"),
			status: http.StatusBadRequest,
			code:   models.ErrCodeInvalidInput,
		},
		{
			name:   "unknown provider id",
			query:  searchQuery("7"),
			status: http.StatusBadRequest,
			code:   models.ErrCodeUnsupportedProvider,
		},
		{
			name:     "provider failure",
			query:    searchQuery("google"),
			fetchErr: &models.RankError{Code: models.ErrCodeFetch, Message: "provider returned HTTP 429", StatusCode: 429},
			status:   http.StatusBadGateway,
			code:     models.ErrCodeFetch,
		},
		{
			name:     "provider timeout",
			query:    searchQuery("google"),
			fetchErr: models.NewRankError(models.ErrCodeTimeout, "fetch deadline exceeded", context.DeadlineExceeded),
			status:   http.StatusGatewayTimeout,
			code:     models.ErrCodeTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.fetchErr != nil {
				f.err.Store(tt.fetchErr)
			}

			resp, body := f.do(t, http.MethodGet, "/api/v1/search", tt.query, nil)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.status, body)
			}
			if got := errorCode(body); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
			if body["success"] != false {
				t.Errorf("success = %v", body["success"])
			}
		})
	}
}

func TestSearch_FailureIsNotCached(t *testing.T) {
	f := newFixture(t, nil)
	f.err.Store(models.NewRankError(models.ErrCodeFetch, "network failure", nil))

	resp, _ := f.do(t, http.MethodGet, "/api/v1/search", searchQuery("bing"), nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	f.err.Store(nil)
	_, body := f.do(t, http.MethodGet, "/api/v1/search", searchQuery("bing"), nil)
	if body["positions"] != "2" || body["cache_status"] != "miss" {
		t.Errorf("body = %v", body)
	}
}

func TestInvalidateSearch(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodGet, "/api/v1/search", searchQuery("bing"), nil)
	resp, body := f.do(t, http.MethodDelete, "/api/v1/search/cache", searchQuery("bing"), nil)
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("invalidate: status = %d, body = %v", resp.StatusCode, body)
	}

	_, body = f.do(t, http.MethodGet, "/api/v1/search", searchQuery("bing"), nil)
	if body["cache_status"] != "miss" {
		t.Errorf("cache_status = %v, want miss after invalidate", body["cache_status"])
	}
	if n := f.fetchs.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}

	resp, body = f.do(t, http.MethodDelete, "/api/v1/search/cache", url.Values{"url": {"x"}}, nil)
	if resp.StatusCode != http.StatusBadRequest || errorCode(body) != models.ErrCodeInvalidInput {
		t.Errorf("bad invalidate: status = %d, body = %v", resp.StatusCode, body)
	}
}

func TestAuth(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		header http.Header
		status int
	}{
		{"missing key", http.Header{"X-Api-Key": {""}}, http.StatusUnauthorized},
		{"wrong key", http.Header{"X-Api-Key": {"nope"}}, http.StatusUnauthorized},
		{"bearer", http.Header{"X-Api-Key": {""}, "Authorization": {"Bearer " + testKey}}, http.StatusOK},
		{"header key", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodGet, "/api/v1/providers", nil, tt.header)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status == http.StatusUnauthorized && errorCode(body) != models.ErrCodeUnauthorized {
				t.Errorf("code = %q", errorCode(body))
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Auth.Enabled = false })

	resp, _ := f.do(t, http.MethodGet, "/api/v1/providers", nil, http.Header{"X-Api-Key": {""}})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.RateLimit.RequestsPerSecond = 0.001
		c.RateLimit.Burst = 2
	})

	for i := range 2 {
		if resp, _ := f.do(t, http.MethodGet, "/api/v1/providers", nil, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, resp.StatusCode)
		}
	}
	resp, body := f.do(t, http.MethodGet, "/api/v1/providers", nil, nil)
	if resp.StatusCode != http.StatusTooManyRequests || errorCode(body) != models.ErrCodeRateLimited {
		t.Errorf("status = %d, body = %v", resp.StatusCode, body)
	}
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	if id := resp.Header.Get("X-Request-ID"); len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}

	resp, _ = f.do(t, http.MethodGet, "/api/v1/health", nil, http.Header{"X-Request-Id": {"abc-123"}})
	if id := resp.Header.Get("X-Request-ID"); id != "abc-123" {
		t.Errorf("echoed request id = %q", id)
	}
}

func TestCORS(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.CORS.AllowedOrigins = []string{"https://app.example.com"} })

	resp, _ := f.do(t, http.MethodGet, "/api/v1/health", nil, http.Header{"Origin": {"https://app.example.com"}})
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}

	g := newFixture(t, nil)
	resp, _ = g.do(t, http.MethodGet, "/api/v1/health", nil, http.Header{"Origin": {"https://app.example.com"}})
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin without config = %q", got)
	}
}
