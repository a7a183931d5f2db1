package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/druginfo/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("allowed"))
	})
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		expectedCost int64
	}{
		{"Health endpoint", http.MethodGet, "/health", 5},
		{"Metrics endpoint", http.MethodGet, "/metrics", 0},
		{"Format endpoint", http.MethodPost, "/v1/format", 5},
		{"Drug info endpoint", http.MethodPost, "/v1/drug-info", 50},
		{"Medicine info endpoint", http.MethodPost, "/v1/medicine-info", 100},
		{"CORS preflight", http.MethodOptions, "/v1/medicine-info", 0},
		{"Unknown endpoint", http.MethodGet, "/unknown", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if cost := getTokenCost(req); cost != tt.expectedCost {
				t.Errorf("Expected cost %d for %s %s, got %d", tt.expectedCost, tt.method, tt.path, cost)
			}
		})
	}
}

func TestRateLimiterExhaustsBucket(t *testing.T) {
	rl := NewRateLimiter()
	handler := rl.Handler(okHandler())

	// 1000 tokens allow ten photo lookups before the bucket runs dry
	for i := range 10 {
		req := httptest.NewRequest(http.MethodPost, "/v1/medicine-info", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/medicine-info", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Expected Retry-After header, got %q", rr.Header().Get("Retry-After"))
	}
	if !strings.Contains(rr.Body.String(), "Rate limit exceeded") {
		t.Errorf("Unexpected body %q", rr.Body.String())
	}

	// Other clients keep their own bucket
	req = httptest.NewRequest(http.MethodPost, "/v1/medicine-info", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for a different client, got %d", rr.Code)
	}
}

func TestRateLimiterSharesBucketAcrossPorts(t *testing.T) {
	rl := NewRateLimiter()
	handler := rl.Handler(okHandler())

	allowed, limited := 0, 0
	for i := range 100 {
		req := httptest.NewRequest(http.MethodPost, "/v1/medicine-info", nil)
		req.RemoteAddr = fmt.Sprintf("203.0.113.7:%d", 40000+i)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		switch rr.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		}
	}

	if allowed > 10 {
		t.Errorf("Expected at most 10 allowed requests from one host, got %d", allowed)
	}
	if limited == 0 {
		t.Error("Expected requests to be rate limited once the bucket is empty")
	}
	if len(rl.clients) != 1 {
		t.Errorf("Expected one bucket for one host, got %d", len(rl.clients))
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remoteAddr string
		expected   string
	}{
		{"203.0.113.7:40000", "203.0.113.7"},
		{"[2001:db8::1]:8080", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tt.remoteAddr
			if got := clientKey(req); got != tt.expected {
				t.Errorf("clientKey(%q) = %q, want %q", tt.remoteAddr, got, tt.expected)
			}
		})
	}
}

func TestRateLimiterFreeRoutesSkipBuckets(t *testing.T) {
	rl := NewRateLimiter()
	handler := rl.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
	if len(rl.clients) != 0 {
		t.Errorf("Free routes should not create buckets, got %d", len(rl.clients))
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()
	rl.getBucket("10.0.0.1")
	rl.getBucket("10.0.0.2").TakeAvailable(100)

	if removed := rl.cleanup(); removed != 1 {
		t.Errorf("Expected 1 idle bucket removed, got %d", removed)
	}
	if _, ok := rl.clients["10.0.0.2"]; !ok {
		t.Error("Bucket in use should be kept")
	}

	rl.Stop()
	rl.Stop() // Stop is idempotent
}

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		expected   string
	}{
		{"single IP", "203.0.113.7", "127.0.0.1:1234", "203.0.113.7"},
		{"proxy chain", "203.0.113.7, 10.0.0.1", "127.0.0.1:1234", "203.0.113.7"},
		{"no header", "", "192.168.1.1:1234", "192.168.1.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			var got string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.expected {
				t.Errorf("Expected RemoteAddr %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1024 * 1024, MaxHeaderSize: 1024}

	tests := []struct {
		name          string
		contentLength string
		bigHeader     bool
		expected      int
	}{
		{"no content length", "", false, http.StatusOK},
		{"exactly max size", "1048576", false, http.StatusOK},
		{"exceeds max size", "2000000", false, http.StatusRequestEntityTooLarge},
		{"invalid content length", "-abc", false, http.StatusOK},
		{"headers too large", "", true, http.StatusRequestHeaderFieldsTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/format", nil)
			if tt.contentLength != "" {
				req.Header.Set("Content-Length", tt.contentLength)
			}
			if tt.bigHeader {
				req.Header.Set("X-Padding", strings.Repeat("a", 2048))
			}

			rr := httptest.NewRecorder()
			RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, rr.Code)
			}
			if tt.expected != http.StatusOK && !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("Expected JSON error body, got %q", rr.Body.String())
			}
		})
	}
}

func TestRequestSizeMiddlewareCapsStreamedBody(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 16, MaxHeaderSize: 1024}

	req := httptest.NewRequest(http.MethodPost, "/v1/format", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1
	req.Header.Del("Content-Length")

	var readErr error
	handler := RequestSizeMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 128)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil || readErr.Error() != "http: request body too large" {
		t.Errorf("Expected body limit error, got %v", readErr)
	}
}
