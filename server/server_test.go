package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/druginfo/config"
	"github.com/giygas/druginfo/logging"
	"github.com/go-chi/chi/v5/middleware"
)

// mockHandler implements interfaces.HTTPHandler for testing
type mockHandler struct {
	calls []string
}

func (m *mockHandler) record(name string, w http.ResponseWriter) {
	m.calls = append(m.calls, name)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(name))
}

func (m *mockHandler) FormatResponse(w http.ResponseWriter, r *http.Request) { m.record("format", w) }
func (m *mockHandler) DrugInfo(w http.ResponseWriter, r *http.Request)       { m.record("drug-info", w) }
func (m *mockHandler) MedicineInfo(w http.ResponseWriter, r *http.Request)   { m.record("medicine-info", w) }
func (m *mockHandler) HealthCheck(w http.ResponseWriter, r *http.Request)    { m.record("health", w) }

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Address:        "localhost",
		Env:            config.EnvTest,
		LogLevel:       "error",
		MaxRequestBody: 1048576,
		MaxHeaderSize:  1048576,
		BackendTimeout: 5 * time.Second,
	}
}

func TestNewServer(t *testing.T) {
	logging.InitDiscardLogger()

	server := NewServer(testConfig(), &mockHandler{})

	if server.server.Addr != "localhost:0" {
		t.Errorf("Expected address localhost:0, got %s", server.server.Addr)
	}
	if server.server.WriteTimeout != 20*time.Second {
		t.Errorf("Write timeout should cover the backend timeout, got %v", server.server.WriteTimeout)
	}
	if server.rateLimiter == nil {
		t.Error("Rate limiter should be created")
	}
}

func TestSetupMiddleware(t *testing.T) {
	logging.InitDiscardLogger()

	server := NewServer(testConfig(), &mockHandler{})

	server.router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		if middleware.GetReqID(r.Context()) == "" {
			t.Error("RequestID should be available in request context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected rate limit headers from the middleware chain")
	}
}

func TestSetupRoutes(t *testing.T) {
	logging.InitDiscardLogger()

	handler := &mockHandler{}
	server := NewServer(testConfig(), handler)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodPost, "/v1/format", "format"},
		{http.MethodPost, "/v1/drug-info", "drug-info"},
		{http.MethodPost, "/v1/medicine-info", "medicine-info"},
		{http.MethodGet, "/health", "health"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "127.0.0.1:1234"
			rr := httptest.NewRecorder()
			server.router.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}
			if rr.Body.String() != tt.want {
				t.Errorf("Expected handler %s, got %s", tt.want, rr.Body.String())
			}
		})
	}

	// Text lookups are POST only
	req := httptest.NewRequest(http.MethodGet, "/v1/drug-info", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /v1/drug-info, got %d", rr.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	logging.InitDiscardLogger()

	server := NewServer(testConfig(), &mockHandler{})

	// Generate one labelled request first
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "http_request_total") {
		t.Error("Expected HTTP request counter in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	logging.InitDiscardLogger()

	server := NewServer(testConfig(), &mockHandler{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/drug-info", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestServerLifecycle(t *testing.T) {
	logging.InitDiscardLogger()

	prev := drainDelay
	drainDelay = 10 * time.Millisecond
	defer func() { drainDelay = prev }()

	server := NewServer(testConfig(), &mockHandler{})

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("Server shutdown should not error: %v", err)
	}

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Expected http.ErrServerClosed, got %v", err)
		}
	case <-time.After(1 * time.Second):
		t.Error("Server should have shutdown within 1 second")
	}
}

func TestNewServerWithoutLogger(t *testing.T) {
	_ = logging.Close()
	defer logging.InitDiscardLogger()

	server := NewServer(testConfig(), &mockHandler{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 without an installed logger, got %d", rr.Code)
	}
}
