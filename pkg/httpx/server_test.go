package httpx_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/tablepos/pkg/config"
	"github.com/ghuser/tablepos/pkg/httpx"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(cfg httpx.ServerConfig) *chi.Mux {
	r := httpx.NewRouter(cfg, passthrough, passthrough, passthrough, passthrough)
	r.Get("/api/orders", okHandler)
	r.Patch("/api/sessions/{kind}/{slot}/items/{entryID}", okHandler)
	r.Get("/swagger/*", okHandler)
	return r
}

func TestRouter_SecurityHeadersOnAPI(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*"})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/orders", http.NoBody))

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
	// HSTS is only set over HTTPS; unrolled/secure omits it on plain HTTP.
}

func TestRouter_SwaggerAllowsInlineAssets(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*"})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/index.html", http.NoBody))

	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self' 'unsafe-inline'") {
		t.Errorf("swagger CSP should allow inline scripts, got %q", csp)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("swagger should keep frame denial")
	}
}

func TestRouter_CORSPreflightAllowsPatch(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "http://till.local"})
	req := httptest.NewRequest(http.MethodOptions, "/api/sessions/dine-in/3/items/F1", http.NoBody)
	req.Header.Set("Origin", "http://till.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://till.local" {
		t.Fatalf("Access-Control-Allow-Origin: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPatch) {
		t.Errorf("PATCH should be allowed for quantity changes, got %q", got)
	}
}

func TestRouter_RateLimitPerIP(t *testing.T) {
	r := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "*", RateLimitPerMinute: 2})
	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", http.NoBody)
		req.RemoteAddr = "10.0.0.7:5000"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 200, 200, 429; got %v", codes)
	}
}

func TestRouter_DefaultBodyLimit(t *testing.T) {
	r := httpx.NewRouter(httpx.ServerConfig{CORSAllowedOrigins: "*"}, passthrough, passthrough, passthrough, passthrough)
	var readErr error
	r.Post("/api/sessions/{kind}/{slot}/items", func(w http.ResponseWriter, req *http.Request) {
		_, readErr = io.ReadAll(req.Body)
		w.WriteHeader(http.StatusOK)
	})
	body := strings.NewReader(strings.Repeat("x", 64<<10+1))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/sessions/takeaway/1/items", body))

	var tooLarge *http.MaxBytesError
	if !errors.As(readErr, &tooLarge) {
		t.Fatalf("expected MaxBytesError past 64 KiB, got %v", readErr)
	}
}

func TestServerConfigFrom(t *testing.T) {
	got := httpx.ServerConfigFrom(&config.Config{
		ServiceName:        "tablepos",
		Environment:        config.EnvDevelopment,
		CORSAllowedOrigins: "http://till.local",
		RateLimitPerMinute: 1200,
	})
	if !got.IsDevelopment || got.RateLimitPerMinute != 1200 || got.CORSAllowedOrigins != "http://till.local" {
		t.Errorf("unexpected server config: %+v", got)
	}
}

func TestNewServer_Timeouts(t *testing.T) {
	srv := httpx.NewServer(":8080", http.NotFoundHandler())
	if srv.ReadHeaderTimeout == 0 || srv.WriteTimeout == 0 {
		t.Errorf("expected header and write timeouts, got %+v", srv)
	}
}

// TestRequestBodyLimit_WithinLimit verifies requests under the cap pass through.
func TestRequestBodyLimit_WithinLimit(t *testing.T) {
	const limit = 100

	var gotBody []byte
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	h := httpx.RequestBodyLimit(limit)(inner)
	body := strings.NewReader(`{"menu_entry_id":"F1","quantity":2}`)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if string(gotBody) != `{"menu_entry_id":"F1","quantity":2}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
}
