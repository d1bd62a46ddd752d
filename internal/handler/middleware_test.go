package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/handler"
	"github.com/msomdec/product-catalog/internal/service"
)

func newAuthOnlyRouter(env *testEnv) *gin.Engine {
	r := gin.New()
	r.GET("/protected", handler.RequireAuth(env.services.Auth), func(c *gin.Context) {
		c.String(http.StatusOK, handler.UsernameFromContext(c))
	})
	return r
}

func TestRequireAuth_ValidToken(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.register(t, "valid-user", "password123")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	newAuthOnlyRouter(env).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "valid-user" {
		t.Fatalf("expected username valid-user, got %q", w.Body.String())
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	env := newTestEnv(t, nil)
	tok := env.register(t, "someone", "password123")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + tok},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"tampered token", "Bearer " + tok[:strings.LastIndex(tok, ".")+1] + "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			newAuthOnlyRouter(env).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(handler.RequestID(zerolog.New(&logs)))
	r.GET("/", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside handler")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatal("expected generated X-Request-Id")
	}

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", logs.String(), err)
	}
	if entry["request_id"] != id {
		t.Fatalf("expected log request_id %s, got %v", id, entry["request_id"])
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "client-supplied")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "client-supplied" {
		t.Fatalf("expected client request id to be reused, got %s", got)
	}
}

func TestRecovery_ReturnsGeneric500(t *testing.T) {
	r := gin.New()
	r.Use(handler.Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("secret internal detail")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret internal detail") {
		t.Fatal("panic detail leaked to client")
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/Products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Fatal("expected Authorization in allowed headers")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/Categories", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/Categories", nil, "")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestRateLimit_AuthEndpoints(t *testing.T) {
	limiter := service.NewTokenBucket(0, 2)
	defer limiter.Close()
	env := newTestEnv(t, limiter)

	body := map[string]string{"username": "nobody", "password": "x"}
	for i := range 2 {
		w := env.do(t, http.MethodPost, "/api/Auth/Login", body, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/api/Auth/Login", body, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	// Catalog reads are not limited.
	if w := env.do(t, http.MethodGet, "/api/Products", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for products, got %d", w.Code)
	}
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	limiter := service.NewTokenBucket(0.0001, 1)
	defer limiter.Close()
	env := newTestEnv(t, limiter)

	body := map[string]string{"username": "nobody", "password": "x"}
	var codes []int
	for i := range 5 {
		w := env.doFrom(t, "203.0.113.9:40000", fmt.Sprintf("10.0.0.%d", i+1), http.MethodPost, "/api/Auth/Login", body, "")
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusUnauthorized {
		t.Fatalf("first attempt: expected 401, got %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("attempt %d with rotated X-Forwarded-For: expected 429, got %d (all: %v)", i+2, code, codes)
		}
	}
}

func TestRateLimit_HonoursForwardedForFromTrustedProxy(t *testing.T) {
	limiter := service.NewTokenBucket(0.0001, 1)
	defer limiter.Close()
	env := newTestEnvWithProxies(t, limiter, []string{"192.0.2.1"})

	body := map[string]string{"username": "nobody", "password": "x"}
	for i := range 3 {
		w := env.doFrom(t, "192.0.2.1:40000", fmt.Sprintf("198.51.100.%d", i+1), http.MethodPost, "/api/Auth/Login", body, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("client %d behind trusted proxy: expected 401, got %d", i+1, w.Code)
		}
	}

	w := env.doFrom(t, "192.0.2.1:40000", "198.51.100.1", http.MethodPost, "/api/Auth/Login", body, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("repeat client behind trusted proxy: expected 429, got %d", w.Code)
	}
}

func TestNewEngine_RejectsInvalidTrustedProxy(t *testing.T) {
	if _, err := handler.NewEngine(zerolog.Nop(), nil, []string{"not-an-ip"}); err == nil {
		t.Fatal("expected error for invalid trusted proxy")
	}
}

func TestRequestLogger_LogsWithRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/Products/12345", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	logged := env.logs.String()
	if !strings.Contains(logged, `"message":"request completed"`) {
		t.Fatalf("expected request log line, got %q", logged)
	}
	if !strings.Contains(logged, `"request_id":"`+w.Header().Get("X-Request-Id")+`"`) {
		t.Fatalf("expected request id in log, got %q", logged)
	}
}
