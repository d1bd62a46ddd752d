package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/auth/password"
	"github.com/msomdec/product-catalog/internal/auth/token"
	"github.com/msomdec/product-catalog/internal/handler"
	"github.com/msomdec/product-catalog/internal/repository/sqlite"
	"github.com/msomdec/product-catalog/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testTokenConfig = token.Config{
	Secret:   "test-secret-for-handler-tests-0123456789",
	Issuer:   "catalog-api",
	Audience: "catalog-web",
}

type testEnv struct {
	db       *sqlite.DB
	services handler.Services
	engine   *gin.Engine
	logs     *bytes.Buffer
}

// newTestEnv wires a full router over a temp SQLite database. A nil limiter
// disables rate limiting.
func newTestEnv(t *testing.T, limiter *service.TokenBucket) *testEnv {
	t.Helper()
	return newTestEnvWithProxies(t, limiter, nil)
}

func newTestEnvWithProxies(t *testing.T, limiter *service.TokenBucket, trustedProxies []string) *testEnv {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	cfg := testTokenConfig
	issuer, err := token.NewIssuer(cfg)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	validator, err := token.NewValidator(cfg)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	hasher := password.NewPBKDF2Hasher(password.WithIterations(password.MinIterations))

	s := handler.Services{
		DB:          db,
		Auth:        service.NewAuthService(db.Users(), hasher, issuer, validator),
		Products:    service.NewProductService(db.Products(), db.Categories(), db.Suppliers()),
		Categories:  service.NewCategoryService(db.Categories()),
		Suppliers:   service.NewSupplierService(db.Suppliers()),
		AuthLimiter: limiter,
	}

	logs := &bytes.Buffer{}
	engine, err := handler.NewEngine(zerolog.New(logs), []string{"http://localhost:3000"}, trustedProxies)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	handler.RegisterRoutes(engine, s)

	return &testEnv{db: db, services: s, engine: engine, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	return e.doFrom(t, "", "", method, path, body, bearer)
}

// doFrom is do with an explicit peer address and X-Forwarded-For header.
// Empty values keep the httptest defaults.
func (e *testEnv) doFrom(t *testing.T, remoteAddr, forwardedFor, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its token.
func (e *testEnv) register(t *testing.T, username, pw string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/Auth/Register", map[string]string{"username": username, "password": pw}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return decode[map[string]string](t, w)["token"]
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return v
}
