package server_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/phillarmonic/mockscript/internal/cache"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/server"
	"github.com/phillarmonic/mockscript/internal/tabledb"
)

func writeRoutes(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newGlobals(t *testing.T) *runtime.Globals {
	t.Helper()
	store, err := tabledb.Open(filepath.Join(t.TempDir(), "data.solo"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	cacheStore, err := cache.Open(filepath.Join(t.TempDir(), "cache.solo"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cacheStore.Close() })
	return runtime.NewGlobals(cacheStore, store)
}

func TestHandleRouteBeforeReloadIsColdUnavailable(t *testing.T) {
	path := writeRoutes(t, "routes: []\n")
	srv := server.New(path, newGlobals(t), "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before any Reload, got %d", rec.Code)
	}
}

func TestHandleRouteServesStaticResponse(t *testing.T) {
	path := writeRoutes(t, `
routes:
  - method: GET
    path: /health
    status: 200
    body: { "ok": true }
`)
	srv := server.New(path, newGlobals(t), "")
	if err := srv.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleRouteEvaluatesScriptWithRouteParams(t *testing.T) {
	path := writeRoutes(t, `
routes:
  - method: GET
    path: /greet/:name
    script: |
      return 200, ` + "`hello ${req.params.name}`" + `;
`)
	srv := server.New(path, newGlobals(t), "")
	if err := srv.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/greet/Ava", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `"hello Ava"` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleRouteUnknownPathIs404(t *testing.T) {
	path := writeRoutes(t, "routes: []\n")
	srv := server.New(path, newGlobals(t), "")
	if err := srv.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminEndpointRejectsMissingToken(t *testing.T) {
	path := writeRoutes(t, `
adminToken: s3cr3t
routes: []
`)
	srv := server.New(path, newGlobals(t), "")
	if err := srv.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/_debug/routes", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestAdminEndpointAcceptsCorrectToken(t *testing.T) {
	path := writeRoutes(t, `
adminToken: s3cr3t
routes:
  - method: GET
    path: /health
    status: 200
    body: null
`)
	srv := server.New(path, newGlobals(t), "")
	if err := srv.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/_debug/routes", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the correct token, got %d: %s", rec.Code, rec.Body.String())
	}
}
