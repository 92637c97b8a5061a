package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phillarmonic/mockscript/internal/config"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindConfigFilePrefersExplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "routes.yaml", "routes: []\n")
	writeFile(t, "custom.yaml", "routes: []\n")

	path, err := config.FindConfigFile("custom.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if path != "custom.yaml" {
		t.Fatalf("expected custom.yaml, got %s", path)
	}
}

func TestFindConfigFileDiscoveryOrder(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "ops/routes.yaml", "routes: []\n")
	writeFile(t, "ops/mockscript/routes.yaml", "routes: []\n")

	path, err := config.FindConfigFile("")
	if err != nil {
		t.Fatal(err)
	}
	if path != "ops/routes.yaml" {
		t.Fatalf("expected ops/routes.yaml to win over ops/mockscript/routes.yaml, got %s", path)
	}
}

func TestFindConfigFileNoneFound(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := config.FindConfigFile(""); err == nil {
		t.Fatal("expected an error when no route file exists")
	}
}

func TestLoadCompilesStaticAndScriptRoutes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	writeFile(t, path, `
adminToken: secret-token
routes:
  - method: GET
    path: /health
    status: 200
    body: { "ok": true }
  - method: POST
    path: /double
    script: |
      let n: num = 21;
      return 200, n * 2;
`)
	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.AdminToken != "secret-token" {
		t.Fatalf("expected adminToken to pass through, got %q", loaded.AdminToken)
	}
	if len(loaded.Snapshot.Routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(loaded.Snapshot.Routes))
	}
	healthRoute, _, ok := loaded.Snapshot.Find("GET", "/health")
	if !ok || healthRoute.Static == nil {
		t.Fatal("expected a static /health route")
	}
	doubleRoute, _, ok := loaded.Snapshot.Find("POST", "/double")
	if !ok || doubleRoute.Script == nil {
		t.Fatal("expected a script /double route")
	}
}

func TestLoadRejectsBadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	writeFile(t, path, `
routes:
  - method: GET
    path: /broken
    script: |
      let n: num = "not a number";
      return 200, n;
`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected a load error for a script that fails static analysis")
	}
}

func TestLoadRejectsMissingMethodOrPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	writeFile(t, path, `
routes:
  - path: /missing-method
    status: 200
    body: null
`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected an error for a route missing its method")
	}
}
