// Package server is the minimal HTTP front end: it turns an incoming
// request into a runtime.RequestSnapshot, looks up the compiled route in
// the snapshot loaded from an atomic pointer, evaluates it (or serves its
// static body), and writes the response. Administrative endpoints are
// gated by the admin token configured in the route file, held here only
// as a bcrypt hash.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/crypto/bcrypt"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/config"
	"github.com/phillarmonic/mockscript/internal/eval"
	"github.com/phillarmonic/mockscript/internal/routes"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/tabledb"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Server dispatches HTTP requests against an atomically-swapped route
// snapshot. The zero value is not usable; construct with New.
type Server struct {
	configPath string
	globals    *runtime.Globals
	dataDir    string

	snapshot       atomic.Pointer[routes.Snapshot]
	adminTokenHash atomic.Pointer[string]
}

// New constructs a Server with no route snapshot loaded yet; callers
// should call Reload before serving traffic. dataDir is the SoloDB
// directory backing the table store, used only by the admin snapshot
// export endpoint.
func New(configPath string, globals *runtime.Globals, dataDir string) *Server {
	return &Server{configPath: configPath, globals: globals, dataDir: dataDir}
}

// Reload re-reads and recompiles the route file, swapping the snapshot in
// atomically only once the new one has compiled successfully. A failed
// reload leaves the previous snapshot (or the cold 503 state) untouched.
func (s *Server) Reload() error {
	loaded, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	s.snapshot.Store(loaded.Snapshot)
	if loaded.AdminToken != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(loaded.AdminToken), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing admin token: %w", err)
		}
		hashStr := string(hash)
		s.adminTokenHash.Store(&hashStr)
	} else {
		s.adminTokenHash.Store(nil)
	}
	return nil
}

// Handler builds the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/_reload", s.handleAdminReload)
	mux.HandleFunc("/_debug/routes", s.handleAdminDebugRoutes)
	mux.HandleFunc("/_admin/snapshot", s.handleAdminSnapshot)
	mux.HandleFunc("/", s.handleRoute)
	return mux
}

func (s *Server) checkAdminAuth(w http.ResponseWriter, r *http.Request) bool {
	hashPtr := s.adminTokenHash.Load()
	if hashPtr == nil {
		// No admin token configured: admin endpoints are open. This is a
		// deliberate operator choice (e.g. local development).
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || bcrypt.CompareHashAndPassword([]byte(*hashPtr), []byte(token)) != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *Server) handleAdminReload(w http.ResponseWriter, r *http.Request) {
	if !s.checkAdminAuth(w, r) {
		return
	}
	if err := s.Reload(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminDebugRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.checkAdminAuth(w, r) {
		return
	}
	snap := s.snapshot.Load()
	if snap == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	type routeInfo struct {
		Method string `json:"method"`
		Path   string `json:"path"`
		Kind   string `json:"kind"`
	}
	out := make([]routeInfo, 0, len(snap.Routes))
	for _, rt := range snap.Routes {
		kind := "static"
		if rt.Script != nil {
			kind = "script"
		}
		out = append(out, routeInfo{Method: rt.Method, Path: rt.Path, Kind: kind})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// handleAdminSnapshot tars+gzips the table store's on-disk directory and
// streams it back as a backup artifact. This is an operator-only escape
// hatch, not a mockscript builtin: the scripting language never touches
// the filesystem directly.
func (s *Server) handleAdminSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.checkAdminAuth(w, r) {
		return
	}
	if s.dataDir == "" {
		http.Error(w, "no persistent table store configured", http.StatusServiceUnavailable)
		return
	}
	tmp, err := os.CreateTemp("", "mockscript-snapshot-*.tar.gz")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := tabledb.ExportSnapshot(r.Context(), s.dataDir, tmpPath); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="snapshot.tar.gz"`)
	http.ServeFile(w, r, tmpPath)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Load()
	if snap == nil {
		http.Error(w, "no routes loaded", http.StatusServiceUnavailable)
		return
	}
	route, params, ok := snap.Find(r.Method, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if route.Static != nil {
		writeJSON(w, route.Static.Status, route.Static.Body)
		return
	}

	reqSnapshot, err := buildRequestSnapshot(r, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := runtime.NewEvalCtx(s.globals, reqSnapshot)
	result, err := eval.Evaluate(ctx, route.Script)
	if err != nil {
		log.Printf("[mockscript] %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Status, result.Body)
}

func writeJSON(w http.ResponseWriter, status int, body value.Value) {
	raw, err := value.MarshalJSON(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func buildRequestSnapshot(r *http.Request, routeParams map[string]string) (*runtime.RequestSnapshot, error) {
	bodyBytes, err := readBody(r)
	if err != nil {
		return nil, err
	}
	body, err := value.ParseJSON(bodyBytes, ast.UNKNOWN)
	if err != nil {
		body = value.Object{}
	}

	params := value.Object{}
	for k, v := range routeParams {
		params[k] = value.String(v)
	}

	query := value.Object{}
	for k := range r.URL.Query() {
		query[k] = value.String(r.URL.Query().Get(k))
	}

	headers := value.Object{}
	for k := range r.Header {
		headers[k] = value.String(r.Header.Get(k))
	}

	return &runtime.RequestSnapshot{Body: body, Params: params, Query: query, Headers: headers}, nil
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []byte("{}"), nil
	}
	return raw, nil
}

// WatchAndReload watches the server's config file for changes and
// reloads the route snapshot whenever it's written, until ctx is
// canceled. Editors often replace a file rather than writing it in
// place, so the containing directory is watched instead of the file
// itself.
func WatchAndReload(ctx context.Context, s *Server) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.configPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.configPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("[mockscript] reload failed: %v", err)
				} else {
					log.Printf("[mockscript] routes reloaded")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[mockscript] watch error: %v", err)
			}
		}
	}()
	return nil
}
