// Package config loads the YAML route file that drives the mock server,
// eagerly compiling every route's script through the full
// lexer/parser/preprocess pipeline so a bad route fails config load
// rather than first request.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/parser"
	"github.com/phillarmonic/mockscript/internal/preprocess"
	"github.com/phillarmonic/mockscript/internal/routes"
	"github.com/phillarmonic/mockscript/internal/secrets"
	"github.com/phillarmonic/mockscript/internal/value"
)

// DefaultLocations mirrors the teacher's discovery-order search for its
// own task file, adapted to this project's route file.
var DefaultLocations = []string{
	".mockscript/routes.yaml",
	"routes.yaml",
	"ops/routes.yaml",
	"ops/mockscript/routes.yaml",
}

// FindConfigFile resolves which route file to load: an explicit filename
// takes priority, otherwise the first existing default location wins.
func FindConfigFile(filename string) (string, error) {
	if filename != "" {
		if _, err := os.Stat(filename); err != nil {
			return "", fmt.Errorf("specified file %q not found", filename)
		}
		return filename, nil
	}
	for _, loc := range DefaultLocations {
		if fi, err := os.Stat(loc); err == nil && !fi.IsDir() {
			return loc, nil
		}
	}
	return "", fmt.Errorf("no route file found - expected one of: %v", DefaultLocations)
}

// RouteSpec is one entry of the route file's YAML document.
type RouteSpec struct {
	Method string      `yaml:"method"`
	Path   string      `yaml:"path"`
	Status int         `yaml:"status"`
	Body   interface{} `yaml:"body"`
	Script string      `yaml:"script"`
}

// File is the top-level shape of a route file.
type File struct {
	AdminToken string      `yaml:"adminToken"`
	Routes     []RouteSpec `yaml:"routes"`
}

// Loaded is the result of a successful config load: the compiled route
// snapshot plus the plain admin token (if configured), with any secret
// placeholder already resolved; the server hashes it.
type Loaded struct {
	Snapshot   *routes.Snapshot
	AdminToken string
}

// Load reads, resolves secrets in, and compiles path into a route
// snapshot. Every script is parsed and linted immediately; the first
// error aborts the whole load rather than producing a partially-working
// snapshot.
func Load(path string) (*Loaded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc File
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	adminToken := doc.AdminToken
	if secrets.HasPlaceholder(adminToken) {
		adminToken, err = secrets.ResolveString(adminToken)
		if err != nil {
			return nil, fmt.Errorf("resolving adminToken secret: %w", err)
		}
	}

	snapshot := &routes.Snapshot{}
	for i, spec := range doc.Routes {
		route, err := compileRoute(path, i, spec)
		if err != nil {
			return nil, err
		}
		snapshot.Routes = append(snapshot.Routes, route)
	}
	return &Loaded{Snapshot: snapshot, AdminToken: adminToken}, nil
}

func compileRoute(filename string, index int, spec RouteSpec) (*routes.Route, error) {
	if spec.Method == "" || spec.Path == "" {
		return nil, fmt.Errorf("route #%d: method and path are required", index)
	}
	route := routes.Compile(spec.Method, spec.Path)

	if spec.Script != "" {
		script := spec.Script
		if secrets.HasPlaceholder(script) {
			resolved, err := secrets.ResolveString(script)
			if err != nil {
				return nil, fmt.Errorf("route %s %s: resolving secret: %w", spec.Method, spec.Path, err)
			}
			script = resolved
		}
		program, err := parser.Parse(fmt.Sprintf("%s:%s %s", filename, spec.Method, spec.Path), script)
		if err != nil {
			return nil, fmt.Errorf("route %s %s: %w", spec.Method, spec.Path, err)
		}
		if err := preprocess.Run(program); err != nil {
			return nil, fmt.Errorf("route %s %s: %w", spec.Method, spec.Path, err)
		}
		route.Script = program
		return route, nil
	}

	bodyJSON, err := json.Marshal(spec.Body)
	if err != nil {
		return nil, fmt.Errorf("route %s %s: encoding static body: %w", spec.Method, spec.Path, err)
	}
	bodyVal, err := value.ParseJSON(bodyJSON, ast.UNKNOWN)
	if err != nil {
		return nil, fmt.Errorf("route %s %s: %w", spec.Method, spec.Path, err)
	}
	status := spec.Status
	if status == 0 {
		status = 200
	}
	route.Static = &routes.StaticResponse{Status: status, Body: bodyVal}
	return route, nil
}
