// Package routes holds the compiled, atomically-swapped table of HTTP
// routes a server front end dispatches against: each route is either a
// static canned response or a preprocessed script ready to evaluate.
package routes

import (
	"strings"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Route is one compiled method+path endpoint.
type Route struct {
	Method   string
	Path     string
	segments []segment

	// Static is set when the route is a canned {status, body} response;
	// Script is set when it runs the interpreter instead. Exactly one is
	// non-nil for a well-formed route.
	Static *StaticResponse
	Script *ast.Block
}

// StaticResponse is a fixed status+body response that needs no evaluation.
type StaticResponse struct {
	Status int
	Body   value.Value
}

type segment struct {
	literal string
	isParam bool
	param   string
}

// Compile parses a path template like "/users/:id/posts/:postId" into
// matchable segments.
func Compile(method, path string) *Route {
	r := &Route{Method: strings.ToUpper(method), Path: path}
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ":") {
			r.segments = append(r.segments, segment{isParam: true, param: part[1:]})
		} else {
			r.segments = append(r.segments, segment{literal: part})
		}
	}
	return r
}

// Match reports whether requestPath satisfies this route's template, and
// if so returns the bound route params.
func (r *Route) Match(requestPath string) (map[string]string, bool) {
	parts := strings.Split(strings.Trim(requestPath, "/"), "/")
	if len(parts) == 1 && parts[0] == "" {
		parts = nil
	}
	if len(parts) != len(r.segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range r.segments {
		if seg.isParam {
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}

// Snapshot is the whole compiled route table as of one config load. It is
// replaced wholesale on reload, never mutated in place, so a reader that
// loads a *Snapshot through the server's atomic pointer sees an entirely
// pre- or post-reload view.
type Snapshot struct {
	Routes []*Route
}

// Find returns the first route matching method+path along with its bound
// route params.
func (s *Snapshot) Find(method, path string) (*Route, map[string]string, bool) {
	if s == nil {
		return nil, nil, false
	}
	method = strings.ToUpper(method)
	for _, r := range s.Routes {
		if r.Method != method {
			continue
		}
		if params, ok := r.Match(path); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}
