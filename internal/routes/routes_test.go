package routes_test

import (
	"testing"

	"github.com/phillarmonic/mockscript/internal/routes"
	"github.com/phillarmonic/mockscript/internal/value"
)

func TestCompileAndMatchWithParams(t *testing.T) {
	r := routes.Compile("GET", "/users/:id/posts/:postId")
	params, ok := r.Match("/users/42/posts/7")
	if !ok {
		t.Fatal("expected match")
	}
	if params["id"] != "42" || params["postId"] != "7" {
		t.Fatalf("unexpected params: %v", params)
	}
}

func TestMatchRejectsWrongSegmentCount(t *testing.T) {
	r := routes.Compile("GET", "/users/:id")
	if _, ok := r.Match("/users/42/extra"); ok {
		t.Fatal("expected no match for a path with extra segments")
	}
	if _, ok := r.Match("/users"); ok {
		t.Fatal("expected no match for a path missing a segment")
	}
}

func TestMatchRejectsLiteralMismatch(t *testing.T) {
	r := routes.Compile("GET", "/users/:id")
	if _, ok := r.Match("/accounts/42"); ok {
		t.Fatal("expected no match when a literal segment differs")
	}
}

func TestMatchRootPath(t *testing.T) {
	r := routes.Compile("GET", "/")
	params, ok := r.Match("/")
	if !ok {
		t.Fatal("expected root path to match itself")
	}
	if len(params) != 0 {
		t.Fatalf("expected no params, got %v", params)
	}
}

func TestSnapshotFindPicksFirstMethodMatch(t *testing.T) {
	get := routes.Compile("GET", "/items/:id")
	get.Static = &routes.StaticResponse{Status: 200, Body: value.String("item")}
	post := routes.Compile("POST", "/items/:id")
	post.Static = &routes.StaticResponse{Status: 201, Body: value.String("created")}

	snap := &routes.Snapshot{Routes: []*routes.Route{get, post}}

	route, params, ok := snap.Find("post", "/items/9")
	if !ok {
		t.Fatal("expected a match")
	}
	if route.Static.Status != 201 {
		t.Fatalf("expected the POST route, got status %d", route.Static.Status)
	}
	if params["id"] != "9" {
		t.Fatalf("unexpected params: %v", params)
	}
}

func TestSnapshotFindNoMatch(t *testing.T) {
	snap := &routes.Snapshot{Routes: []*routes.Route{routes.Compile("GET", "/items")}}
	if _, _, ok := snap.Find("GET", "/missing"); ok {
		t.Fatal("expected no match")
	}
}

func TestSnapshotFindOnNilSnapshot(t *testing.T) {
	var snap *routes.Snapshot
	if _, _, ok := snap.Find("GET", "/items"); ok {
		t.Fatal("expected no match on a nil snapshot")
	}
}
