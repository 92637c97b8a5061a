package tabledb_test

import (
	"path/filepath"
	"testing"

	"github.com/phillarmonic/mockscript/internal/tabledb"
	"github.com/phillarmonic/mockscript/internal/value"
)

func openStore(t *testing.T) *tabledb.Store {
	t.Helper()
	store, err := tabledb.Open(filepath.Join(t.TempDir(), "test.solo"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateTableAndListTables(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	tables, err := s.GetAllTables()
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 || tables[0] != "users" {
		t.Fatalf("expected [users], got %v", tables)
	}
}

func TestCreateTableRejectsDuplicate(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateTable("users", value.Object{}); err == nil {
		t.Fatal("expected an error creating a duplicate table")
	}
}

func TestCreateEntryAndGetByID(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	id, err := s.CreateEntry("users", value.Object{"name": value.String("Ava")})
	if err != nil {
		t.Fatal(err)
	}
	got, found, err := s.GetByID("users", id)
	if err != nil || !found {
		t.Fatalf("expected to find entry %s, found=%v err=%v", id, found, err)
	}
	obj, ok := got.(value.Object)
	if !ok || obj["name"] != value.String("Ava") {
		t.Fatalf("unexpected entry: %v", got)
	}
}

func TestGetAllReturnsEveryEntry(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"name": value.String("Ava")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"name": value.String("Bo")}); err != nil {
		t.Fatal(err)
	}
	all, err := s.GetAll("users")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}

func TestGetByFieldsFiltersOnEveryKey(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"name": value.String("Ava"), "active": value.Bool(true)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"name": value.String("Bo"), "active": value.Bool(false)}); err != nil {
		t.Fatal(err)
	}
	matched, err := s.GetByFields("users", value.Object{"active": value.Bool(true)})
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matched))
	}
	obj := matched[0].(value.Object)
	if obj["name"] != value.String("Ava") {
		t.Fatalf("expected Ava, got %v", obj["name"])
	}
}

func TestUpdateByIDMergesPatch(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	id, err := s.CreateEntry("users", value.Object{"name": value.String("Ava"), "age": value.Number(30)})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := s.UpdateByID("users", id, value.Object{"age": value.Number(31)})
	if err != nil || !ok {
		t.Fatalf("update failed: ok=%v err=%v", ok, err)
	}
	got, _, err := s.GetByID("users", id)
	if err != nil {
		t.Fatal(err)
	}
	obj := got.(value.Object)
	if obj["name"] != value.String("Ava") {
		t.Fatalf("expected unpatched field to survive, got %v", obj["name"])
	}
	if obj["age"] != value.Number(31) {
		t.Fatalf("expected patched age 31, got %v", obj["age"])
	}
}

func TestUpdateByFieldsUpdatesEveryMatch(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"team": value.String("a")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"team": value.String("a")}); err != nil {
		t.Fatal(err)
	}
	n, err := s.UpdateByFields("users", value.Object{"team": value.String("a")}, value.Object{"team": value.String("b")})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 updates, got %d", n)
	}
}

func TestDeleteByIDRemovesEntry(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	id, err := s.CreateEntry("users", value.Object{"name": value.String("Ava")})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := s.DeleteByID("users", id)
	if err != nil || !ok {
		t.Fatalf("delete failed: ok=%v err=%v", ok, err)
	}
	if _, found, _ := s.GetByID("users", id); found {
		t.Fatal("expected entry to be gone")
	}
	all, err := s.GetAll("users")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty table, got %d entries", len(all))
	}
}

func TestDeleteByFieldsRemovesMatches(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"active": value.Bool(false)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"active": value.Bool(true)}); err != nil {
		t.Fatal(err)
	}
	n, err := s.DeleteByFields("users", value.Object{"active": value.Bool(false)})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deletion, got %d", n)
	}
	all, err := s.GetAll("users")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", len(all))
	}
}

func TestDropTableRemovesItFromList(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry("users", value.Object{"name": value.String("Ava")}); err != nil {
		t.Fatal(err)
	}
	if err := s.DropTable("users"); err != nil {
		t.Fatal(err)
	}
	tables, err := s.GetAllTables()
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %v", tables)
	}
}

func TestDropAllRemovesEveryTable(t *testing.T) {
	s := openStore(t)
	if err := s.CreateTable("users", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateTable("posts", value.Object{}); err != nil {
		t.Fatal(err)
	}
	if err := s.DropAll(); err != nil {
		t.Fatal(err)
	}
	tables, err := s.GetAllTables()
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %v", tables)
	}
}
