// Package tabledb implements the runtime.TableStore interface backing
// the db* builtins on SoloDB: each table is a namespaced set of blob
// keys (a string-id index plus one row blob per entry), since SoloDB
// itself only exposes a flat key/blob namespace with no native notion of
// a table or a field-filtered query.
package tabledb

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	solodb "github.com/phillarmonic/SoloDB"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Store is a SoloDB-backed document store, organized as
// tables:list -> []string
// table:<name>:meta  -> schema blob (JSON value)
// table:<name>:index -> []string of row ids
// table:<name>:row:<id> -> row blob (JSON value)
type Store struct {
	db *solodb.DB
	mu sync.Mutex
}

const neverExpires = 100 * 365 * 24 * time.Hour

func Open(path string) (*Store, error) {
	db, err := solodb.Open(solodb.Options{Path: path, Durability: solodb.SyncBatch})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func tableMetaKey(table string) string  { return "table:" + table + ":meta" }
func tableIndexKey(table string) string { return "table:" + table + ":index" }
func rowKey(table, id string) string    { return "table:" + table + ":row:" + id }

const tablesListKey = "tables:list"

func (s *Store) getStrings(key string) ([]string, error) {
	rc, _, _, err := s.db.GetBlob(key)
	if err == solodb.ErrNotFound || err == solodb.ErrExpired {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) setStrings(key string, list []string) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.db.SetBlob(key, bytes.NewReader(raw), int64(len(raw)), time.Now().Add(neverExpires))
}

func (s *Store) getRow(table, id string) (value.Value, bool, error) {
	rc, _, _, err := s.db.GetBlob(rowKey(table, id))
	if err == solodb.ErrNotFound || err == solodb.ErrExpired {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	v, err := value.ParseJSON(raw, ast.UNKNOWN)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Store) setRow(table, id string, v value.Value) error {
	raw, err := value.MarshalJSON(v)
	if err != nil {
		return err
	}
	return s.db.SetBlob(rowKey(table, id), bytes.NewReader(raw), int64(len(raw)), time.Now().Add(neverExpires))
}

func newID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *Store) CreateTable(name string, schema value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tables, err := s.getStrings(tablesListKey)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t == name {
			return fmt.Errorf("table %q already exists", name)
		}
	}
	if err := s.setStrings(tablesListKey, append(tables, name)); err != nil {
		return err
	}
	raw, err := value.MarshalJSON(schema)
	if err != nil {
		return err
	}
	if err := s.db.SetBlob(tableMetaKey(name), bytes.NewReader(raw), int64(len(raw)), time.Now().Add(neverExpires)); err != nil {
		return err
	}
	return s.setStrings(tableIndexKey(name), nil)
}

func (s *Store) GetAllTables() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tables, err := s.getStrings(tablesListKey)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

func (s *Store) DropTable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.getStrings(tableIndexKey(name))
	if err != nil {
		return err
	}
	for _, id := range ids {
		_ = s.db.Delete(rowKey(name, id))
	}
	_ = s.db.Delete(tableIndexKey(name))
	_ = s.db.Delete(tableMetaKey(name))
	tables, err := s.getStrings(tablesListKey)
	if err != nil {
		return err
	}
	filtered := tables[:0]
	for _, t := range tables {
		if t != name {
			filtered = append(filtered, t)
		}
	}
	return s.setStrings(tablesListKey, filtered)
}

func (s *Store) CreateEntry(table string, entry value.Value) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := newID()
	if err := s.setRow(table, id, entry); err != nil {
		return "", err
	}
	ids, err := s.getStrings(tableIndexKey(table))
	if err != nil {
		return "", err
	}
	if err := s.setStrings(tableIndexKey(table), append(ids, id)); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetAll(table string) ([]value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.getStrings(tableIndexKey(table))
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, 0, len(ids))
	for _, id := range ids {
		v, found, err := s.getRow(table, id)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) GetByID(table, id string) (value.Value, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getRow(table, id)
}

// matchIDs returns the ids and values of every row whose fields satisfy
// filter (an Object of field -> expected value; every field must match).
func (s *Store) matchIDs(table string, filter value.Value) ([]string, []value.Value, error) {
	want, ok := filter.(value.Object)
	ids, err := s.getStrings(tableIndexKey(table))
	if err != nil {
		return nil, nil, err
	}
	var matchedIDs []string
	var matchedVals []value.Value
	for _, id := range ids {
		v, found, err := s.getRow(table, id)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			continue
		}
		if ok {
			row, isObj := v.(value.Object)
			if !isObj {
				continue
			}
			matches := true
			for k, want := range want {
				if got, present := row[k]; !present || !value.Equal(got, want) {
					matches = false
					break
				}
			}
			if !matches {
				continue
			}
		}
		matchedIDs = append(matchedIDs, id)
		matchedVals = append(matchedVals, v)
	}
	return matchedIDs, matchedVals, nil
}

func (s *Store) GetByFields(table string, filter value.Value) ([]value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, vals, err := s.matchIDs(table, filter)
	return vals, err
}

func mergeObjects(base, patch value.Object) value.Object {
	out := make(value.Object, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func (s *Store) UpdateByID(table, id string, patch value.Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, found, err := s.getRow(table, id)
	if err != nil || !found {
		return false, err
	}
	patchObj, ok := patch.(value.Object)
	if !ok {
		return false, fmt.Errorf("update patch must be an object")
	}
	rowObj, _ := row.(value.Object)
	if err := s.setRow(table, id, mergeObjects(rowObj, patchObj)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) UpdateByFields(table string, filter, patch value.Value) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patchObj, ok := patch.(value.Object)
	if !ok {
		return 0, fmt.Errorf("update patch must be an object")
	}
	ids, vals, err := s.matchIDs(table, filter)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		rowObj, _ := vals[i].(value.Object)
		if err := s.setRow(table, id, mergeObjects(rowObj, patchObj)); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (s *Store) removeIDs(table string, toRemove map[string]bool) error {
	ids, err := s.getStrings(tableIndexKey(table))
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if toRemove[id] {
			_ = s.db.Delete(rowKey(table, id))
			continue
		}
		kept = append(kept, id)
	}
	return s.setStrings(tableIndexKey(table), kept)
}

func (s *Store) DeleteByID(table, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found, err := s.getRow(table, id)
	if err != nil || !found {
		return false, err
	}
	if err := s.removeIDs(table, map[string]bool{id: true}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) DeleteByFields(table string, filter value.Value) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, _, err := s.matchIDs(table, filter)
	if err != nil {
		return 0, err
	}
	toRemove := make(map[string]bool, len(ids))
	for _, id := range ids {
		toRemove[id] = true
	}
	if err := s.removeIDs(table, toRemove); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) DropAll() error {
	tables, err := s.GetAllTables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := s.DropTable(t); err != nil {
			return err
		}
	}
	return nil
}
