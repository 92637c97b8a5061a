package runtime

import "github.com/phillarmonic/mockscript/internal/value"

// Cache is the key/value store backing the cacheGet/cacheSet/cacheDel/
// cacheClear builtins. internal/cache provides the SoloDB-backed
// implementation; tests may substitute an in-memory one.
type Cache interface {
	Get(key string) (value.Value, bool, error)
	Set(key string, v value.Value, ttlSeconds float64) error
	Delete(key string) error
	Clear() error
}

// TableStore is the schemaless document store backing the db* builtins.
// internal/tabledb provides the SoloDB-backed implementation.
type TableStore interface {
	CreateTable(name string, schema value.Value) error
	GetAllTables() ([]string, error)
	DropTable(name string) error
	CreateEntry(table string, entry value.Value) (string, error)
	GetAll(table string) ([]value.Value, error)
	GetByID(table, id string) (value.Value, bool, error)
	GetByFields(table string, filter value.Value) ([]value.Value, error)
	UpdateByID(table, id string, patch value.Value) (bool, error)
	UpdateByFields(table string, filter, patch value.Value) (int, error)
	DeleteByID(table, id string) (bool, error)
	DeleteByFields(table string, filter value.Value) (int, error)
	DropAll() error
}

// Globals is the process-wide singleton every script evaluation shares:
// one cache handle and one table store handle, built once at server
// startup and threaded through every request's EvalCtx.
type Globals struct {
	Cache Cache
	Store TableStore
}

func NewGlobals(cache Cache, store TableStore) *Globals {
	return &Globals{Cache: cache, Store: store}
}
