// Package builtins implements the fixed set of free functions
// (print/toString/toType/sleep/cache*/db*) and receiver methods
// (array/string length, push, contains, ...). The evaluator tries a free
// function call against these builtins first and falls back to a
// user-declared function only when no builtin has that name.
package builtins

import (
	"log"
	"strings"
	"time"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Names is the fixed set of free-function builtin names. The parser and
// the unknown_calls lint each keep their own copy of this list; nothing
// in the module reads this one.
var Names = map[string]bool{
	"print": true, "toString": true, "toType": true, "sleep": true,
	"cacheGet": true, "cacheSet": true, "cacheDel": true, "cacheClear": true,
	"dbCreateTable": true, "dbGetAllTables": true, "dbDropTable": true, "dbCreateEntry": true,
	"dbGetAll": true, "dbGetById": true, "dbGetByFields": true, "dbUpdateById": true,
	"dbUpdateByFields": true, "dbDeleteById": true, "dbDeleteByFields": true, "dbDrop": true,
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undefined{}
}

func asString(v value.Value, what string, pos ast.Position) (string, error) {
	s, ok := v.(value.String)
	if !ok {
		return "", errors.Mismatch(what+" must be a string", pos)
	}
	return string(s), nil
}

func asNumber(v value.Value, what string, pos ast.Position) (float64, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, errors.Mismatch(what+" must be a number", pos)
	}
	return float64(n), nil
}

// CallFree dispatches a free (non-method) call. handled is false when name
// is not a recognized builtin, in which case the caller should try a
// user-declared function instead.
func CallFree(ctx *runtime.EvalCtx, name string, args []value.Value, pos ast.Position) (result value.Value, handled bool, err error) {
	switch name {
	case "print":
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		log.Printf("[script] %s", strings.Join(parts, " "))
		return value.Undefined{}, true, nil

	case "toString":
		return value.String(arg(args, 0).String()), true, nil

	case "toType":
		return value.Type{T: value.ToType(arg(args, 0))}, true, nil

	case "sleep":
		ms, err := asNumber(arg(args, 0), "sleep duration", pos)
		if err != nil {
			return nil, true, err
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return value.Undefined{}, true, nil

	case "cacheGet":
		key, err := asString(arg(args, 0), "cache key", pos)
		if err != nil {
			return nil, true, err
		}
		v, found, err := ctx.Globals.Cache.Get(key)
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		if !found {
			return value.Undefined{}, true, nil
		}
		return v, true, nil

	case "cacheSet":
		key, err := asString(arg(args, 0), "cache key", pos)
		if err != nil {
			return nil, true, err
		}
		ttl := 0.0
		if len(args) > 2 {
			ttl, err = asNumber(args[2], "cache TTL", pos)
			if err != nil {
				return nil, true, err
			}
		}
		if err := ctx.Globals.Cache.Set(key, arg(args, 1), ttl); err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Undefined{}, true, nil

	case "cacheDel":
		key, err := asString(arg(args, 0), "cache key", pos)
		if err != nil {
			return nil, true, err
		}
		if err := ctx.Globals.Cache.Delete(key); err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Undefined{}, true, nil

	case "cacheClear":
		if err := ctx.Globals.Cache.Clear(); err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Undefined{}, true, nil

	case "dbCreateTable":
		name, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		if err := ctx.Globals.Store.CreateTable(name, arg(args, 1)); err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Undefined{}, true, nil

	case "dbGetAllTables":
		names, err := ctx.Globals.Store.GetAllTables()
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		out := make(value.Array, len(names))
		for i, n := range names {
			out[i] = value.String(n)
		}
		return out, true, nil

	case "dbDropTable":
		name, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		if err := ctx.Globals.Store.DropTable(name); err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Undefined{}, true, nil

	case "dbCreateEntry":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		id, err := ctx.Globals.Store.CreateEntry(table, arg(args, 1))
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.String(id), true, nil

	case "dbGetAll":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		rows, err := ctx.Globals.Store.GetAll(table)
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Array(rows), true, nil

	case "dbGetById":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		id, err := asString(arg(args, 1), "entry id", pos)
		if err != nil {
			return nil, true, err
		}
		v, found, err := ctx.Globals.Store.GetByID(table, id)
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		if !found {
			return value.Undefined{}, true, nil
		}
		return v, true, nil

	case "dbGetByFields":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		rows, err := ctx.Globals.Store.GetByFields(table, arg(args, 1))
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Array(rows), true, nil

	case "dbUpdateById":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		id, err := asString(arg(args, 1), "entry id", pos)
		if err != nil {
			return nil, true, err
		}
		ok, err := ctx.Globals.Store.UpdateByID(table, id, arg(args, 2))
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Bool(ok), true, nil

	case "dbUpdateByFields":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		n, err := ctx.Globals.Store.UpdateByFields(table, arg(args, 1), arg(args, 2))
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Number(n), true, nil

	case "dbDeleteById":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		id, err := asString(arg(args, 1), "entry id", pos)
		if err != nil {
			return nil, true, err
		}
		ok, err := ctx.Globals.Store.DeleteByID(table, id)
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Bool(ok), true, nil

	case "dbDeleteByFields":
		table, err := asString(arg(args, 0), "table name", pos)
		if err != nil {
			return nil, true, err
		}
		n, err := ctx.Globals.Store.DeleteByFields(table, arg(args, 1))
		if err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Number(n), true, nil

	case "dbDrop":
		if err := ctx.Globals.Store.DropAll(); err != nil {
			return nil, true, errors.Gen(err.Error(), pos)
		}
		return value.Undefined{}, true, nil
	}
	return nil, false, nil
}
