package runtime

import "github.com/phillarmonic/mockscript/internal/value"

// RequestSnapshot is the immutable, already-JSON-decoded view of the
// inbound HTTP request a script sees as req.body/params/query/headers.
// It is built once per request dispatch and never mutated afterward —
// scripts cannot write through req.*, enforced both at parse time and by
// the req_imutability lint.
type RequestSnapshot struct {
	Body    value.Value
	Params  value.Value
	Query   value.Value
	Headers value.Value
}
