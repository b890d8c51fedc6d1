package index

import "fmt"

// NotFoundError means the index has no shard at all for name. Unlike the
// other Oracle errors this is not fatal to the caller: an empty version
// list is the correct answer and drives the solver's conflict path
// (spec.md S7).
type NotFoundError struct {
	Name string
	// Suggestions holds near-name matches, if the caller's Oracle can offer
	// any, to help a human fix a typo'd dependency name.
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no package named %q in the index", e.Name)
	}
	return fmt.Sprintf("no package named %q in the index (did you mean one of %v?)", e.Name, e.Suggestions)
}

// TransportError wraps a network/IO failure reaching the index. It is
// retriable by the caller; the Oracle itself never retries.
type TransportError struct {
	Name  string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching index shard for %q: %s", e.Name, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// MalformedIndexError means a shard line failed to parse. A partial shard
// read is never returned to the caller; the whole resolve call fails.
type MalformedIndexError struct {
	Name   string
	Line   int
	Reason string
}

func (e *MalformedIndexError) Error() string {
	return fmt.Sprintf("malformed index entry for %q at line %d: %s", e.Name, e.Line, e.Reason)
}
