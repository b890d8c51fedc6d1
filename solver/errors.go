package solver

import "fmt"

// UnsatisfiableError is fatal: the root dependency graph admits no
// assignment. Proof carries the terminal incompatibility (or the first one
// ever found unreachable, under chronological backtracking) for diagnostics.
type UnsatisfiableError struct {
	Proof string
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("unsatisfiable: %s", e.Proof)
}

// NoCandidatesError means the Oracle returned no versions of Name inside
// Range at a branch the solver was exploring. It is never returned from
// Solve directly - it drives a backtrack internally - but is retained for
// trace/diagnostic callers (spec.md S4.D.7).
type NoCandidatesError struct {
	Name  string
	Range string
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no versions of %s satisfy %s", e.Name, e.Range)
}

// OracleError wraps any lower-level Oracle failure that is not a plain
// NotFound (transport failures, malformed shard lines). It is fatal.
type OracleError struct {
	Cause error
}

func (e *OracleError) Error() string { return fmt.Sprintf("oracle: %s", e.Cause) }
func (e *OracleError) Unwrap() error { return e.Cause }
