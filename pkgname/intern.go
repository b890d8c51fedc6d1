// Package pkgname interns package names so equality and hashing stay cheap
// no matter how large the dependency graph grows.
package pkgname

import (
	"sort"
	"sync"

	radix "github.com/armon/go-radix"
)

// Root is the name of the synthetic root package the solver seeds itself
// with. It is never returned in an externally-visible Solution.
const Root = "@@root"

// Name is an interned, case-sensitive package identifier. Two Names compare
// equal with == iff they were interned from the same underlying string; the
// comparison never touches the string bytes.
type Name struct {
	p *string
}

// String returns the original text of the name. The zero Name prints as "".
func (n Name) String() string {
	if n.p == nil {
		return ""
	}
	return *n.p
}

// IsZero reports whether n is the zero value (never interned).
func (n Name) IsZero() bool { return n.p == nil }

// Less gives Names a total, deterministic order for sorted output.
func (n Name) Less(o Name) bool { return n.String() < o.String() }

// Interner is the process-wide table backing Name identity. It is safe for
// concurrent use; the same string always interns to the same Name.
type Interner struct {
	mu   sync.Mutex
	tree *radix.Tree
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{tree: radix.New()}
}

// Intern returns the canonical Name for s, creating it on first sight.
func (in *Interner) Intern(s string) Name {
	in.mu.Lock()
	defer in.mu.Unlock()

	if v, ok := in.tree.Get(s); ok {
		return Name{p: v.(*string)}
	}
	cp := s
	in.tree.Insert(s, &cp)
	return Name{p: &cp}
}

// Suggestions returns up to limit interned names sharing prefix, sorted,
// for "did you mean" style diagnostics on a NotFound error.
func (in *Interner) Suggestions(prefix string, limit int) []string {
	in.mu.Lock()
	defer in.mu.Unlock()

	var out []string
	in.tree.WalkPrefix(prefix, func(s string, _ interface{}) bool {
		out = append(out, s)
		return len(out) >= limit
	})
	sort.Strings(out)
	return out
}
