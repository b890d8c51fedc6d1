// Package index implements the Index Oracle: given a package name and a
// range, it yields the concrete versions of that package in the range,
// each annotated with its declared normal-kind dependencies. The live
// implementation is backed by a sparse, content-addressable registry index
// fetched over HTTP; an in-memory implementation serves tests.
package index

import (
	"context"

	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

// Dependency is one edge declared by a PackageVersion: a name and the
// range of the named package that satisfies it.
type Dependency struct {
	Name  pkgname.Name
	Range version.Range
}

// PackageVersion is a concrete (name, version) pair together with its
// ordered, normal-kind dependencies. Equality is by (Name, Version);
// dependency order is preserved exactly as the index delivered it, since
// the solver's output determinism depends on that order (spec.md S5).
type PackageVersion struct {
	Name    pkgname.Name
	Version version.Version
	Deps    []Dependency
}

// Oracle is the single capability the solver needs from a registry: given
// a name and a range, return every known version of that name lying in
// the range, sorted by version descending, each with its full
// normal-dependency list. This is the only polymorphic boundary in the
// core (spec.md S9); implementations are the live SparseIndex and the
// in-memory Memory test double.
type Oracle interface {
	Resolve(ctx context.Context, name pkgname.Name, r version.Range) ([]PackageVersion, error)
}
