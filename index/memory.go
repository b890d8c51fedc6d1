package index

import (
	"context"
	"sort"

	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

// Memory is the in-memory Oracle test double (spec.md S9: "two concrete
// implementations, live network and in-memory test double"). Tests build
// one with literal package/version/dep fixture tables, mirroring the
// teacher's own solve_basic_test.go style.
type Memory struct {
	interner *pkgname.Interner
	byName   map[string][]PackageVersion // version-descending
}

// NewMemory returns an empty in-memory Oracle using in for name interning.
func NewMemory(in *pkgname.Interner) *Memory {
	return &Memory{interner: in, byName: make(map[string][]PackageVersion)}
}

// Add registers one concrete version of name with its dependencies, given
// as (depName, requirement) pairs. It panics on a malformed requirement
// string, since fixture data is expected to be well-formed.
func (m *Memory) Add(name, ver string, deps ...[2]string) *Memory {
	v, err := version.ParseVersion(ver)
	if err != nil {
		panic(err)
	}

	pv := PackageVersion{Name: m.interner.Intern(name), Version: v}
	for _, d := range deps {
		r, err := version.Parse(d[1])
		if err != nil {
			panic(err)
		}
		pv.Deps = append(pv.Deps, Dependency{Name: m.interner.Intern(d[0]), Range: r})
	}

	m.byName[name] = append(m.byName[name], pv)
	sort.Slice(m.byName[name], func(i, j int) bool {
		return m.byName[name][j].Version.Less(m.byName[name][i].Version)
	})
	return m
}

func (m *Memory) Resolve(_ context.Context, name pkgname.Name, r version.Range) ([]PackageVersion, error) {
	if IsPseudoPackage(name.String()) {
		return []PackageVersion{{Name: name, Version: pseudoVersion}}, nil
	}

	all, ok := m.byName[name.String()]
	if !ok {
		return nil, &NotFoundError{Name: name.String()}
	}

	out := make([]PackageVersion, 0, len(all))
	for _, pv := range all {
		if r.Contains(pv.Version) {
			out = append(out, pv)
		}
	}
	return out, nil
}
