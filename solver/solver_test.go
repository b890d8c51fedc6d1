package solver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cratesolve/cratesolve/cache"
	"github.com/cratesolve/cratesolve/index"
	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

func mustRange(t *testing.T, s string) version.Range {
	t.Helper()
	r, err := version.Parse(s)
	if err != nil {
		t.Fatalf("version.Parse(%q): %v", s, err)
	}
	return r
}

func constraints(t *testing.T, in *pkgname.Interner, reqs ...[2]string) Constraints {
	t.Helper()
	var cs Constraints
	for _, r := range reqs {
		cs.Compatible = append(cs.Compatible, Constraint{Name: in.Intern(r[0]), Range: mustRange(t, r[1])})
	}
	return cs
}

func assignmentMap(sol Solution) map[string]string {
	out := make(map[string]string, len(sol))
	for _, a := range sol {
		out[a.Name.String()] = a.Version.String()
	}
	return out
}

// S1 - trivial singleton.
func TestTrivialSingleton(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).Add("a", "1.0.0")
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"a", "=1.0.0"}))
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	if len(got) != 1 || got["a"] != "1.0.0" {
		t.Fatalf("expected {a: 1.0.0}, got %v", got)
	}
}

// S2 - chosen by highest, pre-release excluded under the default policy.
func TestChosenByHighestExcludesPrerelease(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0").
		Add("a", "1.1.0").
		Add("a", "1.2.0-pre")
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"a", "^1"}))
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	if len(got) != 1 || got["a"] != "1.1.0" {
		t.Fatalf("expected {a: 1.1.0}, got %v", got)
	}
}

func TestDowngradePrefersLowestAdmissibleVersion(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0").
		Add("a", "1.1.0").
		Add("a", "1.2.0")
	c := cache.New(m)

	cs := constraints(t, in, [2]string{"a", "^1"})
	cs.Downgrade = true

	sol, err := Solve(context.Background(), in, c, cs)
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	if got["a"] != "1.0.0" {
		t.Fatalf("expected downgrade to pick the lowest admissible version 1.0.0, got %v", got)
	}
}

// Constraints.Concurrency overrides the default fetch fan-out bound without
// changing the result.
func TestConcurrencyOverrideProducesSameSolution(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0", [2]string{"b", "^1"}).
		Add("b", "1.0.0")
	c := cache.New(m)

	cs := constraints(t, in, [2]string{"a", "^1"})
	cs.Concurrency = 1

	sol, err := Solve(context.Background(), in, c, cs)
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	if got["a"] != "1.0.0" || got["b"] != "1.0.0" {
		t.Fatalf("expected {a: 1.0.0, b: 1.0.0}, got %v", got)
	}
}

// S3 - transitive narrowing must reject a@1.1.0 because it drags in an
// incompatible b.
func TestTransitiveNarrowingRejectsIncompatibleVersion(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0", [2]string{"b", "^1"}).
		Add("a", "1.1.0", [2]string{"b", ">=2"}).
		Add("b", "1.5.0").
		Add("b", "2.0.0")
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in,
		[2]string{"a", "^1"}, [2]string{"b", "^1"}))
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	want := map[string]string{"a": "1.0.0", "b": "1.5.0"}
	if len(got) != len(want) || got["a"] != want["a"] || got["b"] != want["b"] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// S4 - unsatisfiable.
func TestUnsatisfiable(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0", [2]string{"b", "=1.0.0"}).
		Add("b", "2.0.0")
	c := cache.New(m)

	_, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"a", "*"}))
	var unsat *UnsatisfiableError
	if !errors.As(err, &unsat) {
		t.Fatalf("expected UnsatisfiableError, got %v", err)
	}
}

// S5 - the std pseudo-package resolves without the Memory oracle knowing
// about it at all.
func TestPseudoPackageResolvesWithoutOracleEntry(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in)
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"std", "*"}))
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	if got["std"] != "1.0.0" {
		t.Fatalf("expected std to resolve to the synthetic 1.0.0, got %v", got)
	}
}

// S6 - a direct cycle resolves because both versions' deps are satisfiable.
func TestCycleResolves(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0", [2]string{"b", "*"}).
		Add("b", "1.0.0", [2]string{"a", "*"})
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"a", "*"}))
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	want := map[string]string{"a": "1.0.0", "b": "1.0.0"}
	if len(got) != len(want) || got["a"] != want["a"] || got["b"] != want["b"] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// Universal property: no package name appears twice in the solution.
func TestNoDoubleAssignment(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0", [2]string{"b", "^1"}, [2]string{"c", "^1"}).
		Add("b", "1.0.0", [2]string{"c", "^1"}).
		Add("c", "1.0.0")
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"a", "^1"}))
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, a := range sol {
		if seen[a.Name.String()] {
			t.Fatalf("package %s appears twice in solution %v", a.Name, sol)
		}
		seen[a.Name.String()] = true
	}
}

// Universal property: determinism - the same constraints and oracle produce
// byte-identical solutions across repeated runs.
func TestDeterminism(t *testing.T) {
	build := func() (*pkgname.Interner, *cache.Cache) {
		in := pkgname.NewInterner()
		m := index.NewMemory(in).
			Add("a", "1.0.0", [2]string{"b", "^1"}).
			Add("a", "1.1.0", [2]string{"b", "^1"}).
			Add("b", "1.0.0").
			Add("b", "1.1.0")
		return in, cache.New(m)
	}

	var prev string
	for i := 0; i < 5; i++ {
		in, c := build()
		sol, err := Solve(context.Background(), in, c, constraints(t, in, [2]string{"a", "^1"}))
		if err != nil {
			t.Fatal(err)
		}
		got := ""
		for _, a := range sol {
			got += a.Name.String() + "@" + a.Version.String() + ";"
		}
		if i == 0 {
			prev = got
		} else if got != prev {
			t.Fatalf("run %d produced %q, want %q", i, got, prev)
		}
	}
}

// Universal property: candidate coverage - filtering down to
// candidate_packages keeps only the reachable requested names.
func TestCandidateCoverageFiltersOutput(t *testing.T) {
	in := pkgname.NewInterner()
	m := index.NewMemory(in).
		Add("a", "1.0.0", [2]string{"b", "^1"}).
		Add("b", "1.0.0")
	c := cache.New(m)

	cs := constraints(t, in, [2]string{"a", "^1"})
	cs.Candidates = []pkgname.Name{in.Intern("a")}

	sol, err := Solve(context.Background(), in, c, cs)
	if err != nil {
		t.Fatal(err)
	}
	if len(sol) != 1 || sol[0].Name.String() != "a" {
		t.Fatalf("expected only {a} in filtered output, got %v", assignmentMap(sol))
	}
}

// countingMemory wraps Memory to count Resolve calls per (name, range) key,
// so tests can assert the Cache's at-most-once guarantee held across an
// entire solve, not just within one batch of concurrent callers.
type countingMemory struct {
	*index.Memory
	mu    sync.Mutex
	calls map[string]int
}

func newCountingMemory(in *pkgname.Interner) *countingMemory {
	return &countingMemory{Memory: index.NewMemory(in), calls: make(map[string]int)}
}

func (c *countingMemory) Resolve(ctx context.Context, name pkgname.Name, r version.Range) ([]index.PackageVersion, error) {
	c.mu.Lock()
	c.calls[name.String()+"\x00"+r.String()]++
	c.mu.Unlock()
	return c.Memory.Resolve(ctx, name, r)
}

// Universal property: oracle-call minimality - two packages that both
// depend on the same (name, range) pair must still hit the oracle exactly
// once for that key across the whole solve.
func TestOracleCallMinimalityAcrossDecisions(t *testing.T) {
	in := pkgname.NewInterner()
	m := newCountingMemory(in)
	m.Memory.
		Add("a", "1.0.0", [2]string{"shared", "^1"}).
		Add("b", "1.0.0", [2]string{"shared", "^1"}).
		Add("shared", "1.0.0")
	c := cache.New(m)

	sol, err := Solve(context.Background(), in, c, constraints(t, in,
		[2]string{"a", "*"}, [2]string{"b", "*"}))
	if err != nil {
		t.Fatal(err)
	}
	got := assignmentMap(sol)
	if got["shared"] != "1.0.0" || got["a"] != "1.0.0" || got["b"] != "1.0.0" {
		t.Fatalf("unexpected solution %v", got)
	}

	for key, n := range m.calls {
		if n != 1 {
			t.Fatalf("key %q resolved %d times, want exactly 1", key, n)
		}
	}
}
