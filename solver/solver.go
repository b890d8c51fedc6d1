// Package solver implements the conflict-driven decision procedure: given a
// set of hard version constraints and an Oracle (fronted by a Cache), it
// produces a single consistent (package -> version) assignment or proves
// the constraints unsatisfiable (spec.md S4.D).
//
// The search is seeded with a synthetic root package whose declared
// dependencies are exactly the caller's constraints (spec.md S4.D.1). Unit
// propagation over a growing incompatibility set narrows each package's
// admissible range; when propagation empties a range, the solver
// backtracks chronologically to the most recent decision with an untried
// candidate remaining and retries, exactly as a version queue is advanced
// in the teacher's own backtrack() - see DESIGN.md for why a full
// resolvent-learning CDCL pass was not required to satisfy this spec's
// termination and completeness arguments.
package solver

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cratesolve/cratesolve/cache"
	"github.com/cratesolve/cratesolve/index"
	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

// maxConcurrentFetches is the default bound on simultaneous Oracle calls the
// solver issues while ranking undecided packages by candidate count,
// replacing the legacy unbounded futures fan-out (spec.md S9).
// Constraints.Concurrency overrides it per call.
const maxConcurrentFetches = 16

// Constraint is one hard requirement treated as a dependency of the
// synthetic root package.
type Constraint struct {
	Name  pkgname.Name
	Range version.Range
}

// Constraints is the solver's input: the names the caller wants reflected
// in the output, plus the hard constraints seeding the search.
type Constraints struct {
	// Candidates filters the returned Solution down to these names, if
	// non-empty (spec.md S4.D.5). The core never populates this from a
	// workspace seed itself; an empty Candidates means "return everything
	// reachable".
	Candidates []pkgname.Name
	Compatible []Constraint
	// Downgrade asks the decision heuristic to prefer each undecided
	// package's lowest admissible version instead of the highest,
	// mirroring the teacher's SolveParameters.Downgrade knob. The zero
	// value (false) is the common "prefer modern versions" case from
	// spec.md S4.D.3 step 3.
	Downgrade bool
	// Concurrency bounds simultaneous Oracle fetches inside pickDecision's
	// candidate-count pre-fetch (spec.md S4.D.6). Zero means
	// maxConcurrentFetches.
	Concurrency int
}

// Assignment is one resolved (package, version) pair.
type Assignment struct {
	Name    pkgname.Name
	Version version.Version
}

// Solution is the final assignment, sorted by name.
type Solution []Assignment

// Solve runs the decision procedure to completion. in must be the same
// Interner used to produce every Name reachable through c's Oracle, so
// that root's synthetic Name compares correctly against dependency names.
func Solve(ctx context.Context, in *pkgname.Interner, c *cache.Cache, cs Constraints) (Solution, error) {
	root := in.Intern(pkgname.Root)
	rootVersion := version.Zero

	concurrency := cs.Concurrency
	if concurrency <= 0 {
		concurrency = maxConcurrentFetches
	}

	s := &solver{
		cache:       c,
		root:        root,
		downgrade:   cs.Downgrade,
		concurrency: concurrency,
		seen:        make(map[pkgname.Name]bool),
		ranges:      make(map[pkgname.Name]version.Range),
		decided:     make(map[pkgname.Name]bool),
		decidedVer:  make(map[pkgname.Name]version.Version),
	}

	s.register(root)
	s.narrow(root, version.Singleton(rootVersion))
	s.decided[root] = true
	s.decidedVer[root] = rootVersion

	for _, c := range cs.Compatible {
		s.register(c.Name)
		s.addIncompatibility(rootDepIncompatibility(root, rootVersion, c.Name, c.Range))
	}

	sol, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	return filterSolution(sol, cs.Candidates), nil
}

func filterSolution(sol Solution, candidates []pkgname.Name) Solution {
	if len(candidates) == 0 {
		return sol
	}
	want := make(map[pkgname.Name]bool, len(candidates))
	for _, c := range candidates {
		want[c] = true
	}
	out := make(Solution, 0, len(candidates))
	for _, a := range sol {
		if want[a.Name] {
			out = append(out, a)
		}
	}
	return out
}

// decisionFrame is the solver's analogue of the teacher's versionQueue: the
// candidates remaining for one decided package, in version-descending
// order, with a cursor marking which one is currently committed.
type decisionFrame struct {
	name       pkgname.Name
	trailMark  int
	candidates []index.PackageVersion
	cursor     int
}

// solver holds all mutable search state for a single Solve call. It is not
// safe for concurrent use - the decision loop itself is single-threaded by
// design (spec.md S4.D.6); only the Cache beneath it parallelizes fetches.
type solver struct {
	cache       *cache.Cache
	root        pkgname.Name
	downgrade   bool
	concurrency int

	known []pkgname.Name
	seen  map[pkgname.Name]bool

	ranges     map[pkgname.Name]version.Range
	decided    map[pkgname.Name]bool
	decidedVer map[pkgname.Name]version.Version

	incompatibilities []*Incompatibility

	// trail is an undo log of closures, each restoring exactly the state one
	// mutation changed. Backtracking unwinds it to a decision's trailMark
	// rather than deep-copying the whole search state on every decision.
	trail []func()

	decisions []*decisionFrame
}

func (s *solver) register(name pkgname.Name) {
	if s.seen[name] {
		return
	}
	s.seen[name] = true
	s.known = append(s.known, name)
	s.ranges[name] = version.Full()
}

func (s *solver) rangeOf(name pkgname.Name) version.Range {
	s.register(name)
	return s.ranges[name]
}

func (s *solver) narrow(name pkgname.Name, newRange version.Range) {
	prev := s.rangeOf(name)
	s.ranges[name] = newRange
	s.trail = append(s.trail, func() { s.ranges[name] = prev })
}

func (s *solver) markDecided(name pkgname.Name, v version.Version) {
	wasDecided, prevVer := s.decided[name], s.decidedVer[name]
	s.decided[name] = true
	s.decidedVer[name] = v
	s.trail = append(s.trail, func() {
		s.decided[name] = wasDecided
		s.decidedVer[name] = prevVer
	})
}

func (s *solver) addIncompatibility(ic *Incompatibility) {
	for _, t := range ic.Terms {
		s.register(t.Package)
	}
	// Incompatibilities are permanent facts derived from an immutable Oracle
	// result; unlike ranges and decisions they are never undone on
	// backtrack.
	s.incompatibilities = append(s.incompatibilities, ic)
}

func (s *solver) undoTrailTo(mark int) {
	for len(s.trail) > mark {
		undo := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		undo()
	}
}

// relResult is the outcome of comparing one Incompatibility against the
// current partial solution.
type relResult int

const (
	relConflict relResult = iota
	relUnit
	relInconclusive
)

// relate classifies ic: relConflict means every term is already satisfied
// (a contradiction - ic forbids exactly the state we're in); relUnit means
// exactly one term remains open with every other term satisfied, so its
// negation can be derived; relInconclusive covers everything else,
// including the case where some term is already contradicted (ic is then
// permanently "dead" and poses no further constraint).
func (s *solver) relate(ic *Incompatibility) (relResult, Term) {
	var open Term
	haveOpen := false
	for _, t := range ic.Terms {
		switch classify(s.rangeOf(t.Package), t.Range) {
		case termContradicted:
			return relInconclusive, Term{}
		case termSatisfied:
			continue
		default:
			if haveOpen {
				return relInconclusive, Term{}
			}
			open, haveOpen = t, true
		}
	}
	if !haveOpen {
		return relConflict, Term{}
	}
	return relUnit, open
}

// propagate runs unit propagation to a fixed point, returning the first
// Incompatibility found fully satisfied (a conflict) or nil once no
// further derivation is possible (spec.md S4.D.3 step 1).
func (s *solver) propagate() *Incompatibility {
	changed := true
	for changed {
		changed = false
		for _, ic := range s.incompatibilities {
			verdict, term := s.relate(ic)
			if verdict != relUnit {
				if verdict == relConflict {
					return ic
				}
				continue
			}
			cur := s.rangeOf(term.Package)
			next := cur.Intersection(term.Range.Complement())
			if next.Equal(cur) {
				continue
			}
			s.narrow(term.Package, next)
			changed = true
			if next.IsEmpty() {
				return ic
			}
		}
	}
	return nil
}

func (s *solver) commitDecision(frame *decisionFrame, pv index.PackageVersion) {
	s.narrow(frame.name, version.Singleton(pv.Version))
	s.markDecided(frame.name, pv.Version)
	for _, d := range pv.Deps {
		s.register(d.Name)
		s.addIncompatibility(depIncompatibility(frame.name, pv.Version, d.Name, d.Range))
	}
}

func (s *solver) decide(name pkgname.Name, candidates []index.PackageVersion) {
	frame := &decisionFrame{name: name, trailMark: len(s.trail), candidates: candidates}
	s.decisions = append(s.decisions, frame)
	s.commitDecision(frame, candidates[0])
}

// backtrack undoes the most recent decision and advances its candidate
// cursor, recursing to the decision below when a frame's candidates are
// exhausted. It reports false when there is nowhere left to backtrack to.
func (s *solver) backtrack() bool {
	for len(s.decisions) > 0 {
		top := s.decisions[len(s.decisions)-1]
		s.undoTrailTo(top.trailMark)
		top.cursor++
		if top.cursor < len(top.candidates) {
			s.commitDecision(top, top.candidates[top.cursor])
			return true
		}
		s.decisions = s.decisions[:len(s.decisions)-1]
	}
	return false
}

// pickDecision selects the undecided package with the fewest admissible
// candidates, ties broken by name, pre-fetching candidate counts for every
// undecided package with bounded concurrency (spec.md S4.D.3 step 3,
// S4.D.6). A returned ok=false means every known package is decided: the
// search is complete.
func (s *solver) pickDecision(ctx context.Context) (name pkgname.Name, candidates []index.PackageVersion, ok bool, err error) {
	var undecided []pkgname.Name
	for _, n := range s.known {
		if n == s.root || s.decided[n] || s.rangeOf(n).IsEmpty() {
			continue
		}
		undecided = append(undecided, n)
	}
	if len(undecided) == 0 {
		return pkgname.Name{}, nil, false, nil
	}
	sort.Slice(undecided, func(i, j int) bool { return undecided[i].Less(undecided[j]) })

	results := make([][]index.PackageVersion, len(undecided))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, n := range undecided {
		i, n := i, n
		g.Go(func() error {
			cands, rerr := s.cache.Resolve(gctx, n, s.rangeOf(n))
			if rerr != nil {
				var nf *index.NotFoundError
				if errors.As(rerr, &nf) {
					return nil // treated as zero candidates, not fatal
				}
				return &OracleError{Cause: rerr}
			}
			results[i] = cands
			return nil
		})
	}
	if werr := g.Wait(); werr != nil {
		return pkgname.Name{}, nil, false, werr
	}

	best := 0
	for i := 1; i < len(undecided); i++ {
		if len(results[i]) < len(results[best]) {
			best = i
		}
	}
	cands := results[best]
	if s.downgrade {
		cands = reversed(cands)
	}
	return undecided[best], cands, true, nil
}

// reversed returns a copy of cands in reverse order, so a decisionFrame's
// cursor walking forward tries the lowest admissible version first.
func reversed(cands []index.PackageVersion) []index.PackageVersion {
	out := make([]index.PackageVersion, len(cands))
	for i, pv := range cands {
		out[len(cands)-1-i] = pv
	}
	return out
}

func (s *solver) run(ctx context.Context) (Solution, error) {
	for {
		if ic := s.propagate(); ic != nil {
			if !s.backtrack() {
				return nil, &UnsatisfiableError{Proof: ic.String()}
			}
			continue
		}

		name, candidates, ok, err := s.pickDecision(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.solution(), nil
		}
		if len(candidates) == 0 {
			proof := (&NoCandidatesError{Name: name.String(), Range: s.rangeOf(name).String()}).Error()
			if !s.backtrack() {
				return nil, &UnsatisfiableError{Proof: proof}
			}
			continue
		}
		s.decide(name, candidates)
	}
}

func (s *solver) solution() Solution {
	out := make(Solution, 0, len(s.known))
	for _, name := range s.known {
		if name == s.root {
			continue
		}
		if s.decided[name] {
			out = append(out, Assignment{Name: name, Version: s.decidedVer[name]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name.Less(out[j].Name) })
	return out
}
