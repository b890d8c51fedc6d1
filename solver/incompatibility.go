package solver

import (
	"strings"

	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

// Term is one clause of an Incompatibility: a claim that package's admissible
// range contains Range. "Contains" here always means the positive direction
// (p ∈ r); a dependency edge (q, r_q) contributes the term (q, r_q.Complement())
// so that the whole Incompatibility reads "this version ∧ q ∉ r_q is forbidden".
type Term struct {
	Package pkgname.Name
	Range   version.Range
}

// Incompatibility is a disjunctive clause: the conjunction of all its Terms
// being simultaneously true is forbidden (spec.md S4.D.2). Reason is a
// human-readable description used only for diagnostics; it carries no
// solving semantics.
type Incompatibility struct {
	Terms  []Term
	Reason string
}

func (ic *Incompatibility) String() string {
	if ic.Reason != "" {
		return ic.Reason
	}
	parts := make([]string, len(ic.Terms))
	for i, t := range ic.Terms {
		parts[i] = t.Package.String() + " ∈ " + t.Range.String()
	}
	return "not all of (" + strings.Join(parts, " ∧ ") + ")"
}

// rootDepIncompatibility encodes "root ∈ {0.0.0} ∧ dep ∉ range is forbidden",
// i.e. once root is decided, dep must lie in range.
func rootDepIncompatibility(root pkgname.Name, rootVersion version.Version, dep pkgname.Name, r version.Range) *Incompatibility {
	return &Incompatibility{
		Terms: []Term{
			{Package: root, Range: version.Singleton(rootVersion)},
			{Package: dep, Range: r.Complement()},
		},
		Reason: root.String() + " requires " + dep.String() + " " + r.String(),
	}
}

// depIncompatibility encodes "parent ∈ {parentVersion} ∧ dep ∉ r is
// forbidden" - the edge added when a decision's dependencies are fetched
// (spec.md S4.D.3 step 4).
func depIncompatibility(parent pkgname.Name, parentVersion version.Version, dep pkgname.Name, r version.Range) *Incompatibility {
	return &Incompatibility{
		Terms: []Term{
			{Package: parent, Range: version.Singleton(parentVersion)},
			{Package: dep, Range: r.Complement()},
		},
		Reason: parent.String() + "@" + parentVersion.String() + " requires " + dep.String() + " " + r.String(),
	}
}

// termVerdict classifies a single Term against the solver's current
// knowledge of its package's admissible range.
type termVerdict int

const (
	// termSatisfied: the package's admissible range is already a subset of
	// the term's range - the term holds no matter what version eventually
	// gets picked.
	termSatisfied termVerdict = iota
	// termContradicted: the package's admissible range shares nothing with
	// the term's range - the term can never hold.
	termContradicted
	// termInconclusive: neither of the above; the term's fate is still open.
	termInconclusive
)

func classify(current, termRange version.Range) termVerdict {
	switch {
	case current.SubsetOf(termRange):
		return termSatisfied
	case current.Disjoint(termRange):
		return termContradicted
	default:
		return termInconclusive
	}
}
