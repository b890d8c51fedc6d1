package version

// An interval is a half-open [lo, hi) span over the Version total order.
// hasHi false encodes hi = +infinity.
type interval struct {
	lo    Version
	hasHi bool
	hi    Version
}

func (iv interval) contains(v Version) bool {
	if v.Less(iv.lo) {
		return false
	}
	return !iv.hasHi || v.Less(iv.hi)
}

// Range is a finite union of disjoint, sorted half-open intervals over the
// Version total order, representing a set of admissible versions.
//
// Pre-release admission follows the policy documented on Singleton: a
// pre-release version is a member of a Range only if it was explicitly
// admitted via Singleton (or survives an intersection/union that preserves
// that admission). A Range built purely from HigherThan/StrictlyLowerThan/
// Full/Empty never admits pre-release versions, even if they fall within
// the numeric bounds of an interval - this is the documented default policy
// from spec.md S4.A, chosen over admitting pre-releases into wildcard
// ranges.
type Range struct {
	intervals []interval
	// prerelease lists the specific pre-release versions this Range admits
	// despite the blanket pre-release exclusion above.
	prerelease []Version
}

// Full returns the range containing every version.
func Full() Range {
	return Range{intervals: []interval{{lo: Zero, hasHi: false}}}
}

// Empty returns the range containing no versions.
func Empty() Range {
	return Range{}
}

// Singleton returns the range containing exactly v. If v is a pre-release,
// it is the one pre-release version this Range will ever admit.
func Singleton(v Version) Range {
	r := Range{intervals: []interval{{lo: v, hasHi: true, hi: v.Bump()}}}
	if v.IsPrerelease() {
		r.prerelease = []Version{v}
	}
	return r
}

// HigherThan returns the range of versions >= v.
func HigherThan(v Version) Range {
	return Range{intervals: []interval{{lo: v, hasHi: false}}}
}

// StrictlyLowerThan returns the range of versions < v.
func StrictlyLowerThan(v Version) Range {
	if v.Equal(Zero) {
		return Empty()
	}
	return Range{intervals: []interval{{lo: Zero, hasHi: true, hi: v}}}
}

// IsEmpty reports whether r admits no versions at all.
func (r Range) IsEmpty() bool { return len(r.intervals) == 0 }

// IsFull reports whether r is exactly the universe of all versions.
func (r Range) IsFull() bool {
	return len(r.intervals) == 1 && r.intervals[0].lo.Equal(Zero) && !r.intervals[0].hasHi
}

// Contains reports whether v is a member of r.
func (r Range) Contains(v Version) bool {
	if v.IsPrerelease() {
		admitted := false
		for _, p := range r.prerelease {
			if p.Equal(v) {
				admitted = true
				break
			}
		}
		if !admitted {
			return false
		}
	}
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
		if v.Less(iv.lo) {
			break // intervals are sorted; nothing further can match
		}
	}
	return false
}

func maxVersion(a, b Version) Version {
	if a.Less(b) {
		return b
	}
	return a
}

func minVersion(a, b Version) Version {
	if a.Less(b) {
		return a
	}
	return b
}

// endBefore reports whether interval a's upper bound is reached no later
// than b's (treating +infinity as the greatest possible bound).
func endBefore(a, b interval) bool {
	if !a.hasHi {
		return false
	}
	if !b.hasHi {
		return true
	}
	return a.hi.Less(b.hi) || a.hi.Equal(b.hi)
}

// Intersection returns the range admitting exactly the versions in both r
// and other.
func (r Range) Intersection(other Range) Range {
	var out []interval
	i, j := 0, 0
	for i < len(r.intervals) && j < len(other.intervals) {
		a, b := r.intervals[i], other.intervals[j]
		lo := maxVersion(a.lo, b.lo)

		var hasHi bool
		var hi Version
		switch {
		case !a.hasHi && !b.hasHi:
			hasHi = false
		case !a.hasHi:
			hasHi, hi = true, b.hi
		case !b.hasHi:
			hasHi, hi = true, a.hi
		default:
			hasHi, hi = true, minVersion(a.hi, b.hi)
		}

		if !hasHi || lo.Less(hi) {
			out = append(out, interval{lo: lo, hasHi: hasHi, hi: hi})
		}

		if endBefore(a, b) {
			i++
		} else {
			j++
		}
	}
	return Range{intervals: out, prerelease: intersectPrereleases(r.prerelease, other.prerelease)}
}

// Union returns the range admitting every version in either r or other.
func (r Range) Union(other Range) Range {
	all := append(append([]interval{}, r.intervals...), other.intervals...)
	sortIntervals(all)

	var out []interval
	for _, iv := range all {
		if len(out) == 0 {
			out = append(out, iv)
			continue
		}
		last := &out[len(out)-1]
		if !last.hasHi {
			continue // already open-ended; nothing can extend it further
		}
		if iv.lo.Less(last.hi) || iv.lo.Equal(last.hi) {
			if !iv.hasHi {
				last.hasHi = false
			} else if last.hi.Less(iv.hi) {
				last.hi = iv.hi
			}
			continue
		}
		out = append(out, iv)
	}
	return Range{intervals: out, prerelease: unionPrereleases(r.prerelease, other.prerelease)}
}

// Complement returns the range admitting every version not in r.
func (r Range) Complement() Range {
	var out []interval
	cursor := Zero
	haveCursor := true

	for _, iv := range r.intervals {
		if haveCursor && cursor.Less(iv.lo) {
			out = append(out, interval{lo: cursor, hasHi: true, hi: iv.lo})
		}
		if !iv.hasHi {
			haveCursor = false
			break
		}
		cursor = iv.hi
		haveCursor = true
	}
	if haveCursor {
		out = append(out, interval{lo: cursor, hasHi: false})
	}
	// The complement of "admits pre-release p" is "does not admit p"; since
	// complement is taken against the Zero..infinity domain and pre-release
	// admission is an explicit allow-list layered on top (not a subtraction
	// from the interval domain), the complement carries no pre-release
	// admissions of its own.
	return Range{intervals: out}
}

// Equal reports whether r and other admit exactly the same set of
// versions. Both operands are assumed to be in the canonical disjoint,
// sorted form every constructor and combinator in this package produces.
func (r Range) Equal(other Range) bool {
	if len(r.intervals) != len(other.intervals) {
		return false
	}
	for i, iv := range r.intervals {
		o := other.intervals[i]
		if iv.hasHi != o.hasHi || !iv.lo.Equal(o.lo) {
			return false
		}
		if iv.hasHi && !iv.hi.Equal(o.hi) {
			return false
		}
	}
	if len(r.prerelease) != len(other.prerelease) {
		return false
	}
	for _, p := range r.prerelease {
		found := false
		for _, q := range other.prerelease {
			if p.Equal(q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every version admitted by r is also admitted by
// other.
func (r Range) SubsetOf(other Range) bool {
	return r.Intersection(other).Equal(r)
}

// Disjoint reports whether r and other share no admitted version.
func (r Range) Disjoint(other Range) bool {
	return r.Intersection(other).IsEmpty()
}

func intersectPrereleases(a, b []Version) []Version {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	var out []Version
	for _, x := range a {
		for _, y := range b {
			if x.Equal(y) {
				out = append(out, x)
			}
		}
	}
	return out
}

func unionPrereleases(a, b []Version) []Version {
	out := append([]Version{}, a...)
	for _, y := range b {
		dup := false
		for _, x := range a {
			if x.Equal(y) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, y)
		}
	}
	return out
}

func sortIntervals(ivs []interval) {
	// Insertion sort: interval counts per range stay small in practice, and
	// this keeps the comparison logic (which must special-case +infinity)
	// in one place rather than behind sort.Interface plumbing.
	for i := 1; i < len(ivs); i++ {
		for j := i; j > 0 && intervalLess(ivs[j], ivs[j-1]); j-- {
			ivs[j], ivs[j-1] = ivs[j-1], ivs[j]
		}
	}
}

func intervalLess(a, b interval) bool {
	return a.lo.Less(b.lo)
}
