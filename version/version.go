// Package version implements the SemVer version and range algebra the
// solver reasons over: a totally-ordered Version type and a Range type
// representing an arbitrary union of half-open intervals over it.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// Version is a SemVer triple with optional pre-release/build metadata,
// totally ordered per the SemVer spec.
type Version struct {
	sv *semver.Version
}

// Zero is the least element of the total order, 0.0.0.
var Zero = mustNew(0, 0, 0, "", "")

func mustNew(major, minor, patch int64, pre, metadata string) Version {
	return Version{sv: semver.New(major, minor, patch, pre, metadata)}
}

// ParseVersion parses a single SemVer version string (not a requirement or
// range expression - see Parse for that).
func ParseVersion(s string) (Version, error) {
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, &ParseVersionError{Input: s, Reason: err.Error()}
	}
	return Version{sv: sv}, nil
}

// String renders the version in canonical SemVer form.
func (v Version) String() string {
	if v.sv == nil {
		return Zero.String()
	}
	return v.sv.String()
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o.
func (v Version) Compare(o Version) int {
	return v.normalized().Compare(o.normalized())
}

func (v Version) normalized() *semver.Version {
	if v.sv == nil {
		return Zero.sv
	}
	return v.sv
}

// Less reports whether v sorts strictly before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// IsPrerelease reports whether v carries a pre-release component.
func (v Version) IsPrerelease() bool { return v.normalized().Prerelease() != "" }

// Major, Minor, and Patch expose the numeric SemVer components.
func (v Version) Major() int64 { return v.normalized().Major() }
func (v Version) Minor() int64 { return v.normalized().Minor() }
func (v Version) Patch() int64 { return v.normalized().Patch() }

// SameRelease reports whether v and o agree on major.minor.patch, ignoring
// pre-release and build metadata.
func (v Version) SameRelease(o Version) bool {
	return v.Major() == o.Major() && v.Minor() == o.Minor() && v.Patch() == o.Patch()
}

// Bump returns the smallest release (non-pre-release) version strictly
// greater than v: for any v, v < v.Bump() and no release version w
// satisfies v < w < v.Bump(). Pre-release versions can lie between v and
// v.Bump() (1.2.4-alpha lies between 1.2.3 and 1.2.4); Range admits those
// only through its explicit pre-release allow-list.
func (v Version) Bump() Version {
	n := v.normalized()
	if n.Prerelease() != "" {
		// The smallest release above a pre-release is its own release.
		return mustNew(n.Major(), n.Minor(), n.Patch(), "", "")
	}
	return mustNew(n.Major(), n.Minor(), n.Patch()+1, "", "")
}

func newPlain(major, minor, patch int64) Version {
	return mustNew(major, minor, patch, "", "")
}
