package version

import (
	"regexp"
	"strconv"
	"strings"
)

// partialRe parses a (possibly partial) SemVer-ish version as it appears in
// a requirement comparator: "1", "1.2", "1.2.3", "1.2.3-alpha.1".
var partialRe = regexp.MustCompile(`^(\d+)(?:\.(\d+)(?:\.(\d+))?)?(?:-([0-9A-Za-z.-]+))?$`)

type partial struct {
	major, minor, patch   int64
	hasMinor, hasPatch    bool
	pre                   string
}

func parsePartial(s string) (partial, error) {
	m := partialRe.FindStringSubmatch(s)
	if m == nil {
		return partial{}, &ParseRequirementError{Input: s, Reason: "not a valid version"}
	}
	var p partial
	p.major, _ = strconv.ParseInt(m[1], 10, 64)
	if m[2] != "" {
		p.hasMinor = true
		p.minor, _ = strconv.ParseInt(m[2], 10, 64)
	}
	if m[3] != "" {
		p.hasPatch = true
		p.patch, _ = strconv.ParseInt(m[3], 10, 64)
	}
	p.pre = m[4]
	return p, nil
}

func (p partial) version() Version {
	return mustNew(p.major, p.minor, p.patch, p.pre, "")
}

// Parse parses a SemVer requirement string - a comma-separated list of
// comparators, each becoming a Range, intersected together - per the
// comparator table in spec.md S3. A requirement with no comparators (the
// empty string, or "*") is Full(). Any returned error's Position is the byte
// offset of the failing comparator within s.
func Parse(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return Full(), nil
	}

	var result Range
	pos := 0
	for i, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		leading := len(part) - len(strings.TrimLeft(part, " \t"))
		cr, err := parseComparator(trimmed, pos+leading)
		if err != nil {
			return Range{}, err
		}
		if i == 0 {
			// The first comparator seeds the result with its own pre-release
			// admissions; Full() admits none, so intersecting with it alone
			// would drop them.
			result = Full().Intersection(cr)
			result.prerelease = cr.prerelease
		} else {
			result = result.Intersection(cr)
		}
		pos += len(part) + 1 // +1 for the comma separator
	}
	return result, nil
}

func parseComparator(s string, pos int) (Range, error) {
	if s == "" || s == "*" {
		return Full(), nil
	}

	op, rest := splitOperator(s)

	p, err := parsePartial(rest)
	if err != nil {
		return Range{}, &ParseRequirementError{Input: s, Position: pos, Reason: err.Error()}
	}

	switch op {
	case "=":
		return equalRange(p), nil
	case ">":
		return HigherThan(p.version().Bump()), nil
	case ">=":
		return HigherThan(p.version()), nil
	case "<":
		return StrictlyLowerThan(p.version()), nil
	case "<=":
		return StrictlyLowerThan(p.version().Bump()), nil
	case "~":
		return tildeRange(p), nil
	case "^", "":
		return caretRange(p), nil
	default:
		return Range{}, &ParseRequirementError{Input: s, Position: pos, Reason: "unrecognized comparator " + op}
	}
}

// splitOperator peels a leading comparator operator (">=", "<=", ">", "<",
// "=", "~", "^") off s; a bare version with no operator defaults to caret,
// matching the crate registry's actual requirement syntax.
func splitOperator(s string) (op, rest string) {
	for _, candidate := range []string{">=", "<=", ">", "<", "=", "~", "^"} {
		if strings.HasPrefix(s, candidate) {
			return candidate, strings.TrimSpace(s[len(candidate):])
		}
	}
	return "", s
}

func equalRange(p partial) Range {
	lo := p.version()
	if p.hasPatch {
		r := Singleton(lo)
		return r
	}
	var hi Version
	if p.hasMinor {
		hi = newPlain(p.major, p.minor+1, 0)
	} else {
		hi = newPlain(p.major+1, 0, 0)
	}
	return HigherThan(lo).Intersection(StrictlyLowerThan(hi))
}

func tildeRange(p partial) Range {
	lo := p.version()
	var hi Version
	if p.hasMinor {
		hi = newPlain(p.major, p.minor+1, 0)
	} else {
		hi = newPlain(p.major+1, 0, 0)
	}
	return HigherThan(lo).Intersection(StrictlyLowerThan(hi))
}

func caretRange(p partial) Range {
	lo := p.version()
	var hi Version
	switch {
	case p.major > 0:
		hi = newPlain(p.major+1, 0, 0)
	case p.hasMinor && p.minor > 0:
		hi = newPlain(0, p.minor+1, 0)
	case p.hasPatch:
		hi = newPlain(0, 0, p.patch+1)
	case p.hasMinor:
		hi = newPlain(0, 1, 0)
	default:
		hi = newPlain(1, 0, 0)
	}
	return HigherThan(lo).Intersection(StrictlyLowerThan(hi))
}
