package version

import "strings"

// String renders r as a requirement string that ParseUnion can read back
// into an equal Range: each interval becomes a ">=lo, <hi" (or "=lo" for a
// singleton, or ">=lo" for an open-ended interval) clause, joined with "||"
// since the comparator grammar itself has no union operator. The full range
// renders as "*"; the empty range renders as "<none>", which does not parse.
func (r Range) String() string {
	if r.IsEmpty() {
		return "<none>"
	}
	if r.IsFull() {
		return "*"
	}

	clauses := make([]string, 0, len(r.intervals))
	for _, iv := range r.intervals {
		switch {
		case iv.hasHi && iv.lo.Bump().Equal(iv.hi):
			clauses = append(clauses, "="+iv.lo.String())
		case !iv.hasHi:
			clauses = append(clauses, ">="+iv.lo.String())
		default:
			clauses = append(clauses, ">="+iv.lo.String()+", <"+iv.hi.String())
		}
	}
	return strings.Join(clauses, " || ")
}

// ParseUnion parses the "||"-joined output of Range.String back into a
// Range. This is the inverse used to validate the round-trip property in
// spec.md S8; it is not part of the registry's own requirement grammar
// (which has no union operator), so it lives separately from Parse.
func ParseUnion(s string) (Range, error) {
	parts := strings.Split(s, "||")
	result := Empty()
	for _, part := range parts {
		cr, err := Parse(strings.TrimSpace(part))
		if err != nil {
			return Range{}, err
		}
		result = result.Union(cr)
	}
	return result, nil
}
