package version

import "testing"

func TestParseAndCompare(t *testing.T) {
	a, err := ParseVersion("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseVersion("1.10.0")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Less(b) {
		t.Fatalf("expected 1.2.3 < 1.10.0")
	}
	if b.Less(a) {
		t.Fatalf("expected 1.10.0 not < 1.2.3")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := ParseVersion("not-a-version"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestBump(t *testing.T) {
	v, _ := ParseVersion("1.2.3")
	bumped := v.Bump()
	if !v.Less(bumped) {
		t.Fatalf("bump must be strictly greater")
	}
	if bumped.String() != "1.2.4" {
		t.Fatalf("got %s, want 1.2.4", bumped.String())
	}

	pre, _ := ParseVersion("1.2.3-alpha.1")
	bumpedPre := pre.Bump()
	if bumpedPre.String() != "1.2.3" {
		t.Fatalf("bumping a pre-release should land on its release, got %s", bumpedPre.String())
	}
}

func TestZeroIsLeast(t *testing.T) {
	v, _ := ParseVersion("0.0.1")
	if v.Less(Zero) {
		t.Fatalf("0.0.1 must not be less than Zero")
	}
	if !Zero.Less(v) {
		t.Fatalf("Zero must be less than any positive version")
	}
}
