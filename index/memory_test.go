package index

import (
	"context"
	"errors"
	"testing"

	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

func TestMemoryResolveFiltersByRange(t *testing.T) {
	in := pkgname.NewInterner()
	m := NewMemory(in).
		Add("a", "1.0.0").
		Add("a", "1.1.0").
		Add("a", "1.2.0-pre")

	r, err := version.Parse("^1")
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Resolve(context.Background(), in.Intern("a"), r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matching versions (pre-release excluded), got %d: %v", len(got), got)
	}
	if got[0].Version.String() != "1.1.0" {
		t.Fatalf("expected highest version first, got %s", got[0].Version.String())
	}
}

func TestMemoryResolveNotFound(t *testing.T) {
	in := pkgname.NewInterner()
	m := NewMemory(in)

	_, err := m.Resolve(context.Background(), in.Intern("missing"), version.Full())
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMemoryResolvePseudoPackage(t *testing.T) {
	in := pkgname.NewInterner()
	m := NewMemory(in)

	got, err := m.Resolve(context.Background(), in.Intern("std"), version.Full())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got[0].Deps) != 0 {
		t.Fatalf("std should resolve to exactly one dependency-free synthetic version, got %v", got)
	}
}

func TestMemoryRenamedDepUsesTarget(t *testing.T) {
	in := pkgname.NewInterner()
	m := NewMemory(in).
		Add("a", "1.0.0", [2]string{"b_renamed", "^1"}).
		Add("b_renamed", "1.0.0")

	got, err := m.Resolve(context.Background(), in.Intern("a"), version.Full())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Deps[0].Name.String() != "b_renamed" {
		t.Fatalf("expected the renamed target's name as the dep identity")
	}
}
