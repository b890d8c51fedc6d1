package index

import "github.com/cratesolve/cratesolve/version"

// pseudoPackages resolve to a single synthetic version with no dependencies
// and are never fetched from the network, per spec.md S4.B.
var pseudoPackages = map[string]bool{
	"std":        true,
	"core":       true,
	"alloc":      true,
	"proc_macro": true,
}

// IsPseudoPackage reports whether name is one of the built-in synthetic
// packages handled without a network round trip.
func IsPseudoPackage(name string) bool { return pseudoPackages[name] }

// pseudoVersion is the single synthetic version every pseudo-package
// resolves to.
var pseudoVersion = mustPseudoVersion()

func mustPseudoVersion() version.Version {
	v, err := version.ParseVersion("1.0.0")
	if err != nil {
		panic(err) // unreachable: "1.0.0" is always a valid version
	}
	return v
}
