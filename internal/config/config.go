// Package config reads cratesolve's TOML configuration file: the registry
// endpoint, an optional auth token, and the solver run preferences exposed
// to callers (spec.md S6, SPEC_FULL.md ambient configuration section).
package config

import (
	"bytes"
	"io"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// FileName is the config file name cratesolve looks for in the working
// directory, mirroring the teacher's RegistryConfigName convention.
const FileName = "cratesolve.toml"

// DefaultRegistryURL is the sparse index base used when no config file
// sets one, per spec.md S4.B's reference index.
const DefaultRegistryURL = "https://index.crates.io"

// DefaultConcurrency bounds simultaneous Oracle fetches when a config file
// does not override it (spec.md S4.D.6, S9).
const DefaultConcurrency = 16

// Config holds the registry connection and solver-run preferences.
type Config struct {
	Registry Registry
	Solve    SolveOptions
}

// Registry identifies the index to query and, optionally, a bearer token
// for a private registry mirror.
type Registry struct {
	URL   string
	Token string
}

// SolveOptions mirrors the handful of knobs gps.SolveParameters exposes on
// the teacher, narrowed to what this solver's decision procedure consumes.
type SolveOptions struct {
	// Concurrency bounds simultaneous Oracle fetches inside one decision's
	// candidate-count pre-fetch (spec.md S4.D.6).
	Concurrency int
	// Downgrade, when true, asks the solver to prefer the lowest admissible
	// version instead of the highest at each decision - the reverse of
	// spec.md S4.D.3's default heuristic. Named to match the teacher's own
	// SolveParameters.Downgrade field and its documented rationale: the
	// zero value should mean the common case (upgrade).
	Downgrade bool
}

type rawConfig struct {
	Registry rawRegistry `toml:"registry"`
	Solve    rawSolve    `toml:"solve"`
}

type rawRegistry struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

type rawSolve struct {
	Concurrency int  `toml:"concurrency"`
	Downgrade   bool `toml:"downgrade"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Registry: Registry{URL: DefaultRegistryURL},
		Solve:    SolveOptions{Concurrency: DefaultConcurrency},
	}
}

// Read parses a cratesolve.toml stream, filling unset fields with the
// defaults from Default().
func Read(r io.Reader) (Config, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(r); err != nil {
		return Config{}, errors.Wrap(err, "reading config stream")
	}

	var raw rawConfig
	if err := toml.Unmarshal(buf.Bytes(), &raw); err != nil {
		return Config{}, errors.Wrap(err, "parsing cratesolve.toml")
	}

	cfg := Default()
	if raw.Registry.URL != "" {
		cfg.Registry.URL = raw.Registry.URL
	}
	cfg.Registry.Token = raw.Registry.Token
	if raw.Solve.Concurrency > 0 {
		cfg.Solve.Concurrency = raw.Solve.Concurrency
	}
	cfg.Solve.Downgrade = raw.Solve.Downgrade

	return cfg, nil
}
