package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cratesolve/cratesolve/cache"
	"github.com/cratesolve/cratesolve/index"
	"github.com/cratesolve/cratesolve/internal/clog"
	"github.com/cratesolve/cratesolve/internal/config"
	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/solver"
	"github.com/cratesolve/cratesolve/version"
)

// solveVersionsCommand implements the CLI contract in spec.md S6: seed
// candidate_packages from repeated -p flags, seed compatible_packages from
// repeated -r "name[@requirement]" flags, print the solution as
// pretty-printed JSON, and exit 0/1/2 per the solution/unsat/error split.
type solveVersionsCommand struct {
	packages     stringSliceFlag
	requirements stringSliceFlag
	downgrade    bool
	timeout      time.Duration
}

func (c *solveVersionsCommand) Name() string      { return "solve-versions" }
func (c *solveVersionsCommand) Args() string      { return "[-p name]... [-r name[@req]]..." }
func (c *solveVersionsCommand) ShortHelp() string { return "resolve a mutually-compatible version set" }

func (c *solveVersionsCommand) Register(fs *flag.FlagSet) {
	fs.Var(&c.packages, "p", "candidate package name (repeatable)")
	fs.Var(&c.packages, "package", "candidate package name (repeatable)")
	fs.Var(&c.requirements, "r", `hard requirement "name[@req]" (repeatable)`)
	fs.Var(&c.requirements, "require", `hard requirement "name[@req]" (repeatable)`)
	fs.BoolVar(&c.downgrade, "downgrade", false, "prefer the lowest admissible version at each decision")
	fs.DurationVar(&c.timeout, "timeout", 0, "wall-clock budget for the solve (0 = no limit)")
}

func (c *solveVersionsCommand) Run(stdout, stderr io.Writer, _ []string) int {
	log := clog.New(stderr)
	cfg := loadConfig()

	in := pkgname.NewInterner()
	oracle := index.NewSparseIndex(cfg.Registry.URL, httpClientFor(cfg), in)
	rc := cache.New(oracle)

	cs := solver.Constraints{
		Downgrade:   c.downgrade || cfg.Solve.Downgrade,
		Concurrency: cfg.Solve.Concurrency,
	}
	for _, p := range c.packages {
		cs.Candidates = append(cs.Candidates, in.Intern(p))
	}
	for _, r := range c.requirements {
		name, rng, err := parseRequirement(r)
		if err != nil {
			log.LogSolvefln("bad requirement %q: %v", r, err)
			return 2
		}
		cs.Compatible = append(cs.Compatible, solver.Constraint{Name: in.Intern(name), Range: rng})
	}

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.LogSolvefln("resolving %d requirement(s) against %s", len(cs.Compatible), cfg.Registry.URL)

	sol, err := solver.Solve(ctx, in, rc, cs)
	if err != nil {
		var unsat *solver.UnsatisfiableError
		if errors.As(err, &unsat) {
			log.LogSolvefln("%v", err)
			return 1
		}
		log.LogSolvefln("%v", err)
		return 2
	}

	log.LogSolvefln("resolved %d package(s)", len(sol))
	if err := printSolution(stdout, sol); err != nil {
		log.LogSolvefln("%v", err)
		return 2
	}
	return 0
}

// solutionEntry is the JSON wire shape of one assignment.
type solutionEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func printSolution(w io.Writer, sol solver.Solution) error {
	entries := make([]solutionEntry, 0, len(sol))
	for _, a := range sol {
		entries = append(entries, solutionEntry{Name: a.Name.String(), Version: a.Version.String()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// parseRequirement splits "name[@req]" into its interned-ready name and
// parsed Range; a missing "@req" seeds Full() (spec.md S6).
func parseRequirement(s string) (name string, r version.Range, err error) {
	if at := strings.IndexByte(s, '@'); at >= 0 {
		name, reqStr := s[:at], s[at+1:]
		r, err = version.Parse(reqStr)
		return name, r, err
	}
	return s, version.Full(), nil
}

func loadConfig() config.Config {
	f, err := os.Open(config.FileName)
	if err != nil {
		return config.Default()
	}
	defer f.Close()

	cfg, err := config.Read(f)
	if err != nil {
		return config.Default()
	}
	return cfg
}

// tokenTransport attaches a bearer token to every outgoing request, for
// private registry mirrors configured via cratesolve.toml.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(req)
}

func httpClientFor(cfg config.Config) *http.Client {
	if cfg.Registry.Token == "" {
		return http.DefaultClient
	}
	return &http.Client{Transport: &tokenTransport{token: cfg.Registry.Token, base: http.DefaultTransport}}
}
