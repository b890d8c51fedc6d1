package index

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

// shardLine is the wire shape of one NDJSON line in a registry shard, per
// spec.md S6's recognized-fields table. Unknown top-level fields are
// ignored by virtue of not being named here.
type shardLine struct {
	Name string          `json:"name"`
	Vers string          `json:"vers"`
	Deps []shardLineDep  `json:"deps"`
}

type shardLineDep struct {
	Name    string `json:"name"`
	Req     string `json:"req"`
	Kind    string `json:"kind"`
	Package string `json:"package"`
}

// SparseIndex is the live, network-backed Oracle. After a package's shard
// is fetched successfully it is cached in memory, keyed by name, and later
// calls filter that full shard to the requested range locally. Concurrent
// first requests for the same name are not coalesced and may each fetch it.
type SparseIndex struct {
	BaseURL string
	Client  *http.Client

	interner *pkgname.Interner

	mu     sync.RWMutex
	shards map[string][]PackageVersion // full, version-descending, unfiltered
}

// NewSparseIndex returns a live Oracle fetching shards from baseURL (e.g.
// "https://index.crates.io"), using names interned through in.
func NewSparseIndex(baseURL string, client *http.Client, in *pkgname.Interner) *SparseIndex {
	if client == nil {
		client = http.DefaultClient
	}
	return &SparseIndex{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   client,
		interner: in,
		shards:   make(map[string][]PackageVersion),
	}
}

// ShardPath derives the shard path for name per the reference index's
// content-addressable scheme (spec.md S4.B):
//
//	len 1  -> /1/{n}
//	len 2  -> /2/{n}
//	len 3  -> /3/{n[0]}/{n}
//	len>=4 -> /{n[0:2]}/{n[2:4]}/{n}
func ShardPath(name string) string {
	switch len(name) {
	case 0:
		return "/_"
	case 1:
		return "/1/" + name
	case 2:
		return "/2/" + name
	case 3:
		return "/3/" + name[:1] + "/" + name
	default:
		return "/" + name[:2] + "/" + name[2:4] + "/" + name
	}
}

func (s *SparseIndex) Resolve(ctx context.Context, name pkgname.Name, r version.Range) ([]PackageVersion, error) {
	if IsPseudoPackage(name.String()) {
		return []PackageVersion{{Name: name, Version: pseudoVersion}}, nil
	}

	all, err := s.fullShard(ctx, name.String())
	if err != nil {
		return nil, err
	}

	out := make([]PackageVersion, 0, len(all))
	for _, pv := range all {
		if r.Contains(pv.Version) {
			out = append(out, pv)
		}
	}
	return out, nil
}

func (s *SparseIndex) fullShard(ctx context.Context, name string) ([]PackageVersion, error) {
	s.mu.RLock()
	if cached, ok := s.shards[name]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	parsed, err := s.fetchShard(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.shards[name] = parsed
	s.mu.Unlock()
	return parsed, nil
}

func (s *SparseIndex) fetchShard(ctx context.Context, name string) ([]PackageVersion, error) {
	url := s.BaseURL + ShardPath(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Name: name, Cause: err}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &TransportError{Name: name, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Name: name, Suggestions: s.suggestions(name)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Name: name, Cause: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	return s.parseShard(name, resp.Body)
}

// parseShard decodes every NDJSON line of a shard. Per spec.md S4.B, a
// partial read is never surfaced: any malformed line fails the whole call.
func (s *SparseIndex) parseShard(name string, r io.Reader) ([]PackageVersion, error) {
	var out []PackageVersion

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var sl shardLine
		if err := json.Unmarshal([]byte(raw), &sl); err != nil {
			return nil, &MalformedIndexError{Name: name, Line: line, Reason: err.Error()}
		}

		v, err := version.ParseVersion(sl.Vers)
		if err != nil {
			return nil, &MalformedIndexError{Name: name, Line: line, Reason: "bad vers: " + err.Error()}
		}

		pv := PackageVersion{Name: s.interner.Intern(name), Version: v}
		for _, d := range sl.Deps {
			if d.Kind != "" && d.Kind != "normal" {
				continue // non-normal (build/dev/optional) deps are filtered out
			}
			depName := d.Name
			if d.Package != "" {
				depName = d.Package // renamed dep: the target is the canonical identity
			}
			rng, err := version.Parse(d.Req)
			if err != nil {
				return nil, &MalformedIndexError{Name: name, Line: line, Reason: "bad dep req: " + err.Error()}
			}
			pv.Deps = append(pv.Deps, Dependency{Name: s.interner.Intern(depName), Range: rng})
		}

		out = append(out, pv)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading index shard for %q", name)
	}

	sort.Slice(out, func(i, j int) bool { return out[j].Version.Less(out[i].Version) })
	return out, nil
}

func (s *SparseIndex) suggestions(name string) []string {
	if s.interner == nil || len(name) == 0 {
		return nil
	}
	prefixLen := len(name)
	if prefixLen > 4 {
		prefixLen = 4
	}
	return s.interner.Suggestions(name[:prefixLen], 5)
}
