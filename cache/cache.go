// Package cache implements the Resolution Cache: it memoizes Oracle
// results and guarantees at-most-one in-flight fetch per (name, range) key
// under concurrent callers, per spec.md S4.C. A naive read-then-write map
// is explicitly insufficient here - concurrent duplicate requests for the
// same key must collapse into a single Oracle call and share its result.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/cratesolve/cratesolve/index"
	"github.com/cratesolve/cratesolve/pkgname"
	"github.com/cratesolve/cratesolve/version"
)

// Cache memoizes Oracle.Resolve calls. Once a key is cached its value is
// immutable and shared freely; eviction is never required; the Cache lives
// for exactly one solve.
type Cache struct {
	oracle index.Oracle
	group  singleflight.Group

	mu      sync.RWMutex
	results map[key][]index.PackageVersion

	// started is the set behind MarkStarted, the CDCL-era survivor of the
	// legacy solver's resolution_started re-entrancy guard (see
	// SPEC_FULL.md, Supplemented Features). Resolve does not consult it, and
	// the solver package does not call MarkStarted.
	startedMu sync.Mutex
	started   map[pkgname.Name]bool
}

type key struct {
	name  pkgname.Name
	rangeStr string
}

// New returns a Cache fronting oracle.
func New(oracle index.Oracle) *Cache {
	return &Cache{
		oracle:  oracle,
		results: make(map[key][]index.PackageVersion),
		started: make(map[pkgname.Name]bool),
	}
}

func keyFor(name pkgname.Name, r version.Range) key {
	return key{name: name, rangeStr: r.String()}
}

// Resolve returns the cached result for (name, r), fetching it from the
// Oracle at most once even if many goroutines call Resolve with the same
// key concurrently: the second and later callers observe the one
// outstanding call via singleflight and share its result, never issuing a
// second Oracle.Resolve.
func (c *Cache) Resolve(ctx context.Context, name pkgname.Name, r version.Range) ([]index.PackageVersion, error) {
	k := keyFor(name, r)

	c.mu.RLock()
	if v, ok := c.results[k]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	groupKey := name.String() + "\x00" + k.rangeStr
	v, err, _ := c.group.Do(groupKey, func() (interface{}, error) {
		// Double-checked: another goroutine may have finished the fetch
		// and published it between our RUnlock above and singleflight
		// admitting us into the critical section.
		c.mu.RLock()
		if cached, ok := c.results[k]; ok {
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		fetched, err := c.oracle.Resolve(ctx, name, r)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.results[k] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]index.PackageVersion), nil
}

// MarkStarted reports whether name was not previously marked, marking it
// as a side effect - the classic test-and-set reentrancy guard used when
// fanning out pre-warm fetches over a decision's dependency list.
func (c *Cache) MarkStarted(name pkgname.Name) (firstTime bool) {
	c.startedMu.Lock()
	defer c.startedMu.Unlock()
	if c.started[name] {
		return false
	}
	c.started[name] = true
	return true
}
