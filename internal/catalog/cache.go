package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/CDLUC3/rslv-go/internal/model"
	"github.com/maypok86/otter"
	"github.com/puzpuzpuz/xsync/v4"
)

// lookupCacheSize bounds the number of resolved (scheme, prefix, value,
// resolveSynonym) tuples held in memory. Sized generously; a cache miss
// only costs a handful of indexed SQLite reads.
const lookupCacheSize = 4096

// Catalog is the read/write façade over Store that adds an in-process,
// invalidate-on-write cache layer in front of lookups and enumerations.
// This resolves the open question of whether to cache definition rows in
// favor of "yes, bounded and invalidated synchronously on every mutation."
type Catalog struct {
	store       *Store
	lookupCache otter.Cache[string, *model.PidDefinition]
	listCache   *xsync.Map[string, []string]
	maxLen      atomic.Int64
	maxLenKnown atomic.Bool
}

// NewCatalog wraps store with the lookup and enumeration caches.
func NewCatalog(store *Store) (*Catalog, error) {
	lookupCache, err := otter.MustBuilder[string, *model.PidDefinition](lookupCacheSize).
		Cost(func(_ string, _ *model.PidDefinition) uint32 { return 1 }).
		Build()
	if err != nil {
		return nil, fmt.Errorf("catalog: build lookup cache: %w", err)
	}
	return &Catalog{
		store:       store,
		lookupCache: lookupCache,
		listCache:   xsync.NewMap[string, []string](),
	}, nil
}

// Close releases cache resources. It does not close the underlying database.
func (c *Catalog) Close() {
	c.lookupCache.Close()
}

func lookupCacheKey(scheme, prefix, value string, resolveSynonym bool) string {
	return scheme + "\x00" + prefix + "\x00" + value + "\x00" + boolKey(resolveSynonym)
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// invalidate drops every cached entry. Called after any mutating store
// operation since a single write can change which row wins a lookup that
// previously matched a different (now-shadowed or now-absent) row.
func (c *Catalog) invalidate() {
	c.lookupCache.Clear()
	c.listCache.Clear()
	c.maxLenKnown.Store(false)
}

func (c *Catalog) maxValueLength() (int, error) {
	if c.maxLenKnown.Load() {
		return int(c.maxLen.Load()), nil
	}
	meta, err := c.store.GetMetadata()
	if err != nil {
		if err == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	c.maxLen.Store(int64(meta.MaxValueLength))
	c.maxLenKnown.Store(true)
	return meta.MaxValueLength, nil
}

// Add inserts a new PidDefinition, invalidating caches on success.
func (c *Catalog) Add(def model.PidDefinition, nowUnixNs int64) error {
	if err := c.store.Add(def, nowUnixNs); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Update overwrites an existing PidDefinition, invalidating caches on success.
func (c *Catalog) Update(def model.PidDefinition, nowUnixNs int64) error {
	if err := c.store.Update(def, nowUnixNs); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// AddOrUpdate upserts a PidDefinition, invalidating caches on success.
func (c *Catalog) AddOrUpdate(def model.PidDefinition, nowUnixNs int64) error {
	if err := c.store.AddOrUpdate(def, nowUnixNs); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// Delete removes a PidDefinition by uniq, invalidating caches on success.
func (c *Catalog) Delete(uniq string) error {
	if err := c.store.Delete(uniq); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// GetByUniq fetches a single definition directly by its uniq key (bypasses
// the lookup cache, which is keyed by scheme/prefix/value tuples instead).
func (c *Catalog) GetByUniq(uniq string) (*model.PidDefinition, error) {
	return c.store.GetByUniq(uniq)
}

// ListSchemes returns every distinct scheme, cached until the next mutation.
func (c *Catalog) ListSchemes() ([]string, error) {
	return c.cachedList("schemes\x00", func() ([]string, error) {
		return c.store.ListSchemes()
	})
}

// ListPrefixes returns every distinct non-empty prefix under scheme, cached
// until the next mutation.
func (c *Catalog) ListPrefixes(scheme string) ([]string, error) {
	return c.cachedList("prefixes\x00"+scheme, func() ([]string, error) {
		return c.store.ListPrefixes(scheme)
	})
}

// ListValues returns every distinct value under (scheme, prefix), cached
// until the next mutation.
func (c *Catalog) ListValues(scheme, prefix string) ([]string, error) {
	return c.cachedList("values\x00"+scheme+"\x00"+prefix, func() ([]string, error) {
		return c.store.ListValues(scheme, prefix)
	})
}

// ListUniqs returns every uniq key in the catalog, cached until the next
// mutation.
func (c *Catalog) ListUniqs() ([]string, error) {
	return c.cachedList("uniqs\x00", func() ([]string, error) {
		return c.store.ListUniqs()
	})
}

// ListValidSchemes returns every distinct scheme backed by a usable target
// or synonym_for, cached until the next mutation.
func (c *Catalog) ListValidSchemes() ([]string, error) {
	return c.cachedList("validschemes\x00", func() ([]string, error) {
		return c.store.ListValidSchemes()
	})
}

func (c *Catalog) cachedList(key string, load func() ([]string, error)) ([]string, error) {
	if v, ok := c.listCache.Load(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	c.listCache.Store(key, v)
	return v, nil
}

// Initialize sets the catalog description, invalidating caches on success.
func (c *Catalog) Initialize(description string, nowUnixNs int64) error {
	if err := c.store.Initialize(description, nowUnixNs); err != nil {
		return err
	}
	c.invalidate()
	return nil
}

// GetMetadata returns the catalog-wide metadata singleton.
func (c *Catalog) GetMetadata() (*model.CatalogMetadata, error) {
	return c.store.GetMetadata()
}

// RefreshMetadata recomputes max_value_length and invalidates caches.
func (c *Catalog) RefreshMetadata(nowUnixNs int64) error {
	if err := c.store.RefreshMetadata(nowUnixNs); err != nil {
		return err
	}
	c.invalidate()
	return nil
}
