package schema

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"drawboard/internal/dbclient"
)

var ErrUnknownEntity = errors.New("unknown table")

// Loader fetches the current schema of a source.
type Loader func(ctx context.Context, sourceID string) (*dbclient.SchemaInfo, error)

type entry struct {
	names     []string
	refreshed time.Time
}

// Catalog caches entity names per schema source. Reads are served from the
// cache; a miss loads synchronously.
type Catalog struct {
	load Loader

	mu      sync.RWMutex
	entries map[string]entry
}

func NewCatalog(load Loader) *Catalog {
	return &Catalog{load: load, entries: map[string]entry{}}
}

// Entities returns the sorted entity names of sourceID.
func (c *Catalog) Entities(ctx context.Context, sourceID string) ([]string, error) {
	c.mu.RLock()
	e, ok := c.entries[sourceID]
	c.mu.RUnlock()
	if ok {
		return slices.Clone(e.names), nil
	}
	if err := c.Refresh(ctx, sourceID); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries[sourceID].names), nil
}

// Refresh reloads sourceID. On failure the previous names are kept.
func (c *Catalog) Refresh(ctx context.Context, sourceID string) error {
	info, err := c.load(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("load schema %s: %w", sourceID, err)
	}
	names := info.Names()
	sort.Strings(names)
	names = slices.Compact(names)

	c.mu.Lock()
	c.entries[sourceID] = entry{names: names, refreshed: time.Now()}
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached names of sourceID.
func (c *Catalog) Invalidate(sourceID string) {
	c.mu.Lock()
	delete(c.entries, sourceID)
	c.mu.Unlock()
}

// Cached lists the source ids currently held.
func (c *Catalog) Cached() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RefreshedAt reports when sourceID was last loaded.
func (c *Catalog) RefreshedAt(sourceID string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[sourceID]
	return e.refreshed, ok
}

// Validate checks that every name exists in sourceID.
func (c *Catalog) Validate(ctx context.Context, sourceID string, names []string) error {
	known, err := c.Entities(ctx, sourceID)
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, found := slices.BinarySearch(known, n); !found {
			return fmt.Errorf("%w: %q", ErrUnknownEntity, n)
		}
	}
	return nil
}
