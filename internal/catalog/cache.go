package catalog

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const populateKey = "catalog"

// Cache is a lazily populated, immutable view over a Source. The first
// IsLoaded or Lookup call triggers population; concurrent callers share a
// single Load. A failed population is logged and retried on the next call.
type Cache struct {
	src     Source
	logger  *zap.Logger
	timeout time.Duration

	group singleflight.Group
	state atomic.Pointer[index]
}

type index struct {
	byID    map[string]Entry
	ordered []Entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for population events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLoadTimeout bounds each population attempt.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

func NewCache(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:     src,
		logger:  zap.NewNop(),
		timeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load populates the cache now instead of on first use. It is a no-op
// when the cache is already populated.
func (c *Cache) Load(ctx context.Context) error {
	_, err := c.populate(ctx)
	return err
}

func (c *Cache) IsLoaded() bool {
	return c.ensure() != nil
}

func (c *Cache) Lookup(id string) (Entry, bool) {
	idx := c.ensure()
	if idx == nil {
		return Entry{}, false
	}
	e, ok := idx.byID[id]
	return e, ok
}

// Entries returns every entry ordered by ID.
func (c *Cache) Entries() []Entry {
	idx := c.ensure()
	if idx == nil {
		return nil
	}
	out := make([]Entry, len(idx.ordered))
	copy(out, idx.ordered)
	return out
}

// Len reports the number of loaded entries without triggering population.
func (c *Cache) Len() int {
	if idx := c.state.Load(); idx != nil {
		return len(idx.byID)
	}
	return 0
}

// ResetForTest drops the populated state so the next access reloads.
func (c *Cache) ResetForTest() {
	c.state.Store(nil)
	c.group.Forget(populateKey)
}

func (c *Cache) ensure() *index {
	if idx := c.state.Load(); idx != nil {
		return idx
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	idx, err := c.populate(ctx)
	if err != nil {
		c.logger.Warn("catalog population failed", zap.Error(err))
		return nil
	}
	return idx
}

func (c *Cache) populate(ctx context.Context) (*index, error) {
	if idx := c.state.Load(); idx != nil {
		return idx, nil
	}
	v, err, _ := c.group.Do(populateKey, func() (any, error) {
		if idx := c.state.Load(); idx != nil {
			return idx, nil
		}
		start := time.Now()
		entries, err := c.src.Load(ctx)
		if err != nil {
			return nil, err
		}
		idx := c.buildIndex(entries)
		c.state.Store(idx)
		c.logger.Info("catalog loaded",
			zap.Int("entries", len(idx.byID)),
			zap.Duration("elapsed", time.Since(start)))
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*index), nil
}

// buildIndex keeps the first entry seen for each id.
func (c *Cache) buildIndex(entries []Entry) *index {
	idx := &index{byID: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := idx.byID[e.ID]; dup {
			c.logger.Debug("duplicate catalog id ignored", zap.String("id", e.ID))
			continue
		}
		idx.byID[e.ID] = e
		idx.ordered = append(idx.ordered, e)
	}
	sort.Slice(idx.ordered, func(i, j int) bool { return idx.ordered[i].ID < idx.ordered[j].ID })
	return idx
}
