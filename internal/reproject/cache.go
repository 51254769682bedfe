package reproject

import (
	"context"
	"sync"
	"sync/atomic"

	"repolar/pkg/raster"
)

// Loader fetches and decodes the source raster behind a SourceRef.
type Loader interface {
	Load(ctx context.Context, ref string) (*raster.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, ref string) (*raster.Image, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) (*raster.Image, error) {
	return f(ctx, ref)
}

// Cache memoizes the most recent reprojection. A repeated request with the
// same Options (value equality) returns the stored output without loading
// or sweeping again. A single slot is deliberate: the expected caller is a
// viewer scrubbing through dates, where only the latest request matters
// and older outputs are dead weight.
type Cache struct {
	gen atomic.Int64 // generation of the newest request

	mu        sync.Mutex
	key       Options
	out       *raster.Image
	ok        bool
	storedGen int64

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// GetOrCompute returns the cached output for opts, or loads the source and
// sweeps it. Invalid opts fail before the loader runs. A failed load or
// sweep leaves any previous entry in place. When requests overlap, the
// slot keeps the newest request's result: an older sweep finishing late is
// still returned to its own caller but is not stored. Callers must treat
// the returned image as read-only; the source raster is not retained.
func (c *Cache) GetOrCompute(ctx context.Context, opts Options, loader Loader) (*raster.Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.ok && c.key == opts {
		out := c.out
		c.mu.Unlock()
		c.hits.Add(1)
		return out, nil
	}
	c.mu.Unlock()

	gen := c.gen.Add(1)
	c.misses.Add(1)

	src, err := loader.Load(ctx, opts.SourceRef)
	if err != nil {
		return nil, err
	}

	out, err := Reproject(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if gen > c.storedGen {
		c.key = opts
		c.out = out
		c.ok = true
		c.storedGen = gen
	}
	c.mu.Unlock()

	return out, nil
}

// Stats reports hit and miss counts since construction.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
