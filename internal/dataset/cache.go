package dataset

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	flightKey          = "dataset"
	defaultLoadTimeout = 30 * time.Second
)

// LoadFunc produces a dataset result.
type LoadFunc func(ctx context.Context) (Result, error)

// Cache memoizes one successful load for every caller in the process until
// Invalidate is called. Concurrent first calls share a single load. Failed
// loads are not remembered, so the next caller tries again.
type Cache struct {
	load    LoadFunc
	timeout time.Duration
	group   singleflight.Group

	mu         sync.RWMutex
	result     *Result
	generation uint64
	lastErr    error
}

// NewCache wraps load, typically (*Loader).Load.
func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load, timeout: defaultLoadTimeout}
}

// Get returns the memoized dataset, loading it on first use.
func (c *Cache) Get(ctx context.Context) (Result, error) {
	c.mu.RLock()
	if c.result != nil {
		res := *c.result
		c.mu.RUnlock()
		return res, nil
	}
	gen := c.generation
	c.mu.RUnlock()

	ch := c.group.DoChan(flightKey, func() (any, error) {
		// The shared load must not be cut short by whichever caller started it.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		res, err := c.load(lctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lastErr = err
		if err != nil {
			return nil, err
		}
		if c.generation == gen {
			c.result = &res
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

// Invalidate drops the memoized dataset so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.result = nil
	c.generation++
	c.mu.Unlock()
	c.group.Forget(flightKey)
}

// Status reports the memoized result, if any, and the error of the most
// recent load attempt.
func (c *Cache) Status() (Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return Result{}, false, c.lastErr
	}
	return *c.result, true, nil
}
