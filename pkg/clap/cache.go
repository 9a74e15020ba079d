package clap

import (
	"context"
	"sync"
)

// LoadFunc constructs an encoder for a model identifier.
type LoadFunc func(ctx context.Context, modelID string) (Encoder, error)

// DefaultCacheCapacity is the number of encoders a cache keeps loaded.
const DefaultCacheCapacity = 2

// Cache memoizes encoder loads by model identifier. Concurrent requests
// for the same model share one load; the least recently used encoder is
// closed when capacity is exceeded. Failed loads are not cached, so a
// transient failure (network, disk) can be retried.
type Cache struct {
	load LoadFunc
	cap  int

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // LRU order, most recent last
}

type cacheEntry struct {
	ready chan struct{}
	enc   Encoder
	err   error
}

// NewCache creates a cache over load. capacity <= 0 selects
// [DefaultCacheCapacity].
func NewCache(load LoadFunc, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		load:    load,
		cap:     capacity,
		entries: make(map[string]*cacheEntry),
	}
}

// Acquire returns the encoder for modelID, loading it if needed. Load
// failures are reported as [ModelLoadError]. The returned encoder stays
// valid until it is evicted; callers must not Close it themselves.
func (c *Cache) Acquire(ctx context.Context, modelID string) (Encoder, error) {
	c.mu.Lock()
	if ent, ok := c.entries[modelID]; ok {
		c.touch(modelID)
		c.mu.Unlock()

		select {
		case <-ent.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return ent.enc, ent.err
	}

	ent := &cacheEntry{ready: make(chan struct{})}
	c.entries[modelID] = ent
	c.order = append(c.order, modelID)
	c.evictLocked()
	c.mu.Unlock()

	enc, err := c.load(ctx, modelID)
	if err != nil {
		ent.err = &ModelLoadError{Model: modelID, Err: err}
		close(ent.ready)

		c.mu.Lock()
		c.remove(modelID)
		c.mu.Unlock()
		return nil, ent.err
	}
	ent.enc = enc
	close(ent.ready)
	return enc, nil
}

// touch moves modelID to the most recently used position.
func (c *Cache) touch(modelID string) {
	for i, id := range c.order {
		if id == modelID {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), modelID)
			return
		}
	}
}

// remove drops modelID without closing its encoder.
func (c *Cache) remove(modelID string) {
	delete(c.entries, modelID)
	for i, id := range c.order {
		if id == modelID {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			return
		}
	}
}

// evictLocked closes least recently used encoders beyond capacity.
// Entries still loading are counted but never evicted mid-load.
func (c *Cache) evictLocked() {
	for len(c.order) > c.cap {
		victim := ""
		for _, id := range c.order {
			ent := c.entries[id]
			select {
			case <-ent.ready:
				if ent.enc != nil {
					victim = id
				}
			default:
			}
			if victim != "" {
				break
			}
		}
		if victim == "" {
			return
		}
		ent := c.entries[victim]
		c.remove(victim)
		go ent.enc.Close()
	}
}

// Close releases every cached encoder. The cache is unusable afterwards.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var first error
	for id, ent := range c.entries {
		select {
		case <-ent.ready:
			if ent.enc != nil {
				if err := ent.enc.Close(); err != nil && first == nil {
					first = err
				}
			}
		default:
		}
		delete(c.entries, id)
	}
	c.order = nil
	return first
}
