package clap

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheMemoizes(t *testing.T) {
	var loads int32
	c := NewCache(func(ctx context.Context, modelID string) (Encoder, error) {
		atomic.AddInt32(&loads, 1)
		return newStubEncoder(2, []float32{1, 0}), nil
	}, 2)
	defer c.Close()

	ctx := context.Background()
	a, err := c.Acquire(ctx, "model-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Acquire(ctx, "model-a")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the same encoder instance for repeated acquires")
	}
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestCacheConcurrentAcquireSharesLoad(t *testing.T) {
	var loads int32
	c := NewCache(func(ctx context.Context, modelID string) (Encoder, error) {
		atomic.AddInt32(&loads, 1)
		return newStubEncoder(2, []float32{1, 0}), nil
	}, 2)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Acquire(context.Background(), "model-a"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestCacheLoadErrorNotCached(t *testing.T) {
	var loads int32
	fail := errors.New("download failed")
	c := NewCache(func(ctx context.Context, modelID string) (Encoder, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			return nil, fail
		}
		return newStubEncoder(2, []float32{1, 0}), nil
	}, 2)
	defer c.Close()

	ctx := context.Background()
	_, err := c.Acquire(ctx, "model-a")
	var mle *ModelLoadError
	if !errors.As(err, &mle) {
		t.Fatalf("err = %v, want ModelLoadError", err)
	}
	if mle.Model != "model-a" {
		t.Errorf("Model = %q", mle.Model)
	}
	if !errors.Is(err, fail) {
		t.Error("expected cause in chain")
	}

	if _, err := c.Acquire(ctx, "model-a"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if n := atomic.LoadInt32(&loads); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	encs := map[string]*stubEncoder{}
	c := NewCache(func(ctx context.Context, modelID string) (Encoder, error) {
		e := newStubEncoder(2, []float32{1, 0})
		encs[modelID] = e
		return e, nil
	}, 2)
	defer c.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := c.Acquire(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	// "a" is least recently used and capacity is 2.
	c.mu.Lock()
	_, stillCached := c.entries["a"]
	c.mu.Unlock()
	if stillCached {
		t.Error("expected model a to be evicted")
	}

	// Reloading after eviction creates a fresh encoder.
	old := encs["a"]
	if _, err := c.Acquire(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if encs["a"] == old {
		t.Error("expected a fresh load after eviction")
	}
}

func TestCacheClose(t *testing.T) {
	var enc *stubEncoder
	c := NewCache(func(ctx context.Context, modelID string) (Encoder, error) {
		enc = newStubEncoder(2, []float32{1, 0})
		return enc, nil
	}, 1)

	if _, err := c.Acquire(context.Background(), "m"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	enc.mu.Lock()
	closed := enc.closed
	enc.mu.Unlock()
	if !closed {
		t.Error("expected encoder closed")
	}
}
