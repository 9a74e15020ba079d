package history

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and
// bounds its size by dropping the oldest records.
type Memory struct {
	mu   sync.Mutex
	recs []*Record
	max  int
}

// DefaultMemoryLimit is the record cap used when none is given.
const DefaultMemoryLimit = 1000

// NewMemory creates an in-memory store holding at most limit records.
// limit <= 0 selects [DefaultMemoryLimit].
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Memory{max: limit}
}

func (m *Memory) Append(_ context.Context, rec *Record) error {
	stamp(rec)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	if len(m.recs) > m.max {
		m.recs = m.recs[len(m.recs)-m.max:]
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, n int) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || n > len(m.recs) {
		n = len(m.recs)
	}
	out := make([]*Record, n)
	for i := 0; i < n; i++ {
		out[i] = m.recs[len(m.recs)-1-i]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
