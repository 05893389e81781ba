package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the most recent entries in memory. Once the limit is
// reached the oldest entry is dropped for every new one.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry // oldest first
	limit   int
	now     func() time.Time
}

// NewMemoryStore creates a store holding at most limit entries.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = MaxListLimit
	}
	return &MemoryStore{limit: limit, now: time.Now}
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, p Params) (*Entry, error) {
	e := newEntry(ctx, p, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) >= m.limit {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, e)
	return &e, nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.limit()
	out := make([]Entry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.CreatedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	removed := int64(len(m.entries) - len(kept))
	m.entries = kept
	return removed, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
