package store

import (
	"context"
	"sort"
	"sync"
)

type record[T any] struct {
	mu      sync.Mutex
	seq     uint64
	value   T
	present bool
	deleted bool
}

// Memory is an in-process Collection. The map lock is held only for lookups and
// inserts; each record carries its own lock so writers to different keys never
// wait on each other.
type Memory[T any] struct {
	mu    sync.RWMutex
	seq   uint64
	items map[string]*record[T]
	clone func(T) T
}

// NewMemory creates an empty collection. clone is applied to every value that
// crosses the collection boundary; pass nil for value types without shared state.
func NewMemory[T any](clone func(T) T) *Memory[T] {
	return &Memory[T]{
		items: make(map[string]*record[T]),
		clone: clone,
	}
}

func (m *Memory[T]) copy(v T) T {
	if m.clone == nil {
		return v
	}
	return m.clone(v)
}

func (m *Memory[T]) lookup(id string, create bool) *record[T] {
	m.mu.RLock()
	r := m.items[id]
	m.mu.RUnlock()
	if r != nil || !create {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r = m.items[id]; r == nil {
		m.seq++
		r = &record[T]{seq: m.seq}
		m.items[id] = r
	}
	return r
}

func (m *Memory[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	r := m.lookup(id, false)
	if r == nil {
		return zero, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.present || r.deleted {
		return zero, ErrNotFound
	}
	return m.copy(r.value), nil
}

func (m *Memory[T]) Put(ctx context.Context, id string, value T) error {
	_, err := m.Upsert(ctx, id, func(T, bool) (T, error) {
		return value, nil
	})
	return err
}

func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	r := m.items[id]
	delete(m.items, id)
	m.mu.Unlock()

	if r != nil {
		r.mu.Lock()
		r.deleted = true
		r.mu.Unlock()
	}
	return nil
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	m.mu.RLock()
	records := make([]*record[T], 0, len(m.items))
	for _, r := range m.items {
		records = append(records, r)
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })

	items := make([]T, 0, len(records))
	for _, r := range records {
		r.mu.Lock()
		if r.present && !r.deleted {
			items = append(items, m.copy(r.value))
		}
		r.mu.Unlock()
	}
	return items, nil
}

func (m *Memory[T]) Upsert(ctx context.Context, id string, fn func(current T, exists bool) (T, error)) (T, error) {
	for {
		r := m.lookup(id, true)
		r.mu.Lock()
		if r.deleted {
			// Lost a race with Delete; the next lookup inserts a fresh record.
			r.mu.Unlock()
			continue
		}

		var current T
		if r.present {
			current = m.copy(r.value)
		}
		next, err := fn(current, r.present)
		if err != nil {
			r.mu.Unlock()
			var zero T
			return zero, err
		}
		r.value = m.copy(next)
		r.present = true
		out := m.copy(next)
		r.mu.Unlock()
		return out, nil
	}
}
