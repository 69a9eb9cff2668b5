package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
)

// MockCollection is an in-memory store.Collection that records writes (Put
// and Upsert) and can be told to fail them.
type MockCollection[T any] struct {
	inner *store.Memory[T]

	mu         sync.Mutex
	WriteCalls []string
	WriteErr   error
	ListErr    error
}

// NewMockCollection creates a MockCollection. clone may be nil.
func NewMockCollection[T any](clone func(T) T) *MockCollection[T] {
	return &MockCollection[T]{inner: store.NewMemory(clone)}
}

func (m *MockCollection[T]) Get(ctx context.Context, id string) (T, error) {
	return m.inner.Get(ctx, id)
}

func (m *MockCollection[T]) recordWrite(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls = append(m.WriteCalls, id)
	return m.WriteErr
}

func (m *MockCollection[T]) Put(ctx context.Context, id string, v T) error {
	if err := m.recordWrite(id); err != nil {
		return err
	}
	return m.inner.Put(ctx, id, v)
}

func (m *MockCollection[T]) Delete(ctx context.Context, id string) error {
	return m.inner.Delete(ctx, id)
}

func (m *MockCollection[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	err := m.ListErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.inner.List(ctx)
}

func (m *MockCollection[T]) Upsert(ctx context.Context, id string, fn func(current T, exists bool) (T, error)) (T, error) {
	if err := m.recordWrite(id); err != nil {
		var zero T
		return zero, err
	}
	return m.inner.Upsert(ctx, id, fn)
}

// SetWriteErr makes subsequent Put and Upsert calls fail with err.
func (m *MockCollection[T]) SetWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteErr = err
}
