package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-shop-assistant/internal/domain/order"
)

// MockOrderMirror is a mock implementation of order.Mirror for testing
type MockOrderMirror struct {
	mu sync.Mutex

	SaveCalls    []order.Order
	SaveErr      error
	SaveCallback func(ctx context.Context, o order.Order) error
}

func NewMockOrderMirror() *MockOrderMirror {
	return &MockOrderMirror{SaveCalls: make([]order.Order, 0)}
}

func (m *MockOrderMirror) SaveOrder(ctx context.Context, o order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls = append(m.SaveCalls, o)
	if m.SaveCallback != nil {
		return m.SaveCallback(ctx, o)
	}
	return m.SaveErr
}

// Saved returns a snapshot of the orders received so far.
func (m *MockOrderMirror) Saved() []order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]order.Order(nil), m.SaveCalls...)
}
