package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record exists for the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned by Insert when the id is already taken.
	ErrDuplicateID = errors.New("record id already taken")
)

// Collection is a keyed set of records of a single entity kind (carts, orders,
// session contexts). Implementations serialize mutations per key; callers must
// not hold a record across blocking work.
type Collection[T any] interface {
	// Get returns a copy of the record, or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Put stores the record, replacing any previous value.
	Put(ctx context.Context, id string, value T) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns copies of all records in insertion order.
	List(ctx context.Context) ([]T, error)

	// Upsert runs fn under the record's lock. exists reports whether the record
	// was present. The value returned by fn is stored unless fn fails.
	Upsert(ctx context.Context, id string, fn func(current T, exists bool) (T, error)) (T, error)
}

// Update modifies an existing record and returns ErrNotFound if it is absent.
func Update[T any](ctx context.Context, c Collection[T], id string, fn func(current T) (T, error)) (T, error) {
	return c.Upsert(ctx, id, func(current T, exists bool) (T, error) {
		if !exists {
			return current, ErrNotFound
		}
		return fn(current)
	})
}

// Insert stores value under id only if no record exists there yet.
func Insert[T any](ctx context.Context, c Collection[T], id string, value T) error {
	_, err := c.Upsert(ctx, id, func(current T, exists bool) (T, error) {
		if exists {
			return current, ErrDuplicateID
		}
		return value, nil
	})
	return err
}
