// Package session keeps the per-user conversation state: the active cart,
// the most recent search results and the chat history.
package session

import (
	"context"

	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
	"github.com/sirupsen/logrus"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Context is one user's session. CartID is empty when no cart is bound.
type Context struct {
	UserID     string            `json:"user_id"`
	CartID     string            `json:"cart_id,omitempty"`
	LastSearch []product.Product `json:"last_search"`
	History    []Turn            `json:"history"`
}

func newContext(userID string) Context {
	return Context{
		UserID:     userID,
		LastSearch: []product.Product{},
		History:    []Turn{},
	}
}

// Clone returns a copy that shares no slices with c.
func Clone(c Context) Context {
	c.LastSearch = append(make([]product.Product, 0, len(c.LastSearch)), c.LastSearch...)
	c.History = append(make([]Turn, 0, len(c.History)), c.History...)
	return c
}

// CartFinder looks up carts created outside the conversation.
type CartFinder interface {
	FindByUser(ctx context.Context, userID string) (cart.Cart, bool, error)
}

// Store holds session contexts keyed by user id. Every mutation runs under
// that user's record lock; different users never contend.
type Store struct {
	contexts store.Collection[Context]
	carts    CartFinder
	log      logrus.FieldLogger
}

func NewStore(contexts store.Collection[Context], carts CartFinder, log logrus.FieldLogger) *Store {
	return &Store{
		contexts: contexts,
		carts:    carts,
		log:      log.WithField("component", "session"),
	}
}

func (s *Store) mutate(ctx context.Context, userID string, fn func(*Context)) (Context, error) {
	return s.contexts.Upsert(ctx, userID, func(c Context, exists bool) (Context, error) {
		if !exists {
			c = newContext(userID)
		}
		fn(&c)
		return c, nil
	})
}

// GetOrCreate returns the user's context, creating an empty one on first access.
func (s *Store) GetOrCreate(ctx context.Context, userID string) (Context, error) {
	return s.mutate(ctx, userID, func(*Context) {})
}

// AdoptExistingCart binds the user's oldest cart when no cart is bound yet and
// returns the cart id bound afterwards (possibly empty).
func (s *Store) AdoptExistingCart(ctx context.Context, userID string) (string, error) {
	current, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return "", err
	}
	if current.CartID != "" || s.carts == nil {
		return current.CartID, nil
	}

	// Looked up outside the context lock; the bind below re-checks.
	found, ok, err := s.carts.FindByUser(ctx, userID)
	if err != nil || !ok {
		return "", err
	}

	c, err := s.mutate(ctx, userID, func(c *Context) {
		if c.CartID == "" {
			c.CartID = found.ID
		}
	})
	if err != nil {
		return "", err
	}
	if c.CartID == found.ID {
		s.log.WithFields(logrus.Fields{"user_id": userID, "cart_id": found.ID}).Debug("adopted existing cart")
	}
	return c.CartID, nil
}

// RecordSearch replaces the user's last search results.
func (s *Store) RecordSearch(ctx context.Context, userID string, results []product.Product) error {
	_, err := s.mutate(ctx, userID, func(c *Context) {
		c.LastSearch = append(make([]product.Product, 0, len(results)), results...)
	})
	return err
}

func (s *Store) BindCart(ctx context.Context, userID, cartID string) error {
	_, err := s.mutate(ctx, userID, func(c *Context) {
		c.CartID = cartID
	})
	return err
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	return s.BindCart(ctx, userID, "")
}

// UnbindCart clears the active cart only if it is still cartID.
func (s *Store) UnbindCart(ctx context.Context, userID, cartID string) error {
	_, err := s.mutate(ctx, userID, func(c *Context) {
		if c.CartID == cartID {
			c.CartID = ""
		}
	})
	return err
}

// EnsureCart returns the bound cart id, calling create and binding its result
// when none is bound. create runs under the user's lock, so two concurrent
// callers never both create a cart. created reports whether create ran.
func (s *Store) EnsureCart(ctx context.Context, userID string, create func(ctx context.Context) (string, error)) (cartID string, created bool, err error) {
	_, err = s.contexts.Upsert(ctx, userID, func(c Context, exists bool) (Context, error) {
		if !exists {
			c = newContext(userID)
		}
		if c.CartID != "" {
			cartID = c.CartID
			return c, nil
		}
		id, err := create(ctx)
		if err != nil {
			return c, err
		}
		c.CartID, cartID, created = id, id, true
		return c, nil
	})
	if err != nil {
		return "", false, err
	}
	return cartID, created, nil
}

func (s *Store) AppendTurn(ctx context.Context, userID string, role Role, content string) error {
	return s.AppendTurns(ctx, userID, Turn{Role: role, Content: content})
}

// AppendTurns appends turns to the history in one step.
func (s *Store) AppendTurns(ctx context.Context, userID string, turns ...Turn) error {
	_, err := s.mutate(ctx, userID, func(c *Context) {
		c.History = append(c.History, turns...)
	})
	return err
}
