package cart

import (
	"context"
	"errors"
	"time"

	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
	"github.com/google/uuid"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
)

type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID        string    `json:"cart_id"`
	UserID    string    `json:"user_id"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Total is the current sum of price × quantity over all lines.
func (c Cart) Total() int {
	var total int
	for _, item := range c.Items {
		total += item.Price * item.Quantity
	}
	return total
}

// Clone returns a copy that shares no item storage with c.
func Clone(c Cart) Cart {
	c.Items = append(make([]Item, 0, len(c.Items)), c.Items...)
	return c
}

// NewID returns a fresh cart id of the form "cart-1a2b3c4d".
func NewID() string {
	return "cart-" + uuid.New().String()[:8]
}

// idAttempts bounds retries when a generated id is already taken.
const idAttempts = 5

type Service struct {
	carts store.Collection[Cart]
	now   func() time.Time
	newID func() string
}

func NewService(carts store.Collection[Cart]) *Service {
	return &Service{carts: carts, now: time.Now, newID: NewID}
}

// Create starts an empty cart for userID. It never replaces an existing cart.
func (s *Service) Create(ctx context.Context, userID string) (Cart, error) {
	var err error
	for attempt := 0; attempt < idAttempts; attempt++ {
		c := Cart{
			ID:        s.newID(),
			UserID:    userID,
			Items:     []Item{},
			CreatedAt: s.now(),
		}
		err = store.Insert(ctx, s.carts, c.ID, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, store.ErrDuplicateID) {
			return Cart{}, err
		}
	}
	return Cart{}, err
}

func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	c, err := s.carts.Get(ctx, cartID)
	if errors.Is(err, store.ErrNotFound) {
		return Cart{}, ErrCartNotFound
	}
	return c, err
}

// FindByUser returns the oldest cart owned by userID.
func (s *Service) FindByUser(ctx context.Context, userID string) (Cart, bool, error) {
	carts, err := s.carts.List(ctx)
	if err != nil {
		return Cart{}, false, err
	}
	for _, c := range carts {
		if c.UserID == userID {
			return c, true, nil
		}
	}
	return Cart{}, false, nil
}

// AddItem adds quantity units of p. A product already in the cart has its
// line quantity increased; otherwise a new line captures p's current name,
// price and size.
func (s *Service) AddItem(ctx context.Context, cartID string, p product.Product, quantity int) (Cart, error) {
	if p.ID == "" {
		return Cart{}, ErrInvalidProduct
	}
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}

	return s.update(ctx, cartID, func(c Cart) (Cart, error) {
		for i := range c.Items {
			if c.Items[i].ProductID == p.ID {
				c.Items[i].Quantity += quantity
				return c, nil
			}
		}
		c.Items = append(c.Items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Size:      p.Size,
			Quantity:  quantity,
		})
		return c, nil
	})
}

// TakeItems atomically empties the cart and returns the lines it held.
// An empty cart is left untouched and ErrEmptyCart is returned.
func (s *Service) TakeItems(ctx context.Context, cartID string) ([]Item, error) {
	var taken []Item
	_, err := s.update(ctx, cartID, func(c Cart) (Cart, error) {
		if len(c.Items) == 0 {
			return c, ErrEmptyCart
		}
		taken = c.Items
		c.Items = []Item{}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// Restore puts previously taken lines back in front of the cart's items.
func (s *Service) Restore(ctx context.Context, cartID string, items []Item) error {
	_, err := s.update(ctx, cartID, func(c Cart) (Cart, error) {
		c.Items = append(append([]Item{}, items...), c.Items...)
		return c, nil
	})
	return err
}

func (s *Service) update(ctx context.Context, cartID string, fn func(Cart) (Cart, error)) (Cart, error) {
	c, err := store.Update(ctx, s.carts, cartID, fn)
	if errors.Is(err, store.ErrNotFound) {
		return Cart{}, ErrCartNotFound
	}
	return c, err
}
