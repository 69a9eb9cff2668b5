package order

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	EventOrderPlaced = "OrderPlaced"

	DefaultDeliverySlot = "Standard"
)

type Status string

const StatusPlaced Status = "placed"

const (
	PaymentPending     = "pending"
	DeliveryNotStarted = "not_started"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyOrder    = errors.New("order must have at least one item")
)

const (
	// mirrorTimeout bounds a single write-through attempt.
	mirrorTimeout = 5 * time.Second
	// idAttempts bounds retries when a generated id is already taken.
	idAttempts = 5
)

// NewID returns a fresh order id of the form "order-1a2b3c4d".
func NewID() string {
	return "order-" + uuid.New().String()[:8]
}

// Item is a cart line frozen at checkout time.
type Item = cart.Item

type Order struct {
	ID             string    `json:"order_id"`
	Status         Status    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	DeliveryStatus string    `json:"delivery_status"`
	UserID         string    `json:"user_id"`
	CartID         string    `json:"cart_id,omitempty"`
	Items          []Item    `json:"items"`
	DeliverySlot   string    `json:"delivery_slot"`
	TotalPrice     int       `json:"total_price"`
	CreatedAt      time.Time `json:"created_at"`
}

func Clone(o Order) Order {
	o.Items = append(make([]Item, 0, len(o.Items)), o.Items...)
	return o
}

// Mirror receives every placed order. Implementations write to remote record
// stores or event streams; their failures are logged, never returned to callers.
type Mirror interface {
	SaveOrder(ctx context.Context, o Order) error
}

// Mirrors fans an order out to several mirrors.
type Mirrors []Mirror

func (ms Mirrors) SaveOrder(ctx context.Context, o Order) error {
	var errs []error
	for _, m := range ms {
		if err := m.SaveOrder(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Service struct {
	orders store.Collection[Order]
	mirror Mirror
	log    logrus.FieldLogger
	now    func() time.Time
	newID  func() string
	wg     sync.WaitGroup
}

// NewService creates an order service. mirror may be nil for local-only mode.
func NewService(orders store.Collection[Order], mirror Mirror, log logrus.FieldLogger) *Service {
	return &Service{
		orders: orders,
		mirror: mirror,
		log:    log.WithField("component", "orders"),
		now:    time.Now,
		newID:  NewID,
	}
}

// Place records a new order over items. The total is computed here, once, from
// the prices captured in the items. The local record is authoritative; the
// mirror write runs in the background.
func (s *Service) Place(ctx context.Context, userID, cartID, deliverySlot string, items []Item) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if deliverySlot == "" {
		deliverySlot = DefaultDeliverySlot
	}

	frozen := append(make([]Item, 0, len(items)), items...)
	var total int
	for _, item := range frozen {
		total += item.Price * item.Quantity
	}

	o := Order{
		Status:         StatusPlaced,
		PaymentStatus:  PaymentPending,
		DeliveryStatus: DeliveryNotStarted,
		UserID:         userID,
		CartID:         cartID,
		Items:          frozen,
		DeliverySlot:   deliverySlot,
		TotalPrice:     total,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.insert(ctx, &o); err != nil {
		return Order{}, err
	}

	s.mirrorOrder(ctx, Clone(o))
	return Clone(o), nil
}

// insert stores o under a fresh id, retrying when the generated id is taken.
func (s *Service) insert(ctx context.Context, o *Order) error {
	var err error
	for attempt := 0; attempt < idAttempts; attempt++ {
		o.ID = s.newID()
		err = store.Insert(ctx, s.orders, o.ID, *o)
		if !errors.Is(err, store.ErrDuplicateID) {
			return err
		}
	}
	return err
}

func (s *Service) mirrorOrder(ctx context.Context, o Order) {
	if s.mirror == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
		defer cancel()
		if err := s.mirror.SaveOrder(mctx, o); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("failed to mirror order, kept locally")
			return
		}
		s.log.WithField("order_id", o.ID).Info("order mirrored to remote store")
	}()
}

// Wait blocks until in-flight mirror writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Get(ctx context.Context, orderID string) (Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

// ListByUser returns userID's orders, oldest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0)
	for _, o := range all {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}
