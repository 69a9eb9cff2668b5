package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/pkg/errors"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OrderMirror writes placed orders through to the orders table.
type OrderMirror struct {
	db execer
}

func NewOrderMirror(db *sql.DB) *OrderMirror {
	return &OrderMirror{db: db}
}

const insertOrder = `
	INSERT INTO orders (order_id, user_id, cart_id, items, total_price, delivery_slot, status, payment_status, delivery_status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (order_id) DO NOTHING`

func (m *OrderMirror) SaveOrder(ctx context.Context, o order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	_, err = m.db.ExecContext(ctx, insertOrder,
		o.ID,
		o.UserID,
		o.CartID,
		items,
		o.TotalPrice,
		o.DeliverySlot,
		string(o.Status),
		o.PaymentStatus,
		o.DeliveryStatus,
		o.CreatedAt,
	)
	return errors.Wrapf(err, "insert order %s", o.ID)
}
