package query

import (
	"context"

	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	catalog *product.Service
	carts   *cart.Service
	orders  *order.Service
	log     logrus.FieldLogger
}

func NewHandler(catalog *product.Service, carts *cart.Service, orders *order.Service, log logrus.FieldLogger) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		log:     log.WithField("component", "queries"),
	}
}

// Products
func (h *Handler) SearchProducts(ctx context.Context, f product.Filter) []product.Product {
	return h.catalog.Search(ctx, f)
}

func (h *Handler) GetProduct(ctx context.Context, id string) (product.Product, error) {
	return h.catalog.Get(ctx, id)
}

// Cart
func (h *Handler) GetCart(ctx context.Context, cartID string) (CartView, error) {
	c, err := h.carts.Get(ctx, cartID)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c), nil
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (order.Order, error) {
	return h.orders.Get(ctx, id)
}

func (h *Handler) ListOrdersByUser(ctx context.Context, userID string) []order.Order {
	orders, err := h.orders.ListByUser(ctx, userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("failed to list orders")
		return []order.Order{}
	}
	return orders
}
