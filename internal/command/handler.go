package command

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

func NewHandler(
	catalog *product.Service,
	carts *cart.Service,
	orders *order.Service,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		log:     log.WithField("component", "commands"),
	}
}

// CreateCart starts an empty cart for the user
func (h *Handler) CreateCart(ctx context.Context, cmd CreateCart) (cart.Cart, error) {
	return h.carts.Create(ctx, cmd.UserID)
}

// AddToCart adds a product to an existing cart, capturing the product's
// current name, price and size on a new line.
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (cart.Cart, error) {
	// Unknown carts are reported before unknown products
	if _, err := h.carts.Get(ctx, cmd.CartID); err != nil {
		return cart.Cart{}, err
	}
	if cmd.ProductID == "" {
		return cart.Cart{}, cart.ErrInvalidProduct
	}

	p, err := h.catalog.Get(ctx, cmd.ProductID)
	if err != nil {
		return cart.Cart{}, err
	}
	return h.carts.AddItem(ctx, cmd.CartID, p, cmd.Quantity)
}

// PlaceOrder turns the cart's items into an order and empties the cart.
// The cart itself is kept so its id stays valid.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (order.Order, error) {
	// 1. Take the items; fails with ErrEmptyCart without touching the cart
	items, err := h.carts.TakeItems(ctx, cmd.CartID)
	if err != nil {
		return order.Order{}, err
	}

	// 2. Freeze them into an order
	o, err := h.orders.Place(ctx, cmd.UserID, cmd.CartID, cmd.DeliverySlot, items)
	if err != nil {
		// Put the items back so a failed checkout does not lose the cart
		if rerr := h.carts.Restore(ctx, cmd.CartID, items); rerr != nil {
			h.log.WithError(rerr).WithField("cart_id", cmd.CartID).Error("failed to restore cart items")
		}
		return order.Order{}, err
	}

	h.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"cart_id":  cmd.CartID,
		"total":    o.TotalPrice,
	}).Info("order placed")
	return o, nil
}
