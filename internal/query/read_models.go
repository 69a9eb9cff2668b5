package query

import "github.com/example/ec-shop-assistant/internal/domain/cart"

// CartView is a cart as served to clients, with its total computed on read.
type CartView struct {
	CartID     string      `json:"cart_id"`
	UserID     string      `json:"user_id"`
	Items      []cart.Item `json:"items"`
	TotalPrice int         `json:"total_price"`
}

func newCartView(c cart.Cart) CartView {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartView{
		CartID:     c.ID,
		UserID:     c.UserID,
		Items:      items,
		TotalPrice: c.Total(),
	}
}
