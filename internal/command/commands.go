package command

// Cart Commands
type CreateCart struct {
	UserID string `json:"user_id"`
}

type AddToCart struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"qty"`
}

// Order Commands
type PlaceOrder struct {
	CartID       string `json:"cart_id"`
	UserID       string `json:"user_id"`
	DeliverySlot string `json:"delivery_slot"`
}
