package tools

import (
	"errors"

	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
)

type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindValidation       ErrorKind = "validation"
	KindEmptyCart        ErrorKind = "empty_cart"
	KindUnknownOperation ErrorKind = "unknown_operation"
	KindInternal         ErrorKind = "internal"
)

// Status markers reported back to the reasoning engine.
const (
	StatusNoActiveCart    = "No active cart found."
	StatusCartExpired     = "Cart expired."
	StatusItemAdded       = "Item added"
	StatusProductNotFound = "Product not found"
	StatusNoCart          = "No cart to checkout"
	StatusCartEmpty       = "Cart is empty"
	StatusOrderPlaced     = "Order Placed"
	StatusUnknownTool     = "Unknown tool"
)

type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Result is the outcome of one tool call. Failures are carried in Error,
// so every Result can be handed back to the reasoning engine as is.
type Result struct {
	Tool   string     `json:"tool"`
	Status string     `json:"status,omitempty"`
	Data   any        `json:"data,omitempty"`
	Error  *ToolError `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Error == nil
}

func failure(tool, status string, err error) Result {
	return Result{
		Tool:   tool,
		Status: status,
		Error:  &ToolError{Kind: classify(err), Message: err.Error()},
	}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return KindNotFound
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, ErrMissingArgument),
		errors.Is(err, ErrInvalidArgument):
		return KindValidation
	case errors.Is(err, cart.ErrEmptyCart), errors.Is(err, order.ErrEmptyOrder):
		return KindEmptyCart
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownOperation
	default:
		return KindInternal
	}
}
