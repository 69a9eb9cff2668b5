package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-shop-assistant/internal/command"
	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/query"
	"github.com/example/ec-shop-assistant/internal/session"
	"github.com/sirupsen/logrus"
)

type Commands interface {
	CreateCart(ctx context.Context, cmd command.CreateCart) (cart.Cart, error)
	AddToCart(ctx context.Context, cmd command.AddToCart) (cart.Cart, error)
	PlaceOrder(ctx context.Context, cmd command.PlaceOrder) (order.Order, error)
}

type Queries interface {
	SearchProducts(ctx context.Context, f product.Filter) []product.Product
	GetCart(ctx context.Context, cartID string) (query.CartView, error)
}

// Dispatcher executes tool calls on behalf of a user against the shop
// services and that user's session context.
type Dispatcher struct {
	commands Commands
	queries  Queries
	sessions *session.Store
	log      logrus.FieldLogger
}

func NewDispatcher(commands Commands, queries Queries, sessions *session.Store, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		commands: commands,
		queries:  queries,
		sessions: sessions,
		log:      log.WithField("component", "tools"),
	}
}

// Dispatch runs the named tool. It never panics and never returns an error;
// every outcome is a Result.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, name string, args Args) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithFields(logrus.Fields{"tool": name, "panic": r}).Error("tool panicked")
			res = failure(name, "", fmt.Errorf("tool %s failed: %v", name, r))
		}
	}()
	if args == nil {
		args = Args{}
	}

	switch name {
	case SearchProducts:
		res = d.searchProducts(ctx, userID, args)
	case CreateCart:
		res = d.createCart(ctx, userID)
	case GetMyCart:
		res = d.getMyCart(ctx, userID)
	case AddToCart:
		res = d.addToCart(ctx, userID, args)
	case PlaceOrder:
		res = d.placeOrder(ctx, userID, args)
	default:
		res = failure(name, StatusUnknownTool, fmt.Errorf("%w: %q", ErrUnknownTool, name))
	}

	entry := d.log.WithFields(logrus.Fields{"tool": name, "user_id": userID, "status": res.Status})
	if res.Error != nil {
		entry.WithField("error_kind", res.Error.Kind).Info("tool failed")
	} else {
		entry.Info("tool executed")
	}
	return res
}

func (d *Dispatcher) searchProducts(ctx context.Context, userID string, args Args) Result {
	var f product.Filter
	var err error
	if f.Query, _, err = args.String("query"); err != nil {
		return failure(SearchProducts, "", err)
	}
	maxPrice, hasMaxPrice, err := args.Number("max_price")
	if err != nil {
		return failure(SearchProducts, "", err)
	}
	if hasMaxPrice {
		f.MaxPrice = &maxPrice
	}
	if f.Location, _, err = args.String("location"); err != nil {
		return failure(SearchProducts, "", err)
	}

	results := d.queries.SearchProducts(ctx, f)
	if err := d.sessions.RecordSearch(ctx, userID, results); err != nil {
		return failure(SearchProducts, "", err)
	}
	return Result{
		Tool:   SearchProducts,
		Status: fmt.Sprintf("%d products found", len(results)),
		Data:   results,
	}
}

func (d *Dispatcher) createCart(ctx context.Context, userID string) Result {
	c, err := d.commands.CreateCart(ctx, command.CreateCart{UserID: userID})
	if err != nil {
		return failure(CreateCart, "", err)
	}
	if err := d.sessions.BindCart(ctx, userID, c.ID); err != nil {
		return failure(CreateCart, "", err)
	}
	return Result{Tool: CreateCart, Status: "Cart created", Data: c}
}

func (d *Dispatcher) getMyCart(ctx context.Context, userID string) Result {
	sc, err := d.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		return failure(GetMyCart, "", err)
	}
	if sc.CartID == "" {
		return Result{Tool: GetMyCart, Status: StatusNoActiveCart}
	}

	view, err := d.queries.GetCart(ctx, sc.CartID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return Result{Tool: GetMyCart, Status: StatusCartExpired}
	}
	if err != nil {
		return failure(GetMyCart, "", err)
	}
	return Result{Tool: GetMyCart, Status: "Cart found", Data: view}
}

func (d *Dispatcher) addToCart(ctx context.Context, userID string, args Args) Result {
	productID, ok, err := args.String("product_id")
	if err != nil {
		return failure(AddToCart, "", err)
	}
	if !ok {
		return failure(AddToCart, "", fmt.Errorf("%w: product_id", ErrMissingArgument))
	}
	quantity, ok, err := args.Int("quantity")
	if err != nil {
		return failure(AddToCart, "", err)
	}
	if !ok {
		quantity = 1
	}
	if quantity <= 0 {
		return failure(AddToCart, "", cart.ErrInvalidQuantity)
	}

	cartID, created, err := d.sessions.EnsureCart(ctx, userID, func(ctx context.Context) (string, error) {
		c, err := d.commands.CreateCart(ctx, command.CreateCart{UserID: userID})
		return c.ID, err
	})
	if err != nil {
		return failure(AddToCart, "", err)
	}

	c, err := d.commands.AddToCart(ctx, command.AddToCart{CartID: cartID, ProductID: productID, Quantity: quantity})
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return failure(AddToCart, StatusProductNotFound, err)
	case errors.Is(err, cart.ErrCartNotFound):
		// The bound cart is gone; drop the binding so the next add starts fresh.
		if uerr := d.sessions.UnbindCart(ctx, userID, cartID); uerr != nil {
			d.log.WithError(uerr).WithField("user_id", userID).Warn("failed to unbind expired cart")
		}
		return failure(AddToCart, StatusCartExpired, err)
	case err != nil:
		return failure(AddToCart, "", err)
	}

	return Result{
		Tool:   AddToCart,
		Status: StatusItemAdded,
		Data: map[string]any{
			"cart_id":      c.ID,
			"cart_created": created,
			"product_id":   productID,
			"quantity":     quantity,
			"items":        c.Items,
			"total_price":  c.Total(),
		},
	}
}

func (d *Dispatcher) placeOrder(ctx context.Context, userID string, args Args) Result {
	slot, _, err := args.String("delivery_slot")
	if err != nil {
		return failure(PlaceOrder, "", err)
	}

	sc, err := d.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		return failure(PlaceOrder, "", err)
	}
	if sc.CartID == "" {
		return Result{Tool: PlaceOrder, Status: StatusNoCart}
	}

	o, err := d.commands.PlaceOrder(ctx, command.PlaceOrder{CartID: sc.CartID, UserID: userID, DeliverySlot: slot})
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		return failure(PlaceOrder, StatusCartEmpty, err)
	case errors.Is(err, cart.ErrCartNotFound):
		return failure(PlaceOrder, StatusCartExpired, err)
	case err != nil:
		return failure(PlaceOrder, "", err)
	}

	if err := d.sessions.UnbindCart(ctx, userID, sc.CartID); err != nil {
		d.log.WithError(err).WithField("user_id", userID).Warn("failed to unbind cart after checkout")
	}
	return Result{
		Tool:   PlaceOrder,
		Status: StatusOrderPlaced,
		Data: map[string]any{
			"order_id":      o.ID,
			"total_price":   o.TotalPrice,
			"delivery_slot": o.DeliverySlot,
		},
	}
}
