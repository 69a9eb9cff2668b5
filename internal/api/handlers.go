package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/ec-shop-assistant/internal/api/middleware"
	"github.com/example/ec-shop-assistant/internal/chat"
	"github.com/example/ec-shop-assistant/internal/command"
	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/query"
	"github.com/example/ec-shop-assistant/internal/tools"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	ServiceName = "ec-shop-assistant"

	// Slot used by direct checkout when the client names none.
	defaultHTTPDeliverySlot = "today"
)

// ChatHandler answers one conversational turn.
type ChatHandler interface {
	HandleTurn(ctx context.Context, message, userID string) chat.Reply
}

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	chat         ChatHandler
	log          logrus.FieldLogger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, chat ChatHandler, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		chat:         chat,
		log:          log.WithField("component", "api"),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
}

// Product Handlers

func (h *Handlers) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.Filter{
		Query:    q.Get("q"),
		Size:     q.Get("size"),
		Location: q.Get("location"),
	}
	if v := q.Get("max_price"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, "max_price must be a number", http.StatusBadRequest)
			return
		}
		f.MaxPrice = &maxPrice
	}
	if v := q.Get("quantity"); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, "quantity must be an integer", http.StatusBadRequest)
			return
		}
		f.Quantity = quantity
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": h.queryHandler.SearchProducts(r.Context(), f)})
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	items := h.queryHandler.SearchProducts(r.Context(), product.Filter{Query: r.URL.Query().Get("q")})
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.queryHandler.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart Handlers

func (h *Handlers) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.cmdHandler.CreateCart(r.Context(), command.CreateCart{UserID: getUserID(r, req.UserID)})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.GetCart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  *int   `json:"qty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	c, err := h.cmdHandler.AddToCart(r.Context(), command.AddToCart{
		CartID:    chi.URLParam(r, "id"),
		ProductID: req.ProductID,
		Quantity:  quantity,
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.PlaceOrder
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.UserID = getUserID(r, cmd.UserID)
	if cmd.DeliverySlot == "" {
		cmd.DeliverySlot = defaultHTTPDeliverySlot
	}

	o, err := h.cmdHandler.PlaceOrder(r.Context(), cmd)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r, r.URL.Query().Get("user_id"))
	respondJSON(w, http.StatusOK, map[string]any{"items": h.queryHandler.ListOrdersByUser(r.Context(), userID)})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.queryHandler.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Chat Handlers

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string         `json:"message"`
		UserID  string         `json:"user_id"`
		Context map[string]any `json:"context"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, "message is required", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, h.chat.HandleTurn(r.Context(), req.Message, getUserID(r, req.UserID)))
}

func (h *Handlers) ListTools(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"tools": tools.Definitions()})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps service errors onto client-facing statuses.
func (h *Handlers) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, "Cart not found", http.StatusNotFound)
	case errors.Is(err, product.ErrProductNotFound):
		respondError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, cart.ErrEmptyCart):
		respondError(w, "Cart empty", http.StatusBadRequest)
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidProduct):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.WithError(err).Error("request failed")
		respondError(w, "internal error", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// getUserID prefers the token identity, then the id the client sent, then
// the X-User-ID header, and finally the anonymous user.
func getUserID(r *http.Request, requested string) string {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return userID
	}
	if requested = strings.TrimSpace(requested); requested != "" {
		return requested
	}
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return userID
	}
	return chat.DefaultUserID
}
