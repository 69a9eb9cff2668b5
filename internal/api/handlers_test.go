package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/ec-shop-assistant/internal/auth"
	"github.com/example/ec-shop-assistant/internal/chat"
	"github.com/example/ec-shop-assistant/internal/command"
	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
	"github.com/example/ec-shop-assistant/internal/query"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatCall struct {
	message string
	userID  string
}

type fakeChat struct {
	calls []chatCall
}

func (f *fakeChat) HandleTurn(ctx context.Context, message, userID string) chat.Reply {
	f.calls = append(f.calls, chatCall{message: message, userID: userID})
	return chat.Reply{Response: "echo: " + message}
}

func newTestServer(tokens *auth.TokenService) (http.Handler, *fakeChat) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	catalog := product.NewService(nil, product.NewMemoryCatalog(product.Seed()), log)
	carts := cart.NewService(store.NewMemory(cart.Clone))
	orders := order.NewService(store.NewMemory(order.Clone), nil, log)
	assistant := &fakeChat{}

	handlers := NewHandlers(
		command.NewHandler(catalog, carts, orders, log),
		query.NewHandler(catalog, carts, orders, log),
		assistant,
		log,
	)
	return NewRouter(handlers, tokens, log), assistant
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type itemsResponse struct {
	Items []product.Product `json:"items"`
}

// ============================================
// Health and catalog
// ============================================

func TestHealth(t *testing.T) {
	h, _ := newTestServer(nil)

	rec := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, ServiceName, body["service"])
}

func TestSearchCatalog(t *testing.T) {
	h, _ := newTestServer(nil)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"all", "/catalog/search", []string{"p1", "p2", "p3", "p4", "p5"}},
		{"query and price", "/catalog/search?q=shirt&max_price=350", []string{"p1", "p2"}},
		{"size", "/catalog/search?size=L", []string{"p1", "p3", "p5"}},
		{"location and quantity", "/catalog/search?location=civil&quantity=5", []string{"p1", "p3"}},
		{"products alias", "/products?q=jeans", []string{"p4"}},
		{"negative price bound", "/catalog/search?max_price=-1", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")

			require.Equal(t, http.StatusOK, rec.Code)
			body := decode[itemsResponse](t, rec)
			ids := make([]string, len(body.Items))
			for i, p := range body.Items {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearchCatalog_BadNumbers(t *testing.T) {
	h, _ := newTestServer(nil)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/catalog/search?max_price=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/catalog/search?quantity=1.5", "").Code)
}

func TestGetProduct(t *testing.T) {
	h, _ := newTestServer(nil)

	rec := do(t, h, http.MethodGet, "/products/p5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Red Hoodie", decode[product.Product](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/products/p42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode[map[string]string](t, rec)["error"])
}

// ============================================
// Cart and checkout
// ============================================

func TestCartAndOrderFlow(t *testing.T) {
	h, _ := newTestServer(nil)

	rec := do(t, h, http.MethodPost, "/cart", `{"user_id":"user-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[cart.Cart](t, rec)
	assert.Equal(t, "user-123", c.UserID)

	rec = do(t, h, http.MethodPost, "/cart/"+c.ID+"/items", `{"product_id":"p1","qty":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/cart/"+c.ID+"/items", `{"product_id":"p1","qty":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/cart/"+c.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[query.CartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 1495, view.TotalPrice)

	rec = do(t, h, http.MethodPost, "/order", `{"cart_id":"`+c.ID+`","user_id":"user-123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	o := decode[order.Order](t, rec)
	assert.Equal(t, 1495, o.TotalPrice)
	assert.Equal(t, "today", o.DeliverySlot)
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.Equal(t, order.DeliveryNotStarted, o.DeliveryStatus)

	rec = do(t, h, http.MethodGet, "/cart/"+c.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[query.CartView](t, rec).Items)

	rec = do(t, h, http.MethodGet, "/orders/"+o.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, o.ID, decode[order.Order](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/orders?user_id=user-123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []order.Order `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
}

func TestAddToCart_DefaultQuantity(t *testing.T) {
	h, _ := newTestServer(nil)
	c := decode[cart.Cart](t, do(t, h, http.MethodPost, "/cart", `{"user_id":"user-123"}`))

	rec := do(t, h, http.MethodPost, "/cart/"+c.ID+"/items", `{"product_id":"p3"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[cart.Cart](t, rec)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 1, updated.Items[0].Quantity)
}

func TestCartErrors(t *testing.T) {
	h, _ := newTestServer(nil)
	c := decode[cart.Cart](t, do(t, h, http.MethodPost, "/cart", `{"user_id":"user-123"}`))

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"unknown cart", http.MethodGet, "/cart/cart-missing", "", http.StatusNotFound, "Cart not found"},
		{"add to unknown cart", http.MethodPost, "/cart/cart-missing/items", `{"product_id":"p1","qty":1}`, http.StatusNotFound, "Cart not found"},
		{"add unknown product", http.MethodPost, "/cart/" + c.ID + "/items", `{"product_id":"p99","qty":1}`, http.StatusNotFound, "Product not found"},
		{"add zero quantity", http.MethodPost, "/cart/" + c.ID + "/items", `{"product_id":"p1","qty":0}`, http.StatusBadRequest, cart.ErrInvalidQuantity.Error()},
		{"malformed body", http.MethodPost, "/cart/" + c.ID + "/items", `{"product_id":`, http.StatusBadRequest, ""},
		{"order on empty cart", http.MethodPost, "/orders", `{"cart_id":"` + c.ID + `","user_id":"user-123"}`, http.StatusBadRequest, "Cart empty"},
		{"order on unknown cart", http.MethodPost, "/order", `{"cart_id":"cart-missing"}`, http.StatusNotFound, "Cart not found"},
		{"unknown order", http.MethodGet, "/orders/order-missing", "", http.StatusNotFound, "Order not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode[map[string]string](t, rec)["error"])
			}
		})
	}
}

// ============================================
// Chat
// ============================================

func TestChat(t *testing.T) {
	h, assistant := newTestServer(nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"message":"hello","user_id":"user-123","context":{"page":"home"}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "echo: hello", decode[chat.Reply](t, rec).Response)
	require.Len(t, assistant.calls, 1)
	assert.Equal(t, chatCall{message: "hello", userID: "user-123"}, assistant.calls[0])
}

func TestChat_DefaultsToAnonymous(t *testing.T) {
	h, assistant := newTestServer(nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"message":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chat.DefaultUserID, assistant.calls[0].userID)
}

func TestChat_MissingMessage(t *testing.T) {
	h, assistant := newTestServer(nil)

	rec := do(t, h, http.MethodPost, "/chat", `{"user_id":"user-123"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, assistant.calls)
}

func TestChat_TokenIdentityWins(t *testing.T) {
	tokens := auth.NewTokenService("secret")
	h, assistant := newTestServer(tokens)
	claims := auth.Claims{
		UserID:           "shopper@example.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi","user_id":"someone-else"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shopper@example.com", assistant.calls[0].userID)
}

func TestListTools(t *testing.T) {
	h, _ := newTestServer(nil)

	rec := do(t, h, http.MethodGet, "/tools", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Tools, 5)
}
