package api

import (
	"net/http"

	"github.com/example/ec-shop-assistant/internal/api/middleware"
	"github.com/example/ec-shop-assistant/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the HTTP surface. tokens may be nil, in which case callers
// identify themselves with user_id fields or the X-User-ID header.
func NewRouter(handlers *Handlers, tokens *auth.TokenService, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log.WithField("component", "http")))
	r.Use(chimw.Recoverer)
	if tokens != nil {
		r.Use(middleware.Identity(tokens))
	}

	r.Get("/health", handlers.Health)

	// Catalog
	r.Get("/catalog/search", handlers.SearchCatalog)
	r.Get("/products", handlers.GetProducts)
	r.Get("/products/{id}", handlers.GetProduct)

	// Cart
	r.Post("/cart", handlers.CreateCart)
	r.Get("/cart/{id}", handlers.GetCart)
	r.Post("/cart/{id}/items", handlers.AddToCart)

	// Orders
	r.Post("/order", handlers.PlaceOrder)
	r.Post("/orders", handlers.PlaceOrder)
	r.Get("/orders", handlers.GetOrders)
	r.Get("/orders/{id}", handlers.GetOrder)

	// Assistant
	r.Post("/chat", handlers.Chat)
	r.Get("/tools", handlers.ListTools)

	return r
}
