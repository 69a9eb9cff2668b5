// Package app assembles the shop services on top of a storage port.
package app

import (
	"github.com/example/ec-shop-assistant/internal/chat"
	"github.com/example/ec-shop-assistant/internal/command"
	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/infrastructure/storage"
	"github.com/example/ec-shop-assistant/internal/llm"
	"github.com/example/ec-shop-assistant/internal/query"
	"github.com/example/ec-shop-assistant/internal/session"
	"github.com/example/ec-shop-assistant/internal/tools"
	"github.com/sirupsen/logrus"
)

type App struct {
	Commands   *command.Handler
	Queries    *query.Handler
	Sessions   *session.Store
	Dispatcher *tools.Dispatcher
	Driver     *chat.Driver

	orders *order.Service
}

// New wires the services. engine may be nil to build it from cfg.
func New(port *storage.Port, engine llm.Engine, cfg config.Config, log logrus.FieldLogger) *App {
	catalog := product.NewService(port.Catalog, product.NewMemoryCatalog(product.Seed()), log)
	carts := cart.NewService(port.Carts)
	orders := order.NewService(port.Orders, port.Mirror, log)

	commands := command.NewHandler(catalog, carts, orders, log)
	queries := query.NewHandler(catalog, carts, orders, log)
	sessions := session.NewStore(port.Contexts, carts, log)
	dispatcher := tools.NewDispatcher(commands, queries, sessions, log)

	if engine == nil {
		engine = llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.EngineTimeout)
	}
	driver := chat.NewDriver(engine, dispatcher, sessions, chat.NewFallback(catalog), chat.Options{
		EngineTimeout: cfg.EngineTimeout,
		MaxToolRounds: cfg.MaxToolRounds,
	}, log)

	return &App{
		Commands:   commands,
		Queries:    queries,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Driver:     driver,
		orders:     orders,
	}
}

// Wait blocks until pending order mirror writes finish.
func (a *App) Wait() {
	a.orders.Wait()
}
