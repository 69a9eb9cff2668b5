package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/ec-shop-assistant/internal/app"
	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/infrastructure/storage"
	"github.com/example/ec-shop-assistant/internal/mcpbridge"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	// stdout carries the protocol; logs go to stderr.
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := storage.Open(ctx, cfg, log)
	defer port.Close()

	shop := app.New(port, nil, cfg, log)
	defer shop.Wait()

	log.Info("mcp bridge serving on stdio")
	srv := mcpbridge.NewServer(shop.Dispatcher, log)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("mcp server stopped")
	}
}
