package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-shop-assistant/internal/api"
	"github.com/example/ec-shop-assistant/internal/app"
	"github.com/example/ec-shop-assistant/internal/auth"
	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/infrastructure/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := storage.Open(ctx, cfg, log)
	defer func() {
		if err := port.Close(); err != nil {
			log.WithError(err).Warn("error closing storage")
		}
	}()

	shop := app.New(port, nil, cfg, log)
	defer shop.Wait()

	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		if len(cfg.JWTSecret) < 32 {
			log.Fatal("JWT_SECRET must be at least 32 characters long")
		}
		tokens = auth.NewTokenService(cfg.JWTSecret)
	}

	handlers := api.NewHandlers(shop.Commands, shop.Queries, shop.Driver, log)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, tokens, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"addr":    cfg.HTTPAddr,
		"backend": cfg.StoreBackend,
		"engine":  cfg.GeminiModel,
		"auth":    tokens != nil,
	}).Info("shop assistant starting")
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, chat runs in offline mode")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
}
