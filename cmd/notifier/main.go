package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/email"
	"github.com/example/ec-shop-assistant/internal/infrastructure/kafka"
	"github.com/example/ec-shop-assistant/internal/notification"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const consumerGroup = "order-notifier"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := cfg.NewLogger()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.KafkaTopic,
		"group":   consumerGroup,
		"smtp":    cfg.SMTPHost + ":" + cfg.SMTPPort,
	}).Info("order notifier starting")

	handler := notification.NewHandler(email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom), log)
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup, log)
	defer consumer.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Consume(gctx, handler.HandleEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("consumer stopped")
	}
	log.Info("notifier stopped")
}
