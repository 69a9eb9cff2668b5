// Package storage selects the persistence backends once at startup.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/ec-shop-assistant/internal/config"
	"github.com/example/ec-shop-assistant/internal/domain/cart"
	"github.com/example/ec-shop-assistant/internal/domain/order"
	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/example/ec-shop-assistant/internal/infrastructure/cache"
	"github.com/example/ec-shop-assistant/internal/infrastructure/dynamo"
	"github.com/example/ec-shop-assistant/internal/infrastructure/kafka"
	"github.com/example/ec-shop-assistant/internal/infrastructure/postgres"
	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
	"github.com/example/ec-shop-assistant/internal/session"
	"github.com/sirupsen/logrus"
)

const connectTimeout = 5 * time.Second

type pingCache interface {
	cache.Cache
	Ping(ctx context.Context) error
	Close() error
}

// Seams replaced in tests.
var (
	connectPostgres = postgres.ConnectPostgres
	preparePostgres = func(ctx context.Context, db *sql.DB) error {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		return postgres.SeedProducts(ctx, db, product.Seed())
	}
	newDynamoMirror = func(ctx context.Context, table string) (order.Mirror, error) {
		client, err := dynamo.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return dynamo.NewOrderMirror(client, table), nil
	}
	newRedisCache = func(addr string) pingCache {
		return cache.NewRedisCache(addr, "shop")
	}
)

// Port is the storage chosen for this process. Carts, orders and session
// contexts always live in process memory. Catalog and Mirror are nil when no
// remote store is configured.
type Port struct {
	Carts    store.Collection[cart.Cart]
	Orders   store.Collection[order.Order]
	Contexts store.Collection[session.Context]

	Catalog product.Source
	Mirror  order.Mirror

	closers []func() error
}

// Open builds the Port described by cfg. Unreachable remote stores are logged
// and left out, so Open itself never fails.
func Open(ctx context.Context, cfg config.Config, log logrus.FieldLogger) *Port {
	log = log.WithField("component", "storage")
	p := &Port{
		Carts:    store.NewMemory(cart.Clone),
		Orders:   store.NewMemory(order.Clone),
		Contexts: store.NewMemory(session.Clone),
	}

	var mirrors order.Mirrors

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		if db := p.openPostgres(ctx, cfg.DatabaseURL, log); db != nil {
			p.Catalog = postgres.NewCatalog(db)
			mirrors = append(mirrors, postgres.NewOrderMirror(db))
		}
	case config.BackendDynamoDB:
		mctx, cancel := context.WithTimeout(ctx, connectTimeout)
		m, err := newDynamoMirror(mctx, cfg.DynamoDBOrdersTable)
		cancel()
		if err != nil {
			log.WithError(err).Warn("dynamodb unavailable, orders stay local")
		} else {
			mirrors = append(mirrors, m)
			log.WithField("table", cfg.DynamoDBOrdersTable).Info("mirroring orders to dynamodb")
		}
	default:
		log.Info("using in-memory storage")
	}

	if p.Catalog != nil && cfg.RedisAddr != "" {
		c := newRedisCache(cfg.RedisAddr)
		pctx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := c.Ping(pctx)
		cancel()
		if err != nil {
			log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, product cache disabled")
			_ = c.Close()
		} else {
			p.Catalog = cache.NewCachedCatalog(p.Catalog, c, cfg.ProductCacheTTL, log)
			p.closers = append(p.closers, c.Close)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		mirrors = append(mirrors, producer)
		p.closers = append(p.closers, producer.Close)
		log.WithFields(logrus.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("publishing order events")
	}

	switch len(mirrors) {
	case 0:
	case 1:
		p.Mirror = mirrors[0]
	default:
		p.Mirror = mirrors
	}
	return p
}

func (p *Port) openPostgres(ctx context.Context, url string, log logrus.FieldLogger) *sql.DB {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := connectPostgres(cctx, url)
	if err != nil {
		log.WithError(err).Warn("postgres unavailable, using local catalog and orders")
		return nil
	}
	if err := preparePostgres(cctx, db); err != nil {
		log.WithError(err).Warn("postgres schema setup failed, using local catalog and orders")
		_ = db.Close()
		return nil
	}
	p.closers = append(p.closers, db.Close)
	log.Info("connected to postgres")
	return db
}

// Close releases remote connections in reverse order of opening.
func (p *Port) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
