package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/ec-shop-assistant/internal/domain/product"
	"github.com/sirupsen/logrus"
)

const DefaultProductTTL = 5 * time.Minute

// CachedCatalog memoizes product lookups by id in front of a remote catalog.
// Searches go straight through. Cache errors are logged and the remote source
// answers instead.
type CachedCatalog struct {
	source product.Source
	cache  Cache
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewCachedCatalog(source product.Source, cache Cache, ttl time.Duration, log logrus.FieldLogger) *CachedCatalog {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	return &CachedCatalog{
		source: source,
		cache:  cache,
		ttl:    ttl,
		log:    log.WithField("component", "product-cache"),
	}
}

func (c *CachedCatalog) Search(ctx context.Context, f product.Filter) ([]product.Product, error) {
	return c.source.Search(ctx, f)
}

func (c *CachedCatalog) Get(ctx context.Context, id string) (product.Product, error) {
	key := c.cache.GenerateKey("product", id)

	cached, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if cached != "" {
		var p product.Product
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return p, nil
		}
		c.log.WithField("key", key).Warn("discarding undecodable cache entry")
	}

	p, err := c.source.Get(ctx, id)
	if err != nil {
		return product.Product{}, err
	}

	data, err := json.Marshal(p)
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return p, nil
}
