package product

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// MemoryCatalog is a fixed in-process product list.
type MemoryCatalog struct {
	products []Product
}

func NewMemoryCatalog(products []Product) *MemoryCatalog {
	return &MemoryCatalog{products: append([]Product(nil), products...)}
}

func (c *MemoryCatalog) Search(ctx context.Context, f Filter) ([]Product, error) {
	results := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Matches(p) {
			results = append(results, p)
		}
	}
	return results, nil
}

func (c *MemoryCatalog) Get(ctx context.Context, id string) (Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Service answers catalog reads from the remote source when one is configured
// and from the local catalog otherwise. Remote failures never reach callers.
type Service struct {
	remote Source
	local  Source
	log    logrus.FieldLogger
}

// NewService creates a catalog service. remote may be nil.
func NewService(remote, local Source, log logrus.FieldLogger) *Service {
	return &Service{
		remote: remote,
		local:  local,
		log:    log.WithField("component", "catalog"),
	}
}

// Search returns matching products. It never fails: a broken remote source
// degrades to the local catalog, and a broken local catalog yields no results.
func (s *Service) Search(ctx context.Context, f Filter) []Product {
	if s.remote != nil {
		results, err := s.remote.Search(ctx, f)
		if err == nil {
			return results
		}
		s.log.WithError(err).Warn("remote product search failed, using local catalog")
	}

	results, err := s.local.Search(ctx, f)
	if err != nil {
		s.log.WithError(err).Error("local product search failed")
		return []Product{}
	}
	return results
}

// Get resolves a product id, consulting the local catalog when the remote
// source does not know the id or is unavailable.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if s.remote != nil {
		p, err := s.remote.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrProductNotFound) {
			s.log.WithError(err).WithField("product_id", id).Warn("remote product lookup failed")
		}
	}
	return s.local.Get(ctx, id)
}
