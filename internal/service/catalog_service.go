package service

import (
	"context"
	"errors"

	"github.com/fjod/orderdesk/internal/cache"
	"github.com/fjod/orderdesk/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ProductSource interface {
	ListProducts(ctx context.Context, token string) ([]domain.Product, error)
}

// CatalogService serves read-only product data, shared by all sessions.
type CatalogService struct {
	source ProductSource
	cache  cache.ProductCache
	sfg    singleflight.Group // collapses concurrent cache misses into one backend call
	log    *zap.Logger
}

func NewCatalogService(source ProductSource, cache cache.ProductCache, log *zap.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		cache:  cache,
		log:    log,
	}
}

func (s *CatalogService) Products(ctx context.Context, token string) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("products", func() (interface{}, error) {
		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("catalog cache get error", zap.Error(err)) // serve from backend anyway
		}

		products, err = s.source.ListProducts(ctx, token)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := s.cache.SetProducts(context.WithoutCancel(ctx), products); errSet != nil {
				s.log.Warn("catalog cache set error", zap.Error(errSet))
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Product), nil
}

func (s *CatalogService) Product(ctx context.Context, token string, id int64) (domain.Product, error) {
	products, err := s.Products(ctx, token)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

// Index returns the catalog keyed by product id.
func (s *CatalogService) Index(ctx context.Context, token string) (map[int64]domain.Product, error) {
	products, err := s.Products(ctx, token)
	if err != nil {
		return nil, err
	}
	idx := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx, nil
}
