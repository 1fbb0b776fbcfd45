package cache

import (
	"context"
	"errors"

	"github.com/fjod/orderdesk/internal/domain"
)

type ProductCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	InvalidateProducts(ctx context.Context) error
}

type SavedCartCache interface {
	Get(ctx context.Context, actorID string) (*domain.SavedCart, error)
	Set(ctx context.Context, actorID string, cart *domain.SavedCart) error
	Delete(ctx context.Context, actorID string) error
}

var ErrCacheMiss = errors.New("cache miss")
