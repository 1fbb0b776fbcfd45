package repository

import (
	"context"
	"errors"

	"github.com/fjod/orderdesk/internal/domain"
)

var ErrSavedCartNotFound = errors.New("saved cart not found")

// SavedCartRepository stores at most one named draft per actor.
type SavedCartRepository interface {
	GetSavedCart(ctx context.Context, actorID string) (*domain.SavedCart, error)
	UpsertSavedCart(ctx context.Context, cart *domain.SavedCart) error
	DeleteSavedCart(ctx context.Context, actorID string) error
}
