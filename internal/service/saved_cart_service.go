package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fjod/orderdesk/internal/cache"
	"github.com/fjod/orderdesk/internal/cart"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type ProductIndex interface {
	Index(ctx context.Context, token string) (map[int64]domain.Product, error)
}

// SavedCartService manages named drafts. Drafts never touch a live cart unless Restore is called.
type SavedCartService struct {
	repo    repository.SavedCartRepository
	cache   cache.SavedCartCache
	catalog ProductIndex
	sfg     singleflight.Group
	log     *zap.Logger

	genMu       sync.Mutex
	generations map[string]uint64 // bumped before every write of an actor's draft
}

func NewSavedCartService(repo repository.SavedCartRepository, cache cache.SavedCartCache, catalog ProductIndex, log *zap.Logger) *SavedCartService {
	return &SavedCartService{
		repo:        repo,
		cache:       cache,
		catalog:     catalog,
		log:         log,
		generations: make(map[string]uint64),
	}
}

// RestoreResult lists what came back into the live cart and what could not.
type RestoreResult struct {
	Restored []int64 `json:"restored"`
	Skipped  []int64 `json:"skipped"`
}

func (s *SavedCartService) Get(ctx context.Context, actorID string) (*domain.SavedCart, error) {
	v, err, _ := s.sfg.Do(actorID, func() (interface{}, error) {
		saved, err := s.cache.Get(ctx, actorID)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("saved cart cache get error", zap.Error(err))
		}

		gen := s.generation(actorID)
		saved, err = s.repo.GetSavedCart(ctx, actorID)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.Set(context.WithoutCancel(ctx), actorID, saved); errSet != nil {
			s.log.Warn("saved cart cache set error", zap.Error(errSet))
		}
		// a write between the read and the fill would leave the old draft cached
		if s.generation(actorID) != gen {
			s.invalidateCache(actorID)
		}
		return saved, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.SavedCart), nil
}

// Save stores the given lines as the actor's draft, replacing any previous one.
// Only product ids and quantities are kept; prices are resolved again on restore.
func (s *SavedCartService) Save(ctx context.Context, actorID, name string, lines []domain.CartLine) (*domain.SavedCart, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if len(lines) == 0 {
		return nil, ErrNothingToSave
	}

	saved := &domain.SavedCart{
		ActorID: actorID,
		Name:    name,
		Items:   make([]domain.SavedCartItem, len(lines)),
	}
	for i, l := range lines {
		saved.Items[i] = domain.SavedCartItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	s.bumpGeneration(actorID)
	if err := s.repo.UpsertSavedCart(ctx, saved); err != nil {
		s.log.Error("repo upsert saved cart error", zap.Error(err))
		return nil, err
	}

	s.invalidateCache(actorID)
	return saved, nil
}

func (s *SavedCartService) Delete(ctx context.Context, actorID string) error {
	s.bumpGeneration(actorID)
	if err := s.repo.DeleteSavedCart(ctx, actorID); err != nil {
		if !errors.Is(err, repository.ErrSavedCartNotFound) {
			s.log.Error("repo delete saved cart error", zap.Error(err))
		}
		return err
	}

	s.invalidateCache(actorID)
	return nil
}

// Restore adds the draft's items to the live cart at current prices.
// Items the cart rejects (gone from the catalog, out of stock, no price) are skipped, not fatal.
func (s *SavedCartService) Restore(ctx context.Context, actorID, token string, store *cart.Store) (*RestoreResult, error) {
	saved, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Index(ctx, token)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{Restored: []int64{}, Skipped: []int64{}}
	for _, item := range saved.Items {
		p, ok := products[item.ProductID]
		if !ok {
			result.Skipped = append(result.Skipped, item.ProductID)
			continue
		}
		if err := store.AddLine(p, item.Quantity); err != nil {
			s.log.Info("skipped saved cart item", zap.Int64("product_id", item.ProductID), zap.Error(err))
			result.Skipped = append(result.Skipped, item.ProductID)
			continue
		}
		result.Restored = append(result.Restored, item.ProductID)
	}
	return result, nil
}

func (s *SavedCartService) invalidateCache(actorID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, actorID); err != nil {
		s.log.Warn("saved cart cache invalidate error", zap.Error(err))
	}
}

func (s *SavedCartService) generation(actorID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[actorID]
}

func (s *SavedCartService) bumpGeneration(actorID string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[actorID]++
}
