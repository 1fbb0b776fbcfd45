package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/orderdesk/internal/cart"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSavedCartService(repo *mockRepository, c *mockSavedCartCache) *SavedCartService {
	idx := staticIndex{}
	for _, p := range catalog {
		idx[p.ID] = p
	}
	return NewSavedCartService(repo, c, idx, zap.NewNop())
}

func TestSave_StoresIdsAndQuantities(t *testing.T) {
	repo := &mockRepository{}
	c := &mockSavedCartCache{saved: &domain.SavedCart{Name: "stale"}}
	sut := newSavedCartService(repo, c)

	lines := []domain.CartLine{
		{ProductID: 1, Quantity: 24, UnitPrice: decimal.NewFromInt(20)},
		{ProductID: 2, Quantity: 5, UnitPrice: decimal.NewFromInt(8)},
	}
	saved, err := sut.Save(context.Background(), "agent-1", "  haftalık  ", lines)
	require.NoError(t, err)

	assert.Equal(t, "haftalık", saved.Name)
	assert.Equal(t, []domain.SavedCartItem{{ProductID: 1, Quantity: 24}, {ProductID: 2, Quantity: 5}}, repo.saved.Items)
	assert.Nil(t, c.get(), "cache was not invalidated")
}

func TestSave_Rejects(t *testing.T) {
	sut := newSavedCartService(&mockRepository{}, &mockSavedCartCache{})

	_, err := sut.Save(context.Background(), "a", " ", []domain.CartLine{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = sut.Save(context.Background(), "a", "x", nil)
	assert.ErrorIs(t, err, ErrNothingToSave)
}

func TestSave_RepoError(t *testing.T) {
	sut := newSavedCartService(&mockRepository{err: errors.New("database error")}, &mockSavedCartCache{})

	_, err := sut.Save(context.Background(), "a", "x", []domain.CartLine{{ProductID: 1, Quantity: 1}})
	assert.ErrorContains(t, err, "database error")
}

func TestGet_CacheMissReadsRepo(t *testing.T) {
	repo := &mockRepository{saved: &domain.SavedCart{ActorID: "a", Name: "draft"}}
	c := &mockSavedCartCache{}
	sut := newSavedCartService(repo, c)

	got, err := sut.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Name)

	require.NotNil(t, c.get(), "saved cart was not set in cache")
	assert.Equal(t, "draft", c.get().Name)
}

func TestGet_WriteDuringReadDoesNotCacheOldDraft(t *testing.T) {
	repo := &mockRepository{saved: &domain.SavedCart{ActorID: "a", Name: "old"}}
	c := &mockSavedCartCache{}
	sut := newSavedCartService(repo, c)

	repo.onGet = func() {
		repo.onGet = nil
		_, err := sut.Save(context.Background(), "a", "new", []domain.CartLine{{ProductID: 1, Quantity: 2}})
		require.NoError(t, err)
	}

	got, err := sut.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "old", got.Name)
	assert.Nil(t, c.get(), "old draft was left in cache")

	got, err = sut.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
}

func TestGet_DeleteDuringReadDoesNotCacheOldDraft(t *testing.T) {
	repo := &mockRepository{saved: &domain.SavedCart{ActorID: "a", Name: "old"}}
	c := &mockSavedCartCache{}
	sut := newSavedCartService(repo, c)

	repo.onGet = func() {
		repo.onGet = nil
		require.NoError(t, sut.Delete(context.Background(), "a"))
	}

	_, err := sut.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Nil(t, c.get())

	_, err = sut.Get(context.Background(), "a")
	assert.ErrorIs(t, err, repository.ErrSavedCartNotFound)
}

func TestGet_NotFound(t *testing.T) {
	sut := newSavedCartService(&mockRepository{}, &mockSavedCartCache{})

	_, err := sut.Get(context.Background(), "a")
	assert.ErrorIs(t, err, repository.ErrSavedCartNotFound)
}

func TestDelete(t *testing.T) {
	repo := &mockRepository{saved: &domain.SavedCart{ActorID: "a"}}
	c := &mockSavedCartCache{saved: repo.saved}
	sut := newSavedCartService(repo, c)

	require.NoError(t, sut.Delete(context.Background(), "a"))
	assert.Nil(t, repo.saved)
	assert.Nil(t, c.get())

	assert.ErrorIs(t, sut.Delete(context.Background(), "a"), repository.ErrSavedCartNotFound)
}

func TestRestore_AddsAvailableAndSkipsRest(t *testing.T) {
	repo := &mockRepository{saved: &domain.SavedCart{
		ActorID: "a",
		Name:    "draft",
		Items: []domain.SavedCartItem{
			{ProductID: 1, Quantity: 6},  // available
			{ProductID: 2, Quantity: 3},  // out of stock
			{ProductID: 77, Quantity: 1}, // no longer in catalog
		},
	}}
	sut := newSavedCartService(repo, &mockSavedCartCache{})
	store := cart.NewStore(domain.ChannelDealer)

	result, err := sut.Restore(context.Background(), "a", "tok", store)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, result.Restored)
	assert.Equal(t, []int64{2, 77}, result.Skipped)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(24).Equal(lines[0].UnitPrice))

	// the draft itself is untouched
	assert.NotNil(t, repo.saved)
}

func TestRestore_NoDraft(t *testing.T) {
	sut := newSavedCartService(&mockRepository{}, &mockSavedCartCache{})

	_, err := sut.Restore(context.Background(), "a", "tok", cart.NewStore(domain.ChannelDealer))
	assert.ErrorIs(t, err, repository.ErrSavedCartNotFound)
}
