package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fjod/orderdesk/internal/cache"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/repository"
)

type mockSource struct {
	calls    atomic.Int32
	products []domain.Product
	err      error
	gate     chan struct{}
}

func (m *mockSource) ListProducts(context.Context, string) ([]domain.Product, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	return m.products, m.err
}

type mockProductCache struct {
	m        sync.RWMutex
	products []domain.Product
	err      error
}

func (m *mockProductCache) GetProducts(context.Context) ([]domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockProductCache) SetProducts(_ context.Context, products []domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = products
	return nil
}

func (m *mockProductCache) InvalidateProducts(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = nil
	return nil
}

func (m *mockProductCache) get() []domain.Product {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.products
}

type mockRepository struct {
	m     sync.RWMutex
	saved *domain.SavedCart
	err   error
	onGet func() // runs after the read, before it is returned
}

func (m *mockRepository) GetSavedCart(context.Context, string) (*domain.SavedCart, error) {
	m.m.RLock()
	saved, err := m.saved, m.err
	m.m.RUnlock()

	if m.onGet != nil {
		m.onGet()
	}
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, repository.ErrSavedCartNotFound
	}
	return saved, nil
}

func (m *mockRepository) UpsertSavedCart(_ context.Context, c *domain.SavedCart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = c
	return nil
}

func (m *mockRepository) DeleteSavedCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		return repository.ErrSavedCartNotFound
	}
	m.saved = nil
	return nil
}

type mockSavedCartCache struct {
	m     sync.RWMutex
	saved *domain.SavedCart
	err   error
}

func (m *mockSavedCartCache) Get(context.Context, string) (*domain.SavedCart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.saved == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.saved, nil
}

func (m *mockSavedCartCache) Set(_ context.Context, _ string, c *domain.SavedCart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saved = c
	return nil
}

func (m *mockSavedCartCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saved = nil
	return m.err
}

func (m *mockSavedCartCache) get() *domain.SavedCart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.saved
}

type staticIndex map[int64]domain.Product

func (s staticIndex) Index(context.Context, string) (map[int64]domain.Product, error) {
	return s, nil
}
