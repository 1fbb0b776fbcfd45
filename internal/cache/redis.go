package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

const productsKey = "catalog:products"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:     client,
		baseTTL:    15 * time.Minute,
		catalogTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client     *redis.Client
	baseTTL    time.Duration
	catalogTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, actorID string) (*domain.SavedCart, error) {
	var cart domain.SavedCart
	if err := r.getJSON(ctx, savedCartKey(actorID), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r RedisCache) Set(ctx context.Context, actorID string, cart *domain.SavedCart) error {
	return r.setJSON(ctx, savedCartKey(actorID), cart, r.baseTTL)
}

func (r RedisCache) Delete(ctx context.Context, actorID string) error {
	return r.del(ctx, savedCartKey(actorID))
}

func (r RedisCache) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.getJSON(ctx, productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r RedisCache) SetProducts(ctx context.Context, products []domain.Product) error {
	return r.setJSON(ctx, productsKey, products, r.catalogTTL)
}

func (r RedisCache) InvalidateProducts(ctx context.Context) error {
	return r.del(ctx, productsKey)
}

func (r RedisCache) getJSON(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

// setJSON stores v with ttl plus up to 4 minutes of jitter so keys written together do not expire together.
func (r RedisCache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, key, data, ttl+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func savedCartKey(actorID string) string {
	return fmt.Sprintf("savedcart:%s", actorID)
}
