package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/orderdesk/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("saved_carts"),
	}
}

func (m *MongoRepository) GetSavedCart(ctx context.Context, actorID string) (*domain.SavedCart, error) {
	var cart domain.SavedCart

	err := m.collection.FindOne(ctx, bson.M{"actor_id": actorID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSavedCartNotFound
		}
		return nil, fmt.Errorf("failed to get saved cart: %w", err)
	}

	return &cart, nil
}

// UpsertSavedCart replaces the actor's draft, keeping the original creation time.
func (m *MongoRepository) UpsertSavedCart(ctx context.Context, cart *domain.SavedCart) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now

	filter := bson.M{"actor_id": cart.ActorID}
	update := bson.M{
		"$set": bson.M{
			"actor_id":   cart.ActorID,
			"name":       cart.Name,
			"items":      cart.Items,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.SavedCart
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return fmt.Errorf("failed to upsert saved cart: %w", err)
	}
	cart.ID = stored.ID
	cart.CreatedAt = stored.CreatedAt
	return nil
}

func (m *MongoRepository) DeleteSavedCart(ctx context.Context, actorID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"actor_id": actorID})
	if err != nil {
		return fmt.Errorf("failed to delete saved cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrSavedCartNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
