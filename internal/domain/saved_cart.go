package domain

import "time"

// SavedCart is a named draft, stored apart from the live cart and restored only on request.
type SavedCart struct {
	ID        string          `bson:"_id,omitempty" json:"-"`
	ActorID   string          `bson:"actor_id" json:"actor_id"`
	Name      string          `bson:"name" json:"name"`
	Items     []SavedCartItem `bson:"items" json:"items"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

type SavedCartItem struct {
	ProductID int64 `bson:"product_id" json:"product_id"`
	Quantity  int   `bson:"quantity" json:"quantity"`
}
