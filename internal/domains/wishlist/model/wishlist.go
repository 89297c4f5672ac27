package model

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem: user đánh dấu một product, không có quantity.
type WishlistItem struct {
	ID        uuid.UUID `bson:"_id" json:"wishlistItemId"`
	UserID    uuid.UUID `bson:"user_id" json:"userId"`
	ProductID uuid.UUID `bson:"product_id" json:"productId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
