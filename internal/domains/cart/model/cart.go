package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CartItem là một entry (user, product detail, quantity).
// Lifecycle độc lập với promotion/variant engines.
type CartItem struct {
	ID              uuid.UUID `bson:"_id" json:"cartItemId"`
	UserID          uuid.UUID `bson:"user_id" json:"userId"`
	ProductDetailID uuid.UUID `bson:"product_detail_id" json:"productDetailId"`
	Quantity        int64     `bson:"quantity" json:"quantity"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

type UpsertCartItemRequest struct {
	UserID          uuid.UUID `json:"userId"`
	ProductDetailID uuid.UUID `json:"productDetailId"`
	Quantity        int64     `json:"quantity"`
}

func (r UpsertCartItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.ProductDetailID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(int64(1))),
	)
}
