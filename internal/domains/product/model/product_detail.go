package model

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductDetail là stock-keeping unit theo tenant, derive từ một Product.
// Nhiều ProductDetail có thể reference cùng một Product (mỗi tenant một bộ giá).
type ProductDetail struct {
	ID        uuid.UUID `bson:"_id" json:"productDetailId"`
	ProductID uuid.UUID `bson:"product_id" json:"productId"`
	TenantID  string    `bson:"tenant_id" json:"tenantId"`

	Price    primitive.Decimal128 `bson:"price" json:"price"`
	Quantity int64                `bson:"quantity" json:"quantity"`

	// Availability window
	EntryDate      *time.Time `bson:"entry_date,omitempty" json:"entryDate,omitempty"`
	ExitDate       *time.Time `bson:"exit_date,omitempty" json:"exitDate,omitempty"`
	ExpirationDate *time.Time `bson:"expiration_date,omitempty" json:"expirationDate,omitempty"`

	IsDeleted bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt time.Time `bson:"created_at" json:"createDate"`
	UpdatedAt time.Time `bson:"updated_at" json:"updateDate"`
}
