package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductType phân biệt source product và extend variant trong một family
const (
	ProductTypeSource = "product-source"
	ProductTypeExtend = "product-extend"
)

// Product là một sellable item. Một source product sở hữu 0..N extend
// variants, variants cũng là Product records, share cùng reference_key.
// Invariant: mỗi family đúng một document có product_type = product-source.
type Product struct {
	ID           uuid.UUID `bson:"_id" json:"productId"`
	ProductCode  string    `bson:"product_code" json:"productCode"`
	ReferenceKey string    `bson:"reference_key" json:"referenceKey"`

	Name        string `bson:"name" json:"name"`
	Title       string `bson:"title" json:"title"`
	Slug        string `bson:"slug" json:"slug"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// Image: ảnh đơn của variant. Gallery: JSON list file names (source).
	Image   string `bson:"image,omitempty" json:"image,omitempty"`
	Gallery string `bson:"gallery,omitempty" json:"gallery,omitempty"`

	// ProductExtend là consolidated descriptor của cả family,
	// chỉ có trên source product (xem ExtendDescriptor)
	ProductExtend string `bson:"product_extend,omitempty" json:"productExtend,omitempty"`

	CategoryID uuid.UUID `bson:"category_id,omitempty" json:"categoryId,omitempty"`

	ProductType string    `bson:"product_type" json:"productType"`
	IsDeleted   bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt   time.Time `bson:"created_at" json:"createDate"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updateDate"`
}

func (p *Product) IsSource() bool {
	return p.ProductType == ProductTypeSource
}
