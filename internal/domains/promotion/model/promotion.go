package model

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Promotion là một campaign giảm giá theo thời gian, scope theo tenant
type Promotion struct {
	ID          uuid.UUID  `bson:"_id" json:"promotionId"`
	CodeName    string     `bson:"code_name" json:"codeName"` // unique
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	StartTime   *time.Time `bson:"start_time" json:"startTime"`
	EndTime     *time.Time `bson:"end_time" json:"endTime"`
	Status      bool       `bson:"status" json:"status"`

	// LimitItems là cap tổng số lượng một khách (theo số điện thoại)
	// được mua trong suốt campaign
	LimitItems int64 `bson:"limit_items" json:"limitItems"`

	TenantID  string    `bson:"tenant_id" json:"tenantId"`
	IsDeleted bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsActive: status bật, chưa xóa, và now nằm trong [start_time, end_time]
func (p *Promotion) IsActive(now time.Time) bool {
	if p == nil || p.IsDeleted || !p.Status {
		return false
	}
	if p.StartTime == nil || p.StartTime.IsZero() || p.StartTime.After(now) {
		return false
	}
	if p.EndTime == nil || p.EndTime.Before(now) {
		return false
	}
	return true
}

// ProductPromotion bind một ProductDetail vào một Promotion
type ProductPromotion struct {
	ID              uuid.UUID            `bson:"_id" json:"productPromotionId"`
	PromotionID     uuid.UUID            `bson:"promotion_id" json:"promotionId"`
	ProductDetailID uuid.UUID            `bson:"product_detail_id" json:"productDetailId"`
	Price           primitive.Decimal128 `bson:"price" json:"price"`     // giá khuyến mãi
	Percent         float64              `bson:"percent" json:"percent"` // % giảm so với giá gốc

	// Invariant: Sold <= QuantityPromotion. Engine này chỉ ĐỌC Sold,
	// việc tăng Sold thuộc về fulfillment flow bên ngoài.
	QuantityPromotion int64 `bson:"quantity_promotion" json:"quantityPromotion"`
	Sold              int64 `bson:"sold" json:"sold"`

	IsDeleted bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Remaining là stock khuyến mãi còn lại
func (pp *ProductPromotion) Remaining() int64 {
	return pp.QuantityPromotion - pp.Sold
}

// PromotionUserLimit track tổng số lượng một (promotion, phone) đã mua.
// Invariant: Amount <= Promotion.LimitItems, enforce bằng conditional
// increment atomic ở repository, không bao giờ decrement trong core này.
type PromotionUserLimit struct {
	ID             uuid.UUID `bson:"_id" json:"id"`
	PromotionID    uuid.UUID `bson:"promotion_id" json:"promotionId"`
	Phone          string    `bson:"phone" json:"phone"`
	Amount         int64     `bson:"amount" json:"amount"`
	LastPurchaseAt time.Time `bson:"last_purchase_at" json:"lastPurchaseAt"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}
