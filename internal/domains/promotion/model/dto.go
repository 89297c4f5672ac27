package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// VerifyItem là một purchase intent trong batch verification
type VerifyItem struct {
	PromotionID        uuid.UUID `json:"promotionId"`
	ProductPromotionID uuid.UUID `json:"productPromotionId"`
	Amount             int64     `json:"amount"`
}

// VerifyRequest là input của verification operation (read-only dry run)
type VerifyRequest struct {
	Phone string       `json:"phone"`
	Lang  string       `json:"lang,omitempty"`
	Items []VerifyItem `json:"items"`
}

func (r VerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Phone, validation.Required, validation.Length(8, 15)),
		validation.Field(&r.Items, validation.Required),
	)
}

// VerifyResult báo cáo một item KHÔNG hợp lệ kèm toàn bộ lý do.
// Items hợp lệ không xuất hiện trong kết quả, mảng rỗng nghĩa là tất cả pass.
type VerifyResult struct {
	PromotionID        uuid.UUID `json:"promotionId"`
	ProductPromotionID uuid.UUID `json:"productPromotionId"`
	Valid              bool      `json:"valid"`
	Messages           []string  `json:"messages"`
}

// ReserveLimitRequest là input của reservation operation
type ReserveLimitRequest struct {
	PromotionID uuid.UUID `json:"promotionId"`
	Phone       string    `json:"phone"`
	Amount      int64     `json:"amount"`
	Lang        string    `json:"lang,omitempty"`
}

func (r ReserveLimitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PromotionID, validation.Required),
		validation.Field(&r.Phone, validation.Required, validation.Length(8, 15)),
		validation.Field(&r.Amount, validation.Required, validation.Min(int64(1))),
	)
}

// CreatePromotionRequest cho admin flow
type CreatePromotionRequest struct {
	CodeName    string     `json:"codeName"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Status      bool       `json:"status"`
	LimitItems  int64      `json:"limitItems"`
	TenantID    string     `json:"tenantId"`
}

func (r CreatePromotionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CodeName, validation.Required, validation.Length(2, 64)),
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.StartTime, validation.Required),
		validation.Field(&r.EndTime, validation.Required),
		validation.Field(&r.LimitItems, validation.Min(int64(0))),
	)
}

// UpdatePromotionRequest: chỉ field non-nil được apply
type UpdatePromotionRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Status      *bool      `json:"status,omitempty"`
	LimitItems  *int64     `json:"limitItems,omitempty"`
}

// BindProductRequest gắn một ProductDetail vào promotion
type BindProductRequest struct {
	PromotionID       uuid.UUID `json:"promotionId"`
	ProductDetailID   uuid.UUID `json:"productDetailId"`
	Price             string    `json:"price"`
	Percent           float64   `json:"percent"`
	QuantityPromotion int64     `json:"quantityPromotion"`
}

func (r BindProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PromotionID, validation.Required),
		validation.Field(&r.ProductDetailID, validation.Required),
		validation.Field(&r.QuantityPromotion, validation.Min(int64(0))),
	)
}
