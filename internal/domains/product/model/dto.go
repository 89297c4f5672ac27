package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantDeclaration là một entry trong productExtend JSON blob:
// mô tả một variant mong muốn, vị trí trong mảng align với listImgVariant.
type VariantDeclaration struct {
	Extend VariantFields `json:"extend"`
}

// VariantFields là phần khai báo của một extend variant.
// ID rỗng → create mới; ID có và record còn sống → update.
type VariantFields struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

// ParseVariantDeclarations parse productExtend JSON blob.
// Chuỗi rỗng / "null" → danh sách rỗng (no-op sync).
// JSON hỏng → error, caller map thành validation error TRƯỚC khi upload gì.
func ParseVariantDeclarations(productExtend string) ([]VariantDeclaration, error) {
	trimmed := strings.TrimSpace(productExtend)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var declarations []VariantDeclaration
	if err := json.Unmarshal([]byte(trimmed), &declarations); err != nil {
		return nil, fmt.Errorf("parse variant declarations: %w", err)
	}
	return declarations, nil
}

// ExtendDescriptor là consolidated mô tả cả family, lưu trên source
// product (field product_extend) dưới dạng JSON
type ExtendDescriptor struct {
	Gallery  []string         `json:"gallery"`
	Variants []VariantSummary `json:"variants"`
}

type VariantSummary struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductCode string          `json:"productCode"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

// CreateProductRequest tạo source product mới kèm variants
type CreateProductRequest struct {
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	CategoryID    uuid.UUID `json:"categoryId"`
	ProductExtend string    `json:"productExtend,omitempty"` // JSON blob khai báo variants
	Lang          string    `json:"lang,omitempty"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.CategoryID, validation.Required),
	)
}

// UpdateProductRequest update source product + reconcile variants
type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty"`
	ProductExtend string     `json:"productExtend,omitempty"`
	Lang          string     `json:"lang,omitempty"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		// nil = không đổi; non-nil thì không được rỗng
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Title, validation.Length(0, 255)),
	)
}

// ListProductsFilter cho catalog listing
type ListProductsFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Page       int64
	Limit      int64
}

// CreateDetailRequest tạo một ProductDetail (tenant SKU)
type CreateDetailRequest struct {
	ProductID      uuid.UUID       `json:"productId"`
	TenantID       string          `json:"tenantId"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int64           `json:"quantity"`
	EntryDate      *time.Time      `json:"entryDate,omitempty"`
	ExitDate       *time.Time      `json:"exitDate,omitempty"`
	ExpirationDate *time.Time      `json:"expirationDate,omitempty"`
}

func (r CreateDetailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.TenantID, validation.Required),
		validation.Field(&r.Quantity, validation.Min(int64(0))),
	)
}
