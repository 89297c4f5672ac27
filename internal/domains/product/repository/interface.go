package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/product/model"
)

// ProductRepository data access cho products (cả source lẫn extend variants).
// Find* trả về (nil, nil) khi không có document còn sống match.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByCode(ctx context.Context, productCode string) (*model.Product, error)
	List(ctx context.Context, filter *model.ListProductsFilter) ([]model.Product, int64, error)

	// FindVariant chỉ match product-extend records còn sống
	FindVariant(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListFamily(ctx context.Context, referenceKey string) ([]model.Product, error)

	Create(ctx context.Context, p *model.Product) error
	CreateMany(ctx context.Context, ps []model.Product) error

	// UpsertByID ghi đè toàn bộ fields của một variant theo _id
	UpsertByID(ctx context.Context, p *model.Product) error

	// PruneFamily soft-delete mọi variant cùng reference_key (prefix match)
	// có _id KHÔNG nằm trong keepIDs. Trả về số document bị prune.
	PruneFamily(ctx context.Context, referenceKey string, keepIDs []uuid.UUID, now time.Time) (int64, error)

	// SoftDeleteFamily đánh dấu xóa cả source lẫn variants
	SoftDeleteFamily(ctx context.Context, referenceKey string, now time.Time) (int64, error)
}

// ProductDetailRepository data access cho tenant SKUs
type ProductDetailRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, tenantID string) ([]model.ProductDetail, error)
	Create(ctx context.Context, d *model.ProductDetail) error
	CreateMany(ctx context.Context, ds []model.ProductDetail) error
	Update(ctx context.Context, d *model.ProductDetail) (*model.ProductDetail, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteByProduct(ctx context.Context, productID uuid.UUID, now time.Time) (int64, error)
}
