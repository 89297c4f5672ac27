package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/infrastructure/storage"
)

// ProductService là surface cho catalog + variant synchronization.
// gallery: ảnh chung của source product. variantImages: positional theo
// declared variant list, nil entry = variant đó không có ảnh mới.
type ProductService interface {
	CreateProduct(ctx context.Context, req *model.CreateProductRequest, gallery []storage.File, variantImages []*storage.File, tenantID string) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest, gallery []storage.File, variantImages []*storage.File, tenantID string) (*model.Product, error)

	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListProducts(ctx context.Context, filter *model.ListProductsFilter) ([]model.Product, int64, error)
	ListFamily(ctx context.Context, id uuid.UUID) ([]model.Product, error)

	// DeleteProduct soft-delete cả family (source + variants + details)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// DetailService quản lý tenant SKUs
type DetailService interface {
	CreateDetail(ctx context.Context, req *model.CreateDetailRequest) (*model.ProductDetail, error)
	BatchCreateDetails(ctx context.Context, reqs []*model.CreateDetailRequest) (int, error)

	// ImportDetails đọc xlsx (product_code | tenant_id | price | quantity)
	// và batch-create trong unit of work
	ImportDetails(ctx context.Context, r io.Reader) (int, error)

	ListDetails(ctx context.Context, productID uuid.UUID, tenantID string) ([]model.ProductDetail, error)
	DeleteDetail(ctx context.Context, id uuid.UUID) error
}
