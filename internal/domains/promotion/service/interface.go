package service

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/promotion/model"
)

// EligibilityService là engine verify + reserve purchase limits
type EligibilityService interface {
	// VerifyPromotions là read-only dry run: đánh giá cả 3 checks cho
	// từng item, trả về item KHÔNG hợp lệ kèm toàn bộ lý do
	VerifyPromotions(ctx context.Context, req *model.VerifyRequest) ([]model.VerifyResult, error)

	// CreatePromotionUserLimit reserve purchase-limit usage một cách atomic
	CreatePromotionUserLimit(ctx context.Context, req *model.ReserveLimitRequest) (*model.PromotionUserLimit, error)
}

// AdminService là CRUD surface cho promotion campaigns
type AdminService interface {
	CreatePromotion(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error)
	UpdatePromotion(ctx context.Context, id uuid.UUID, req *model.UpdatePromotionRequest) (*model.Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
	GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	ListActivePromotions(ctx context.Context, tenantID string, page, limit int64) ([]model.Promotion, int64, error)

	BindProduct(ctx context.Context, req *model.BindProductRequest) (*model.ProductPromotion, error)
	UnbindProduct(ctx context.Context, productPromotionID uuid.UUID) error
	ListPromotionProducts(ctx context.Context, promotionID uuid.UUID) ([]model.ProductPromotion, error)
}
