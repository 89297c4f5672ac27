package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/promotion/model"
)

// PromotionRepository định nghĩa data access cho promotion campaigns.
// Mọi Find* trả về (nil, nil) khi không có document match.
type PromotionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	FindByCodeName(ctx context.Context, codeName string) (*model.Promotion, error)
	ListActive(ctx context.Context, tenantID string, now time.Time, page, limit int64) ([]model.Promotion, int64, error)

	// Create trả về nil (không lỗi) nếu code_name đã tồn tại
	Create(ctx context.Context, promo *model.Promotion) (*model.Promotion, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePromotionRequest) (*model.Promotion, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// PruneExpired soft-delete mọi promotion có end_time < now, trả về matched count
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProductPromotionRepository quản lý binding ProductDetail ↔ Promotion
type ProductPromotionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductPromotion, error)
	ListByPromotion(ctx context.Context, promotionID uuid.UUID) ([]model.ProductPromotion, error)
	Create(ctx context.Context, pp *model.ProductPromotion) (*model.ProductPromotion, error)
	Update(ctx context.Context, pp *model.ProductPromotion) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// UserLimitRepository track cumulative purchase amount theo (promotion, phone)
type UserLimitRepository interface {
	Find(ctx context.Context, promotionID uuid.UUID, phone string) (*model.PromotionUserLimit, error)

	// CreateIfAbsent insert record đầu tiên cho (promotion, phone);
	// trả về nil nếu đã có record (caller chuyển sang increment path)
	CreateIfAbsent(ctx context.Context, rec *model.PromotionUserLimit) (*model.PromotionUserLimit, error)

	// IncrementWithinCap tăng amount CHỈ KHI amount + delta <= cap,
	// atomic trong một findAndModify. Trả về nil nếu không có record
	// match hoặc guard fail, caller phân biệt bằng Find.
	IncrementWithinCap(ctx context.Context, promotionID uuid.UUID, phone string, delta, cap int64, now time.Time) (*model.PromotionUserLimit, error)
}
