package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/domains/promotion/model"
	"storefront-backend/internal/domains/promotion/repository"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/internal/shared/i18n"
	"storefront-backend/pkg/logger"
)

// adminService xử lý CRUD cho promotion campaigns và product bindings
type adminService struct {
	promos   repository.PromotionRepository
	products repository.ProductPromotionRepository
}

func NewAdminService(
	promos repository.PromotionRepository,
	products repository.ProductPromotionRepository,
) AdminService {
	return &adminService{
		promos:   promos,
		products: products,
	}
}

func (s *adminService) CreatePromotion(ctx context.Context, req *model.CreatePromotionRequest) (*model.Promotion, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	now := time.Now().UTC()
	promo := &model.Promotion{
		ID:          uuid.New(),
		CodeName:    req.CodeName,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		LimitItems:  req.LimitItems,
		TenantID:    req.TenantID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.promos.Create(ctx, promo)
	if err != nil {
		return nil, fmt.Errorf("create promotion: %w", err)
	}
	if created == nil {
		// code_name đã có, business error, không phải exception
		return nil, apperror.Conflict(apperror.CodeDuplicateCode,
			fmt.Sprintf("promotion code %q already exists", req.CodeName))
	}

	logger.Info("Promotion created", map[string]interface{}{
		"promotion_id": created.ID.String(),
		"code_name":    created.CodeName,
	})
	return created, nil
}

func (s *adminService) UpdatePromotion(ctx context.Context, id uuid.UUID, req *model.UpdatePromotionRequest) (*model.Promotion, error) {
	updated, err := s.promos.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update promotion: %w", err)
	}
	if updated == nil {
		return nil, apperror.NotFound(apperror.CodePromotionNotFound, i18n.T("", "promotion.not_found"))
	}
	return updated, nil
}

func (s *adminService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	if err := s.promos.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}

func (s *adminService) GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	promo, err := s.promos.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if promo == nil {
		return nil, apperror.NotFound(apperror.CodePromotionNotFound, i18n.T("", "promotion.not_found"))
	}
	return promo, nil
}

func (s *adminService) ListActivePromotions(ctx context.Context, tenantID string, page, limit int64) ([]model.Promotion, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.promos.ListActive(ctx, tenantID, time.Now().UTC(), page, limit)
}

func (s *adminService) BindProduct(ctx context.Context, req *model.BindProductRequest) (*model.ProductPromotion, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	promo, err := s.promos.FindByID(ctx, req.PromotionID)
	if err != nil {
		return nil, fmt.Errorf("load promotion: %w", err)
	}
	if promo == nil {
		return nil, apperror.NotFound(apperror.CodePromotionNotFound, i18n.T("", "promotion.not_found"))
	}

	price, err := primitive.ParseDecimal128(req.Price)
	if err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed,
			fmt.Sprintf("invalid price %q", req.Price))
	}

	now := time.Now().UTC()
	pp := &model.ProductPromotion{
		ID:                uuid.New(),
		PromotionID:       req.PromotionID,
		ProductDetailID:   req.ProductDetailID,
		Price:             price,
		Percent:           req.Percent,
		QuantityPromotion: req.QuantityPromotion,
		Sold:              0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.products.Create(ctx, pp)
	if err != nil {
		return nil, fmt.Errorf("bind product: %w", err)
	}
	if created == nil {
		return nil, apperror.Conflict(apperror.CodeDuplicateCode,
			"product detail is already bound to this promotion")
	}
	return created, nil
}

func (s *adminService) UnbindProduct(ctx context.Context, productPromotionID uuid.UUID) error {
	if err := s.products.SoftDelete(ctx, productPromotionID); err != nil {
		return fmt.Errorf("unbind product: %w", err)
	}
	return nil
}

func (s *adminService) ListPromotionProducts(ctx context.Context, promotionID uuid.UUID) ([]model.ProductPromotion, error) {
	return s.products.ListByPromotion(ctx, promotionID)
}
