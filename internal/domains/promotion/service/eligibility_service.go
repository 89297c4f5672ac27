package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/promotion/model"
	"storefront-backend/internal/domains/promotion/repository"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/internal/shared/i18n"
)

type eligibilityService struct {
	promos     repository.PromotionRepository
	products   repository.ProductPromotionRepository
	userLimits repository.UserLimitRepository
	now        func() time.Time
}

func NewEligibilityService(
	promos repository.PromotionRepository,
	products repository.ProductPromotionRepository,
	userLimits repository.UserLimitRepository,
) EligibilityService {
	return &eligibilityService{
		promos:     promos,
		products:   products,
		userLimits: userLimits,
		now:        time.Now,
	}
}

// -------------------------------------------------------------------
// VERIFICATION (read-only)
// -------------------------------------------------------------------

// VerifyPromotions đánh giá từng item độc lập với 3 checks:
// time/state, stock còn lại, và per-user cap. Mọi check đều chạy:
// một item fail nhiều check thì nhận đủ message của từng check.
// Không mutate bất kỳ state nào.
func (s *eligibilityService) VerifyPromotions(ctx context.Context, req *model.VerifyRequest) ([]model.VerifyResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	lang := req.Lang
	now := s.now()

	results := make([]model.VerifyResult, 0)
	for _, item := range req.Items {
		messages, err := s.verifyItem(ctx, req.Phone, lang, now, item)
		if err != nil {
			return nil, fmt.Errorf("verify item %s: %w", item.ProductPromotionID, err)
		}
		if len(messages) > 0 {
			results = append(results, model.VerifyResult{
				PromotionID:        item.PromotionID,
				ProductPromotionID: item.ProductPromotionID,
				Valid:              false,
				Messages:           messages,
			})
		}
	}

	return results, nil
}

func (s *eligibilityService) verifyItem(ctx context.Context, phone, lang string, now time.Time, item model.VerifyItem) ([]string, error) {
	var messages []string

	// Check 1: time/state validity
	promo, err := s.promos.FindByID(ctx, item.PromotionID)
	if err != nil {
		return nil, err
	}
	messages = append(messages, s.checkTimeWindow(promo, lang, now)...)

	// Check 2: stock còn lại trên ProductPromotion row
	stockMsgs, err := s.checkStock(ctx, lang, item)
	if err != nil {
		return nil, err
	}
	messages = append(messages, stockMsgs...)

	// Check 3: per-user cap (chỉ khi promotion tồn tại để biết limit)
	if promo != nil {
		capMsgs, err := s.checkUserCap(ctx, phone, lang, promo, item.Amount)
		if err != nil {
			return nil, err
		}
		messages = append(messages, capMsgs...)
	}

	return messages, nil
}

func (s *eligibilityService) checkTimeWindow(promo *model.Promotion, lang string, now time.Time) []string {
	if promo == nil || promo.IsDeleted {
		return []string{i18n.T(lang, "promotion.not_found")}
	}

	var messages []string
	if !promo.Status {
		messages = append(messages, i18n.T(lang, "promotion.inactive"))
	}
	if promo.EndTime == nil || promo.EndTime.Before(now) {
		messages = append(messages, i18n.T(lang, "promotion.expired"))
	}
	if promo.StartTime == nil || promo.StartTime.IsZero() || promo.StartTime.After(now) {
		messages = append(messages, i18n.T(lang, "promotion.not_started"))
	}
	return messages
}

func (s *eligibilityService) checkStock(ctx context.Context, lang string, item model.VerifyItem) ([]string, error) {
	pp, err := s.products.FindByID(ctx, item.ProductPromotionID)
	if err != nil {
		return nil, err
	}
	if pp == nil || pp.PromotionID != item.PromotionID {
		return []string{i18n.T(lang, "promotion.product_not_found")}, nil
	}
	if pp.Remaining() < item.Amount {
		return []string{i18n.Tf(lang, "promotion.stock_exceeded", pp.Remaining())}, nil
	}
	return nil, nil
}

// checkUserCap: boundary semantics là inclusive, amount == limit pass,
// chỉ strictly greater mới fail (cả hai check sites).
func (s *eligibilityService) checkUserCap(ctx context.Context, phone, lang string, promo *model.Promotion, amount int64) ([]string, error) {
	var messages []string

	if amount > promo.LimitItems {
		messages = append(messages, i18n.Tf(lang, "promotion.limit_per_transaction", promo.LimitItems))
	}

	existing, err := s.userLimits.Find(ctx, promo.ID, phone)
	if err != nil {
		return nil, err
	}

	var used int64
	if existing != nil {
		used = existing.Amount
	}
	if used+amount > promo.LimitItems && amount <= promo.LimitItems {
		messages = append(messages, i18n.Tf(lang, "promotion.limit_cumulative", promo.LimitItems))
	}

	return messages, nil
}

// -------------------------------------------------------------------
// RESERVATION
// -------------------------------------------------------------------

// CreatePromotionUserLimit reserve usage cho (promotion, phone).
//
// Flow:
// 1. Load promotion, missing là business error
// 2. amount > limit_items → business error, bất kể usage trước đó
// 3. Atomic conditional increment: chỉ thành công khi
//    existing.amount + amount <= limit_items (guard trong filter)
// 4. Chưa có record → insert với unique index; race với insert khác
//    → retry increment path một lần
//
// Không có cửa sổ read-then-write: hai reservation đồng thời cho cùng
// (promotion, phone) không thể cùng vượt cap.
func (s *eligibilityService) CreatePromotionUserLimit(ctx context.Context, req *model.ReserveLimitRequest) (*model.PromotionUserLimit, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	lang := req.Lang
	now := s.now()

	// Step 1: promotion phải tồn tại
	promo, err := s.promos.FindByID(ctx, req.PromotionID)
	if err != nil {
		return nil, fmt.Errorf("load promotion: %w", err)
	}
	if promo == nil {
		return nil, apperror.NotFound(apperror.CodePromotionNotFound, i18n.T(lang, "promotion.not_found"))
	}

	// Step 2: per-transaction cap, độc lập với usage trước đó
	if req.Amount > promo.LimitItems {
		return nil, apperror.BadRequest(apperror.CodeLimitPerTransaction,
			i18n.Tf(lang, "promotion.limit_per_transaction", promo.LimitItems))
	}

	// Step 3: increment atomic nếu record đã tồn tại
	updated, err := s.tryIncrement(ctx, req, promo, now)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		return updated, nil
	}

	// Step 4: chưa có record → tạo mới
	rec := &model.PromotionUserLimit{
		ID:             uuid.New(),
		PromotionID:    req.PromotionID,
		Phone:          req.Phone,
		Amount:         req.Amount,
		LastPurchaseAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := s.userLimits.CreateIfAbsent(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create user limit: %w", err)
	}
	if created != nil {
		return created, nil
	}

	// Insert thua race với một reservation khác → thử increment lần nữa
	updated, err = s.tryIncrement(ctx, req, promo, now)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.BadRequest(apperror.CodeLimitCumulative,
			i18n.Tf(lang, "promotion.limit_cumulative", promo.LimitItems))
	}
	return updated, nil
}

// tryIncrement phân biệt "record chưa tồn tại" (nil, nil) với
// "guard fail" (cumulative cap error). Record giữ nguyên khi guard fail.
func (s *eligibilityService) tryIncrement(ctx context.Context, req *model.ReserveLimitRequest, promo *model.Promotion, now time.Time) (*model.PromotionUserLimit, error) {
	updated, err := s.userLimits.IncrementWithinCap(ctx, req.PromotionID, req.Phone, req.Amount, promo.LimitItems, now)
	if err != nil {
		return nil, fmt.Errorf("increment user limit: %w", err)
	}
	if updated != nil {
		return updated, nil
	}

	existing, err := s.userLimits.Find(ctx, req.PromotionID, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("load user limit: %w", err)
	}
	if existing != nil {
		return nil, apperror.BadRequest(apperror.CodeLimitCumulative,
			i18n.Tf(req.Lang, "promotion.limit_cumulative", promo.LimitItems))
	}
	return nil, nil
}
