package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/promotion/model"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/internal/shared/i18n"
)

// -------------------------------------------------------------------
// In-memory fakes
// -------------------------------------------------------------------

type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[uuid.UUID]*model.Promotion
}

func newFakePromoRepo(promos ...*model.Promotion) *fakePromoRepo {
	r := &fakePromoRepo{promos: make(map[uuid.UUID]*model.Promotion)}
	for _, p := range promos {
		r.promos[p.ID] = p
	}
	return r
}

func (r *fakePromoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePromoRepo) FindByCodeName(_ context.Context, codeName string) (*model.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.promos {
		if p.CodeName == codeName && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePromoRepo) ListActive(_ context.Context, _ string, _ time.Time, _, _ int64) ([]model.Promotion, int64, error) {
	return nil, 0, nil
}

func (r *fakePromoRepo) Create(_ context.Context, promo *model.Promotion) (*model.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.promos {
		if p.CodeName == promo.CodeName {
			return nil, nil
		}
	}
	r.promos[promo.ID] = promo
	return promo, nil
}

func (r *fakePromoRepo) Update(_ context.Context, _ uuid.UUID, _ *model.UpdatePromotionRequest) (*model.Promotion, error) {
	return nil, nil
}

func (r *fakePromoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.promos[id]; ok {
		p.IsDeleted = true
	}
	return nil
}

func (r *fakePromoRepo) PruneExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.promos {
		if !p.IsDeleted && p.EndTime != nil && p.EndTime.Before(now) {
			p.IsDeleted = true
			n++
		}
	}
	return n, nil
}

type fakeProductPromoRepo struct {
	rows map[uuid.UUID]*model.ProductPromotion
}

func newFakeProductPromoRepo(rows ...*model.ProductPromotion) *fakeProductPromoRepo {
	r := &fakeProductPromoRepo{rows: make(map[uuid.UUID]*model.ProductPromotion)}
	for _, pp := range rows {
		r.rows[pp.ID] = pp
	}
	return r
}

func (r *fakeProductPromoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductPromotion, error) {
	pp, ok := r.rows[id]
	if !ok || pp.IsDeleted {
		return nil, nil
	}
	cp := *pp
	return &cp, nil
}

func (r *fakeProductPromoRepo) ListByPromotion(_ context.Context, _ uuid.UUID) ([]model.ProductPromotion, error) {
	return nil, nil
}

func (r *fakeProductPromoRepo) Create(_ context.Context, pp *model.ProductPromotion) (*model.ProductPromotion, error) {
	r.rows[pp.ID] = pp
	return pp, nil
}

func (r *fakeProductPromoRepo) Update(_ context.Context, pp *model.ProductPromotion) error {
	r.rows[pp.ID] = pp
	return nil
}

func (r *fakeProductPromoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if pp, ok := r.rows[id]; ok {
		pp.IsDeleted = true
	}
	return nil
}

// fakeUserLimitRepo giữ semantics atomic của mongo impl: increment và
// guard nằm trong cùng một critical section, insert tôn trọng unique index.
type fakeUserLimitRepo struct {
	mu   sync.Mutex
	rows map[string]*model.PromotionUserLimit
}

func newFakeUserLimitRepo() *fakeUserLimitRepo {
	return &fakeUserLimitRepo{rows: make(map[string]*model.PromotionUserLimit)}
}

func limitKey(promotionID uuid.UUID, phone string) string {
	return promotionID.String() + "|" + phone
}

func (r *fakeUserLimitRepo) Find(_ context.Context, promotionID uuid.UUID, phone string) (*model.PromotionUserLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[limitKey(promotionID, phone)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeUserLimitRepo) CreateIfAbsent(_ context.Context, rec *model.PromotionUserLimit) (*model.PromotionUserLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := limitKey(rec.PromotionID, rec.Phone)
	if _, exists := r.rows[key]; exists {
		return nil, nil
	}
	cp := *rec
	r.rows[key] = &cp
	return rec, nil
}

func (r *fakeUserLimitRepo) IncrementWithinCap(_ context.Context, promotionID uuid.UUID, phone string, delta, cap int64, now time.Time) (*model.PromotionUserLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[limitKey(promotionID, phone)]
	if !ok {
		return nil, nil
	}
	if rec.Amount+delta > cap {
		return nil, nil
	}
	rec.Amount += delta
	rec.LastPurchaseAt = now
	rec.UpdatedAt = now
	cp := *rec
	return &cp, nil
}

// -------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func activePromotion(limit int64) *model.Promotion {
	start := testNow.Add(-24 * time.Hour)
	end := testNow.Add(24 * time.Hour)
	return &model.Promotion{
		ID:         uuid.New(),
		CodeName:   "spring-sale",
		Name:       "Spring Sale",
		StartTime:  &start,
		EndTime:    &end,
		Status:     true,
		LimitItems: limit,
		TenantID:   "tenant-1",
	}
}

func bindProduct(promoID uuid.UUID, quantity, sold int64) *model.ProductPromotion {
	return &model.ProductPromotion{
		ID:                uuid.New(),
		PromotionID:       promoID,
		ProductDetailID:   uuid.New(),
		QuantityPromotion: quantity,
		Sold:              sold,
	}
}

func newTestService(promos *fakePromoRepo, products *fakeProductPromoRepo, limits *fakeUserLimitRepo) *eligibilityService {
	return &eligibilityService{
		promos:     promos,
		products:   products,
		userLimits: limits,
		now:        func() time.Time { return testNow },
	}
}

// -------------------------------------------------------------------
// Verification
// -------------------------------------------------------------------

func TestVerifyPromotions_AllValid(t *testing.T) {
	promo := activePromotion(10)
	pp := bindProduct(promo.ID, 100, 20)
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(pp), newFakeUserLimitRepo())

	results, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
		Phone: "0912345678",
		Items: []model.VerifyItem{
			{PromotionID: promo.ID, ProductPromotionID: pp.ID, Amount: 5},
		},
	})

	require.NoError(t, err)
	assert.Empty(t, results, "valid items must not appear in results")
}

func TestVerifyPromotions_AccumulatesAllFailureReasons(t *testing.T) {
	// Promotion hết hạn VÀ stock không đủ: cả hai message phải xuất hiện
	promo := activePromotion(10)
	expired := testNow.Add(-time.Hour)
	promo.EndTime = &expired

	pp := bindProduct(promo.ID, 100, 98) // còn 2
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(pp), newFakeUserLimitRepo())

	results, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
		Phone: "0912345678",
		Items: []model.VerifyItem{
			{PromotionID: promo.ID, ProductPromotionID: pp.ID, Amount: 5},
		},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Valid)
	assert.Contains(t, results[0].Messages, i18n.T("", "promotion.expired"))
	assert.Contains(t, results[0].Messages, i18n.Tf("", "promotion.stock_exceeded", int64(2)))
	assert.Len(t, results[0].Messages, 2)
}

func TestVerifyPromotions_MissingPromotion(t *testing.T) {
	svc := newTestService(newFakePromoRepo(), newFakeProductPromoRepo(), newFakeUserLimitRepo())

	results, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
		Phone: "0912345678",
		Items: []model.VerifyItem{
			{PromotionID: uuid.New(), ProductPromotionID: uuid.New(), Amount: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Messages, i18n.T("", "promotion.not_found"))
	assert.Contains(t, results[0].Messages, i18n.T("", "promotion.product_not_found"))
}

func TestVerifyPromotions_NotStartedYet(t *testing.T) {
	promo := activePromotion(10)
	start := testNow.Add(time.Hour)
	promo.StartTime = &start

	pp := bindProduct(promo.ID, 50, 0)
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(pp), newFakeUserLimitRepo())

	results, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
		Phone: "0912345678",
		Items: []model.VerifyItem{
			{PromotionID: promo.ID, ProductPromotionID: pp.ID, Amount: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{i18n.T("", "promotion.not_started")}, results[0].Messages)
}

func TestVerifyPromotions_ProductBoundToDifferentPromotion(t *testing.T) {
	promo := activePromotion(10)
	other := activePromotion(10)
	other.ID = uuid.New()
	other.CodeName = "other-sale"

	pp := bindProduct(other.ID, 50, 0)
	svc := newTestService(newFakePromoRepo(promo, other), newFakeProductPromoRepo(pp), newFakeUserLimitRepo())

	results, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
		Phone: "0912345678",
		Items: []model.VerifyItem{
			// pp thuộc promotion khác
			{PromotionID: promo.ID, ProductPromotionID: pp.ID, Amount: 1},
		},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Messages, i18n.T("", "promotion.product_not_found"))
}

func TestVerifyPromotions_CumulativeCap(t *testing.T) {
	promo := activePromotion(10)
	pp := bindProduct(promo.ID, 100, 0)
	limits := newFakeUserLimitRepo()
	_, err := limits.CreateIfAbsent(context.Background(), &model.PromotionUserLimit{
		ID: uuid.New(), PromotionID: promo.ID, Phone: "0912345678", Amount: 7,
	})
	require.NoError(t, err)

	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(pp), limits)

	tests := []struct {
		name     string
		amount   int64
		messages []string
	}{
		{
			name:   "exactly reaches cap",
			amount: 3, // 7 + 3 == 10, inclusive boundary passes
		},
		{
			name:     "exceeds cumulative cap",
			amount:   4, // 7 + 4 > 10 nhưng 4 <= 10
			messages: []string{i18n.Tf("", "promotion.limit_cumulative", int64(10))},
		},
		{
			name:     "exceeds per-transaction cap",
			amount:   11, // chỉ báo per-transaction, không double-report
			messages: []string{i18n.Tf("", "promotion.limit_per_transaction", int64(10))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
				Phone: "0912345678",
				Items: []model.VerifyItem{
					{PromotionID: promo.ID, ProductPromotionID: pp.ID, Amount: tt.amount},
				},
			})
			require.NoError(t, err)
			if tt.messages == nil {
				assert.Empty(t, results)
				return
			}
			require.Len(t, results, 1)
			assert.Equal(t, tt.messages, results[0].Messages)
		})
	}
}

func TestVerifyPromotions_DoesNotMutateState(t *testing.T) {
	promo := activePromotion(10)
	pp := bindProduct(promo.ID, 100, 0)
	limits := newFakeUserLimitRepo()
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(pp), limits)

	for i := 0; i < 3; i++ {
		_, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{
			Phone: "0912345678",
			Items: []model.VerifyItem{
				{PromotionID: promo.ID, ProductPromotionID: pp.ID, Amount: 5},
			},
		})
		require.NoError(t, err)
	}

	rec, err := limits.Find(context.Background(), promo.ID, "0912345678")
	require.NoError(t, err)
	assert.Nil(t, rec, "verification must not create usage records")
}

func TestVerifyPromotions_InvalidRequest(t *testing.T) {
	svc := newTestService(newFakePromoRepo(), newFakeProductPromoRepo(), newFakeUserLimitRepo())

	_, err := svc.VerifyPromotions(context.Background(), &model.VerifyRequest{Phone: "123"})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidationFailed, appErr.Code)
}

// -------------------------------------------------------------------
// Reservation
// -------------------------------------------------------------------

func TestCreatePromotionUserLimit_FirstReservation(t *testing.T) {
	promo := activePromotion(10)
	limits := newFakeUserLimitRepo()
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(), limits)

	rec, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: promo.ID,
		Phone:       "0912345678",
		Amount:      4,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.Amount)
	assert.Equal(t, testNow, rec.LastPurchaseAt)
}

func TestCreatePromotionUserLimit_IncrementsExisting(t *testing.T) {
	promo := activePromotion(10)
	limits := newFakeUserLimitRepo()
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(), limits)

	for _, amount := range []int64{4, 3} {
		_, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
			PromotionID: promo.ID,
			Phone:       "0912345678",
			Amount:      amount,
		})
		require.NoError(t, err)
	}

	rec, err := limits.Find(context.Background(), promo.ID, "0912345678")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.Amount)
}

func TestCreatePromotionUserLimit_ExactlyReachesCap(t *testing.T) {
	promo := activePromotion(10)
	limits := newFakeUserLimitRepo()
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(), limits)

	_, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: promo.ID, Phone: "0912345678", Amount: 7,
	})
	require.NoError(t, err)

	// 7 + 3 == 10, boundary inclusive
	rec, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: promo.ID, Phone: "0912345678", Amount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Amount)
}

func TestCreatePromotionUserLimit_RejectsOverCumulativeCap(t *testing.T) {
	promo := activePromotion(10)
	limits := newFakeUserLimitRepo()
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(), limits)

	_, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: promo.ID, Phone: "0912345678", Amount: 7,
	})
	require.NoError(t, err)

	_, err = svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: promo.ID, Phone: "0912345678", Amount: 4,
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeLimitCumulative, appErr.Code)

	// Record giữ nguyên sau reject
	rec, findErr := limits.Find(context.Background(), promo.ID, "0912345678")
	require.NoError(t, findErr)
	assert.Equal(t, int64(7), rec.Amount)
}

func TestCreatePromotionUserLimit_RejectsOverPerTransactionCap(t *testing.T) {
	promo := activePromotion(10)
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(), newFakeUserLimitRepo())

	_, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: promo.ID, Phone: "0912345678", Amount: 11,
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeLimitPerTransaction, appErr.Code)
}

func TestCreatePromotionUserLimit_PromotionNotFound(t *testing.T) {
	svc := newTestService(newFakePromoRepo(), newFakeProductPromoRepo(), newFakeUserLimitRepo())

	_, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
		PromotionID: uuid.New(), Phone: "0912345678", Amount: 1,
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodePromotionNotFound, appErr.Code)
}

// Concurrent reservations cho cùng (promotion, phone) không bao giờ
// đẩy tổng amount vượt cap, dù chạy bao nhiêu goroutine.
func TestCreatePromotionUserLimit_ConcurrentNeverExceedsCap(t *testing.T) {
	promo := activePromotion(10)
	limits := newFakeUserLimitRepo()
	svc := newTestService(newFakePromoRepo(promo), newFakeProductPromoRepo(), limits)

	const workers = 20
	var wg sync.WaitGroup
	var succeeded int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePromotionUserLimit(context.Background(), &model.ReserveLimitRequest{
				PromotionID: promo.ID,
				Phone:       "0912345678",
				Amount:      3,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	rec, err := limits.Find(context.Background(), promo.ID, "0912345678")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.LessOrEqual(t, rec.Amount, promo.LimitItems)
	assert.Equal(t, succeeded*3, rec.Amount)
}
