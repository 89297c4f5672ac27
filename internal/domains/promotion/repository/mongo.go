package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/domains/promotion/model"
	"storefront-backend/internal/infrastructure/database"
)

const (
	promotionCollection        = "promotions"
	productPromotionCollection = "product_promotions"
	userLimitCollection        = "promotion_user_limits"
)

// ============================================================
// PROMOTION
// ============================================================

type promotionRepository struct {
	store *database.Store[model.Promotion]
}

func NewPromotionRepository(db *database.MongoDB) PromotionRepository {
	return &promotionRepository{
		store: database.NewStore[model.Promotion](db.Database, promotionCollection),
	}
}

// EnsurePromotionIndexes tạo unique index trên code_name và compound index
// cho user limits. Gọi một lần lúc khởi động.
func EnsurePromotionIndexes(ctx context.Context, db *database.MongoDB) error {
	_, err := db.Database.Collection(promotionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create code_name index: %w", err)
	}

	_, err = db.Database.Collection(userLimitCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "promotion_id", Value: 1}, {Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user limit index: %w", err)
	}
	return nil
}

func (r *promotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *promotionRepository) FindByCodeName(ctx context.Context, codeName string) (*model.Promotion, error) {
	return r.store.GetOne(ctx, bson.M{"code_name": codeName, "is_deleted": false})
}

func (r *promotionRepository) ListActive(ctx context.Context, tenantID string, now time.Time, page, limit int64) ([]model.Promotion, int64, error) {
	filter := bson.M{
		"is_deleted": false,
		"status":     true,
		"start_time": bson.M{"$lte": now},
		"end_time":   bson.M{"$gte": now},
	}
	if tenantID != "" {
		filter["tenant_id"] = tenantID
	}

	res, err := r.store.GetMany(ctx, filter, &database.PageOptions{
		Sort:  bson.D{{Key: "start_time", Value: -1}},
		Skip:  (page - 1) * limit,
		Limit: limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Data, res.Total, nil
}

func (r *promotionRepository) Create(ctx context.Context, promo *model.Promotion) (*model.Promotion, error) {
	return r.store.Create(ctx, promo, bson.M{"code_name": promo.CodeName})
}

func (r *promotionRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePromotionRequest) (*model.Promotion, error) {
	patch := bson.M{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.StartTime != nil {
		patch["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		patch["end_time"] = *req.EndTime
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if req.LimitItems != nil {
		patch["limit_items"] = *req.LimitItems
	}

	return r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, patch)
}

func (r *promotionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"is_deleted": true})
	return err
}

func (r *promotionRepository) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.store.UpdateMany(ctx,
		bson.M{"is_deleted": false, "end_time": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": now}},
	)
}

// ============================================================
// PRODUCT PROMOTION
// ============================================================

type productPromotionRepository struct {
	store *database.Store[model.ProductPromotion]
}

func NewProductPromotionRepository(db *database.MongoDB) ProductPromotionRepository {
	return &productPromotionRepository{
		store: database.NewStore[model.ProductPromotion](db.Database, productPromotionCollection),
	}
}

func (r *productPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductPromotion, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *productPromotionRepository) ListByPromotion(ctx context.Context, promotionID uuid.UUID) ([]model.ProductPromotion, error) {
	res, err := r.store.GetMany(ctx, bson.M{"promotion_id": promotionID, "is_deleted": false}, nil)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *productPromotionRepository) Create(ctx context.Context, pp *model.ProductPromotion) (*model.ProductPromotion, error) {
	// Một product detail chỉ bind một lần vào một promotion
	return r.store.Create(ctx, pp, bson.M{
		"promotion_id":      pp.PromotionID,
		"product_detail_id": pp.ProductDetailID,
		"is_deleted":        false,
	})
}

func (r *productPromotionRepository) Update(ctx context.Context, pp *model.ProductPromotion) error {
	_, err := r.store.Update(ctx, bson.M{"_id": pp.ID, "is_deleted": false}, bson.M{
		"price":              pp.Price,
		"percent":            pp.Percent,
		"quantity_promotion": pp.QuantityPromotion,
	})
	return err
}

func (r *productPromotionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"is_deleted": true})
	return err
}

// ============================================================
// PROMOTION USER LIMIT
// ============================================================

type userLimitRepository struct {
	store *database.Store[model.PromotionUserLimit]
}

func NewUserLimitRepository(db *database.MongoDB) UserLimitRepository {
	return &userLimitRepository{
		store: database.NewStore[model.PromotionUserLimit](db.Database, userLimitCollection),
	}
}

func (r *userLimitRepository) Find(ctx context.Context, promotionID uuid.UUID, phone string) (*model.PromotionUserLimit, error) {
	return r.store.GetOne(ctx, bson.M{"promotion_id": promotionID, "phone": phone})
}

func (r *userLimitRepository) CreateIfAbsent(ctx context.Context, rec *model.PromotionUserLimit) (*model.PromotionUserLimit, error) {
	// Unique index (promotion_id, phone) chặn race giữa check và insert
	return r.store.Create(ctx, rec, bson.M{"promotion_id": rec.PromotionID, "phone": rec.Phone})
}

// IncrementWithinCap là atomic guard cho cumulative cap:
// filter dùng $expr để chỉ match khi amount + delta <= cap,
// nên hai reservation đồng thời không thể cùng vượt limit.
func (r *userLimitRepository) IncrementWithinCap(ctx context.Context, promotionID uuid.UUID, phone string, delta, cap int64, now time.Time) (*model.PromotionUserLimit, error) {
	filter := bson.M{
		"promotion_id": promotionID,
		"phone":        phone,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$amount", delta}},
				cap,
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"amount": delta},
		"$set": bson.M{"last_purchase_at": now, "updated_at": now},
	}

	return r.store.FindOneAndUpdate(ctx, filter, update)
}
