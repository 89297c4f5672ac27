package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/infrastructure/database"
)

const (
	productCollection       = "products"
	productDetailCollection = "product_details"
)

// ============================================================
// PRODUCT
// ============================================================

type productRepository struct {
	store *database.Store[model.Product]
}

func NewProductRepository(db *database.MongoDB) ProductRepository {
	return &productRepository{
		store: database.NewStore[model.Product](db.Database, productCollection),
	}
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.store.GetOne(ctx, bson.M{"slug": slug, "is_deleted": false})
}

func (r *productRepository) FindByCode(ctx context.Context, productCode string) (*model.Product, error) {
	return r.store.GetOne(ctx, bson.M{"product_code": productCode, "is_deleted": false})
}

func (r *productRepository) List(ctx context.Context, filter *model.ListProductsFilter) ([]model.Product, int64, error) {
	query := bson.M{
		"is_deleted":   false,
		"product_type": model.ProductTypeSource,
	}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}
	if filter.Search != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	res, err := r.store.GetMany(ctx, query, &database.PageOptions{
		Sort:  bson.D{{Key: "created_at", Value: -1}},
		Skip:  (page - 1) * limit,
		Limit: limit,
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Data, res.Total, nil
}

func (r *productRepository) FindVariant(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.store.GetOne(ctx, bson.M{
		"_id":          id,
		"product_type": model.ProductTypeExtend,
		"is_deleted":   false,
	})
}

func (r *productRepository) ListFamily(ctx context.Context, referenceKey string) ([]model.Product, error) {
	res, err := r.store.GetMany(ctx, bson.M{
		"reference_key": referenceKey,
		"is_deleted":    false,
	}, &database.PageOptions{Sort: bson.D{{Key: "created_at", Value: 1}}})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.store.Create(ctx, p, nil)
	return err
}

func (r *productRepository) CreateMany(ctx context.Context, ps []model.Product) error {
	return r.store.CreateMany(ctx, ps)
}

// UpsertByID replace toàn bộ document theo _id (giữ nguyên created_at của doc cũ
// vì engine đã copy nó sang record update)
func (r *productRepository) UpsertByID(ctx context.Context, p *model.Product) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.store.Collection().ReplaceOne(ctx, bson.M{"_id": p.ID}, p, opts)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

// PruneFamily là bước "family prune" sau variant sync: mọi extend variant
// cùng reference_key mà không còn trong declared set bị soft-delete.
func (r *productRepository) PruneFamily(ctx context.Context, referenceKey string, keepIDs []uuid.UUID, now time.Time) (int64, error) {
	if keepIDs == nil {
		keepIDs = []uuid.UUID{}
	}
	filter := bson.M{
		"reference_key": bson.M{"$regex": "^" + regexp.QuoteMeta(referenceKey)},
		"product_type":  model.ProductTypeExtend,
		"is_deleted":    false,
		"_id":           bson.M{"$nin": keepIDs},
	}
	return r.store.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"is_deleted": true, "updated_at": now},
	})
}

func (r *productRepository) SoftDeleteFamily(ctx context.Context, referenceKey string, now time.Time) (int64, error) {
	return r.store.UpdateMany(ctx,
		bson.M{"reference_key": referenceKey, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": now}},
	)
}

// ============================================================
// PRODUCT DETAIL
// ============================================================

type productDetailRepository struct {
	store *database.Store[model.ProductDetail]
}

func NewProductDetailRepository(db *database.MongoDB) ProductDetailRepository {
	return &productDetailRepository{
		store: database.NewStore[model.ProductDetail](db.Database, productDetailCollection),
	}
}

func (r *productDetailRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *productDetailRepository) ListByProduct(ctx context.Context, productID uuid.UUID, tenantID string) ([]model.ProductDetail, error) {
	filter := bson.M{"product_id": productID, "is_deleted": false}
	if tenantID != "" {
		filter["tenant_id"] = tenantID
	}
	res, err := r.store.GetMany(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *productDetailRepository) Create(ctx context.Context, d *model.ProductDetail) error {
	_, err := r.store.Create(ctx, d, nil)
	return err
}

func (r *productDetailRepository) CreateMany(ctx context.Context, ds []model.ProductDetail) error {
	return r.store.CreateMany(ctx, ds)
}

func (r *productDetailRepository) Update(ctx context.Context, d *model.ProductDetail) (*model.ProductDetail, error) {
	return r.store.Update(ctx, bson.M{"_id": d.ID, "is_deleted": false}, bson.M{
		"price":           d.Price,
		"quantity":        d.Quantity,
		"entry_date":      d.EntryDate,
		"exit_date":       d.ExitDate,
		"expiration_date": d.ExpirationDate,
	})
}

func (r *productDetailRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"is_deleted": true})
	return err
}

func (r *productDetailRepository) SoftDeleteByProduct(ctx context.Context, productID uuid.UUID, now time.Time) (int64, error) {
	return r.store.UpdateMany(ctx,
		bson.M{"product_id": productID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": now}},
	)
}
