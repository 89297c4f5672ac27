package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/infrastructure/database"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	Upsert(ctx context.Context, item *model.CartItem) (*model.CartItem, error)
	Remove(ctx context.Context, userID, productDetailID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartRepository struct {
	store *database.Store[model.CartItem]
}

func NewCartRepository(db *database.MongoDB) CartRepository {
	return &cartRepository{store: database.NewStore[model.CartItem](db.Database, "cart_items")}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	res, err := r.store.GetMany(ctx, bson.M{"user_id": userID}, &database.PageOptions{
		Sort: bson.D{{Key: "created_at", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Upsert: item đã có → replace quantity; chưa có → insert
func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem) (*model.CartItem, error) {
	now := time.Now().UTC()
	updated, err := r.store.FindOneAndUpdate(ctx,
		bson.M{"user_id": item.UserID, "product_detail_id": item.ProductDetailID},
		bson.M{"$set": bson.M{"quantity": item.Quantity, "updated_at": now}},
	)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		return updated, nil
	}
	return r.store.Create(ctx, item, bson.M{
		"user_id":           item.UserID,
		"product_detail_id": item.ProductDetailID,
	})
}

func (r *cartRepository) Remove(ctx context.Context, userID, productDetailID uuid.UUID) error {
	_, err := r.store.Delete(ctx, bson.M{"user_id": userID, "product_detail_id": productDetailID})
	return err
}

func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.store.DeleteMany(ctx, bson.M{"user_id": userID})
}
