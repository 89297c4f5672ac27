package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"storefront-backend/internal/domains/wishlist/model"
	"storefront-backend/internal/infrastructure/database"
)

type WishlistRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)
	// Add trả về nil khi (user, product) đã tồn tại
	Add(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistRepository struct {
	store *database.Store[model.WishlistItem]
}

func NewWishlistRepository(db *database.MongoDB) WishlistRepository {
	return &wishlistRepository{store: database.NewStore[model.WishlistItem](db.Database, "wishlist_items")}
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	res, err := r.store.GetMany(ctx, bson.M{"user_id": userID}, &database.PageOptions{
		Sort: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *wishlistRepository) Add(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error) {
	return r.store.Create(ctx, item, bson.M{"user_id": item.UserID, "product_id": item.ProductID})
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.store.Delete(ctx, bson.M{"user_id": userID, "product_id": productID})
	return err
}
