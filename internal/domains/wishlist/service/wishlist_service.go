package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	productRepo "storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/domains/wishlist/model"
	"storefront-backend/internal/domains/wishlist/repository"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/internal/shared/i18n"
)

type WishlistService interface {
	GetWishlist(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*model.WishlistItem, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
}

type wishlistService struct {
	wishlists repository.WishlistRepository
	products  productRepo.ProductRepository
}

func NewWishlistService(wishlists repository.WishlistRepository, products productRepo.ProductRepository) WishlistService {
	return &wishlistService{wishlists: wishlists, products: products}
}

func (s *wishlistService) GetWishlist(ctx context.Context, userID uuid.UUID) ([]model.WishlistItem, error) {
	return s.wishlists.ListByUser(ctx, userID)
}

func (s *wishlistService) AddItem(ctx context.Context, userID, productID uuid.UUID) (*model.WishlistItem, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, i18n.T("", "product.not_found"))
	}

	item := &model.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.wishlists.Add(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("add wishlist item: %w", err)
	}
	if created == nil {
		// Đã có trong wishlist, idempotent
		return item, nil
	}
	return created, nil
}

func (s *wishlistService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlists.Remove(ctx, userID, productID)
}
