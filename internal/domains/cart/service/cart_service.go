package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/repository"
	productRepo "storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/shared/apperror"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	UpsertItem(ctx context.Context, req *model.UpsertCartItemRequest) (*model.CartItem, error)
	RemoveItem(ctx context.Context, userID, productDetailID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	carts   repository.CartRepository
	details productRepo.ProductDetailRepository
}

func NewCartService(carts repository.CartRepository, details productRepo.ProductDetailRepository) CartService {
	return &cartService{carts: carts, details: details}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	return s.carts.ListByUser(ctx, userID)
}

func (s *cartService) UpsertItem(ctx context.Context, req *model.UpsertCartItemRequest) (*model.CartItem, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	// Product detail phải còn sống
	detail, err := s.details.FindByID(ctx, req.ProductDetailID)
	if err != nil {
		return nil, fmt.Errorf("load product detail: %w", err)
	}
	if detail == nil {
		return nil, apperror.NotFound(apperror.CodeProductDetailNotFound, "product detail not found")
	}

	now := time.Now().UTC()
	item := &model.CartItem{
		ID:              uuid.New(),
		UserID:          req.UserID,
		ProductDetailID: req.ProductDetailID,
		Quantity:        req.Quantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	saved, err := s.carts.Upsert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	if saved == nil {
		// Race hiếm giữa update-miss và insert; retry một lần
		saved, err = s.carts.Upsert(ctx, item)
		if err != nil || saved == nil {
			return nil, fmt.Errorf("upsert cart item retry: %w", err)
		}
	}
	return saved, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productDetailID uuid.UUID) error {
	return s.carts.Remove(ctx, userID, productDetailID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := s.carts.Clear(ctx, userID)
	return err
}
