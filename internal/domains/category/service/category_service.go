package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"storefront-backend/internal/domains/category/model"
	"storefront-backend/internal/domains/category/repository"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/internal/shared/i18n"
	"storefront-backend/internal/shared/utils"
)

type CategoryService interface {
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListCategories(ctx context.Context, groupID *uuid.UUID) ([]model.Category, error)
	CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListGroups(ctx context.Context) ([]model.CategoryGroup, error)
	CreateGroup(ctx context.Context, name string, sortOrder int) (*model.CategoryGroup, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
	groups     repository.GroupRepository
}

func NewCategoryService(categories repository.CategoryRepository, groups repository.GroupRepository) CategoryService {
	return &categoryService{categories: categories, groups: groups}
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, apperror.NotFound(apperror.CodeCategoryNotFound, i18n.T("", "category.not_found"))
	}
	return c, nil
}

func (s *categoryService) ListCategories(ctx context.Context, groupID *uuid.UUID) ([]model.Category, error) {
	return s.categories.List(ctx, groupID)
}

func (s *categoryService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:              uuid.New(),
		CategoryGroupID: req.CategoryGroupID,
		Name:            req.Name,
		Slug:            utils.GenerateSlug(req.Name),
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.categories.Create(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if created == nil {
		return nil, apperror.Conflict(apperror.CodeDuplicateCode,
			fmt.Sprintf("category %q already exists", category.Slug))
	}
	return created, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error) {
	patch := bson.M{}
	if req.Name != nil {
		patch["name"] = *req.Name
		patch["slug"] = utils.GenerateSlug(*req.Name)
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.CategoryGroupID != nil {
		patch["category_group_id"] = *req.CategoryGroupID
	}

	updated, err := s.categories.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if updated == nil {
		return nil, apperror.NotFound(apperror.CodeCategoryNotFound, i18n.T("", "category.not_found"))
	}
	return updated, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.SoftDelete(ctx, id)
}

func (s *categoryService) ListGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	return s.groups.List(ctx)
}

func (s *categoryService) CreateGroup(ctx context.Context, name string, sortOrder int) (*model.CategoryGroup, error) {
	if name == "" {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, "group name is required")
	}

	now := time.Now().UTC()
	group := &model.CategoryGroup{
		ID:        uuid.New(),
		Name:      name,
		Slug:      utils.GenerateSlug(name),
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.groups.Create(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("create category group: %w", err)
	}
	if created == nil {
		return nil, apperror.Conflict(apperror.CodeDuplicateCode,
			fmt.Sprintf("category group %q already exists", group.Slug))
	}
	return created, nil
}

func (s *categoryService) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	return s.groups.SoftDelete(ctx, id)
}
