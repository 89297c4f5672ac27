package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"storefront-backend/internal/domains/category/model"
	"storefront-backend/internal/infrastructure/database"
)

type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, groupID *uuid.UUID) ([]model.Category, error)
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch bson.M) (*model.Category, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type GroupRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.CategoryGroup, error)
	List(ctx context.Context) ([]model.CategoryGroup, error)
	Create(ctx context.Context, g *model.CategoryGroup) (*model.CategoryGroup, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	store *database.Store[model.Category]
}

func NewCategoryRepository(db *database.MongoDB) CategoryRepository {
	return &categoryRepository{store: database.NewStore[model.Category](db.Database, "categories")}
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.store.GetOne(ctx, bson.M{"slug": slug, "is_deleted": false})
}

func (r *categoryRepository) List(ctx context.Context, groupID *uuid.UUID) ([]model.Category, error) {
	filter := bson.M{"is_deleted": false}
	if groupID != nil {
		filter["category_group_id"] = *groupID
	}
	res, err := r.store.GetMany(ctx, filter, &database.PageOptions{Sort: bson.D{{Key: "name", Value: 1}}})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	// Slug unique trong các category còn sống
	return r.store.Create(ctx, c, bson.M{"slug": c.Slug, "is_deleted": false})
}

func (r *categoryRepository) Update(ctx context.Context, id uuid.UUID, patch bson.M) (*model.Category, error) {
	return r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, patch)
}

func (r *categoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"is_deleted": true})
	return err
}

type groupRepository struct {
	store *database.Store[model.CategoryGroup]
}

func NewGroupRepository(db *database.MongoDB) GroupRepository {
	return &groupRepository{store: database.NewStore[model.CategoryGroup](db.Database, "category_groups")}
}

func (r *groupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CategoryGroup, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *groupRepository) List(ctx context.Context) ([]model.CategoryGroup, error) {
	res, err := r.store.GetMany(ctx, bson.M{"is_deleted": false}, &database.PageOptions{
		Sort: bson.D{{Key: "sort_order", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (r *groupRepository) Create(ctx context.Context, g *model.CategoryGroup) (*model.CategoryGroup, error) {
	return r.store.Create(ctx, g, bson.M{"slug": g.Slug, "is_deleted": false})
}

func (r *groupRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"is_deleted": true})
	return err
}
