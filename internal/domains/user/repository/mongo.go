package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"storefront-backend/internal/domains/user/model"
	"storefront-backend/internal/infrastructure/database"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Create trả về nil khi email đã tồn tại
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, patch bson.M) (*model.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	store *database.Store[model.User]
}

func NewUserRepository(db *database.MongoDB) UserRepository {
	return &userRepository{store: database.NewStore[model.User](db.Database, "users")}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.store.GetOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.store.GetOne(ctx, bson.M{"email": email, "is_deleted": false})
}

func (r *userRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return r.store.Create(ctx, u, bson.M{"email": u.Email, "is_deleted": false})
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, patch bson.M) (*model.User, error) {
	return r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, patch)
}

func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.store.Update(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"is_deleted": true, "is_active": false})
	return err
}
