package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CategoryGroup gom nhiều category (vd: "Đồ uống" gồm trà, cà phê...)
type CategoryGroup struct {
	ID        uuid.UUID `bson:"_id" json:"categoryGroupId"`
	Name      string    `bson:"name" json:"name"`
	Slug      string    `bson:"slug" json:"slug"`
	SortOrder int       `bson:"sort_order" json:"sortOrder"`
	IsDeleted bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

type Category struct {
	ID              uuid.UUID `bson:"_id" json:"categoryId"`
	CategoryGroupID uuid.UUID `bson:"category_group_id,omitempty" json:"categoryGroupId,omitempty"`
	Name            string    `bson:"name" json:"name"`
	Slug            string    `bson:"slug" json:"slug"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Image           string    `bson:"image,omitempty" json:"image,omitempty"`
	IsDeleted       bool      `bson:"is_deleted" json:"isDeleted"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

type CreateCategoryRequest struct {
	CategoryGroupID uuid.UUID `json:"categoryGroupId,omitempty"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 128)),
	)
}

type UpdateCategoryRequest struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CategoryGroupID *uuid.UUID `json:"categoryGroupId,omitempty"`
}
