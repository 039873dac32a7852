package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products for storefront navigation.
type Category struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"not null;index:idx_categories_tenant_id;index:idx_categories_tenant_slug,unique"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null;index:idx_categories_tenant_slug,unique"`
	Description *string         `json:"description,omitempty"`
	Position    int             `json:"position" gorm:"not null;default:0;index"`
	IsActive    bool            `json:"isActive" gorm:"not null;default:true"`
	ImageURL    *string         `json:"imageUrl,omitempty" gorm:"column:image_url"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy   *string         `json:"createdBy,omitempty"`
	UpdatedBy   *string         `json:"updatedBy,omitempty"`
}

// CreateCategoryRequest is the admin create/update payload.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// ReorderCategoriesRequest assigns new positions by category ID.
type ReorderCategoriesRequest struct {
	Order []CategoryPosition `json:"order" binding:"required"`
}

// CategoryPosition pairs a category ID with its new position.
type CategoryPosition struct {
	ID       string `json:"id" binding:"required"`
	Position int    `json:"position"`
}

// CategoryFilters narrows category list queries.
type CategoryFilters struct {
	Search   *string
	IsActive *bool
	Page     int
	Limit    int
}
