package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(tenantID string, category *models.Category) error
	GetByID(tenantID string, categoryID uuid.UUID) (*models.Category, error)
	GetByName(tenantID string, name string) (*models.Category, error)
	List(tenantID string, filters models.CategoryFilters) ([]models.Category, int64, error)
	ListActive(tenantID string) ([]models.Category, error)
	Update(tenantID string, categoryID uuid.UUID, category *models.Category) error
	Delete(tenantID string, categoryID uuid.UUID) error
	Reorder(tenantID string, positions []models.CategoryPosition) error
	SlugExists(tenantID string, slug string) (bool, error)
}

type categoryRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
}

// NewCategoryRepository creates a new category repository with optional Redis caching
func NewCategoryRepository(db *gorm.DB, redisClient *redis.Client) CategoryRepository {
	repo := &categoryRepository{db: db}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 1000,
			L1TTL:      30 * time.Second,
			DefaultTTL: CategoryCacheTTL,
			KeyPrefix:  "tesseract:storefront:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// invalidateCategoryCaches invalidates category-related caches for a tenant
func (r *categoryRepository) invalidateCategoryCaches(ctx context.Context, tenantID string, categoryID *uuid.UUID) {
	if r.cache == nil {
		return
	}

	if categoryID != nil {
		_ = r.cache.Delete(ctx, fmt.Sprintf("category:%s:%s", tenantID, categoryID.String()))
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("categories:*:%s:*", tenantID))
}

// Create creates a new category
func (r *categoryRepository) Create(tenantID string, category *models.Category) error {
	category.TenantID = tenantID
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Slug == "" {
		category.Slug = models.GenerateSlug(category.Name)
	}

	err := r.db.Create(category).Error
	if err == nil {
		r.invalidateCategoryCaches(context.Background(), tenantID, nil)
	}
	return err
}

// GetByID retrieves a category by ID with caching
func (r *categoryRepository) GetByID(tenantID string, categoryID uuid.UUID) (*models.Category, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("category:%s:%s", tenantID, categoryID.String())

	if r.cache != nil {
		var category models.Category
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &category, CategoryCacheTTL, func() (any, error) {
			var cat models.Category
			if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, categoryID).First(&cat).Error; err != nil {
				return nil, err
			}
			return cat, nil
		})
		if err != nil {
			return nil, err
		}
		return &category, nil
	}

	var category models.Category
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, categoryID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetByName retrieves a category by exact name match
func (r *categoryRepository) GetByName(tenantID string, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("tenant_id = ? AND name = ?", tenantID, name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// List retrieves categories with filters and pagination
func (r *categoryRepository) List(tenantID string, filters models.CategoryFilters) ([]models.Category, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey(tenantID, "categories:list", filters)

	type listResult struct {
		Categories []models.Category `json:"categories"`
		Total      int64             `json:"total"`
	}

	fetch := func() (listResult, error) {
		var result listResult
		query := r.db.Model(&models.Category{}).Where("tenant_id = ?", tenantID)

		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
		if filters.Search != nil && *filters.Search != "" {
			query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+*filters.Search+"%")
		}

		if err := query.Count(&result.Total).Error; err != nil {
			return result, fmt.Errorf("failed to count categories: %w", err)
		}

		limit := filters.Limit
		if limit <= 0 {
			limit = 50
		}
		page := filters.Page
		if page <= 0 {
			page = 1
		}

		err := query.Order("position ASC, name ASC").
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&result.Categories).Error
		return result, err
	}

	if r.cache != nil {
		var result listResult
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &result, CategoryCacheTTL, func() (any, error) {
			return fetch()
		})
		if err != nil {
			return nil, 0, err
		}
		return result.Categories, result.Total, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, 0, err
	}
	return result.Categories, result.Total, nil
}

// ListActive returns all active categories ordered by position, uncapped.
// Used by the storefront navigation and the import converter.
func (r *categoryRepository) ListActive(tenantID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("position ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

// Update replaces category fields and invalidates cache
func (r *categoryRepository) Update(tenantID string, categoryID uuid.UUID, category *models.Category) error {
	category.UpdatedAt = time.Now()

	result := r.db.Model(&models.Category{}).
		Where("tenant_id = ? AND id = ?", tenantID, categoryID).
		Updates(category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateCategoryCaches(context.Background(), tenantID, &categoryID)
	return nil
}

// Delete soft-deletes a category
func (r *categoryRepository) Delete(tenantID string, categoryID uuid.UUID) error {
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, categoryID).
		Delete(&models.Category{}).Error
	if err == nil {
		r.invalidateCategoryCaches(context.Background(), tenantID, &categoryID)
	}
	return err
}

// Reorder assigns new positions to categories in one transaction
func (r *categoryRepository) Reorder(tenantID string, positions []models.CategoryPosition) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range positions {
			id, err := uuid.Parse(p.ID)
			if err != nil {
				return fmt.Errorf("invalid category id %q: %w", p.ID, err)
			}
			result := tx.Model(&models.Category{}).
				Where("tenant_id = ? AND id = ?", tenantID, id).
				Update("position", p.Position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})

	if err == nil {
		r.invalidateCategoryCaches(context.Background(), tenantID, nil)
	}
	return err
}

// SlugExists checks whether a non-deleted category already claims the slug
func (r *categoryRepository) SlugExists(tenantID string, slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Count(&count).Error
	return count > 0, err
}
