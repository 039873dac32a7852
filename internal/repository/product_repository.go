package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute  // Single product cache
	ProductListCacheTTL = 2 * time.Minute  // Product list cache (shorter due to frequent changes)
	CategoryCacheTTL    = 30 * time.Minute // Categories rarely change
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(tenantID string, product *models.Product) error
	GetByID(tenantID string, productID uuid.UUID) (*models.Product, error)
	GetBySlug(tenantID string, slug string) (*models.Product, error)
	List(tenantID string, filters models.ProductFilters) ([]models.Product, int64, error)
	GetWeeklyBestSellers(tenantID string, limit int) ([]models.Product, error)
	Update(tenantID string, productID uuid.UUID, product *models.Product) error
	Delete(tenantID string, productID uuid.UUID) error
	SlugExists(tenantID string, slug string) (bool, error)
	RedisHealth(ctx context.Context) error
	CacheStats() *cache.CacheStats
}

type productRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

// NewProductRepository creates a new product repository with optional Redis caching
func NewProductRepository(db *gorm.DB, redisClient *redis.Client) ProductRepository {
	repo := &productRepository{
		db:    db,
		redis: redisClient,
	}

	// Initialize CacheLayer with the existing Redis client
	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "tesseract:storefront:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(tenantID string, prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s:%s", prefix, tenantID, hex.EncodeToString(hash[:]))
}

// invalidateProductCaches invalidates all caches related to a product
func (r *productRepository) invalidateProductCaches(ctx context.Context, tenantID string, productID uuid.UUID, slug string) {
	if r.cache == nil {
		return
	}

	_ = r.cache.Delete(ctx, fmt.Sprintf("product:%s:%s", tenantID, productID.String()))
	if slug != "" {
		_ = r.cache.Delete(ctx, fmt.Sprintf("product:slug:%s:%s", tenantID, slug))
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// invalidateTenantProductListCaches invalidates all product list caches for a tenant
func (r *productRepository) invalidateTenantProductListCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// Create creates a new product together with its variant row
func (r *productRepository) Create(tenantID string, product *models.Product) error {
	product.TenantID = tenantID
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	if product.Slug == "" {
		product.Slug = models.GenerateSlug(product.Name)
	}

	err := r.db.Create(product).Error
	if err == nil {
		r.invalidateTenantProductListCaches(context.Background(), tenantID)
	}
	return err
}

// GetByID retrieves a product by ID with caching
func (r *productRepository) GetByID(tenantID string, productID uuid.UUID) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:%s:%s", tenantID, productID.String())

	if r.cache != nil {
		var product models.Product
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &product, ProductCacheTTL, func() (any, error) {
			var p models.Product
			if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
				Preload("Variant").First(&p).Error; err != nil {
				return nil, err
			}
			return p, nil
		})
		if err != nil {
			return nil, err
		}
		return &product, nil
	}

	var product models.Product
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
		Preload("Variant").First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySlug retrieves a product by slug with caching (storefront hot path)
func (r *productRepository) GetBySlug(tenantID string, slug string) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:slug:%s:%s", tenantID, slug)

	if r.cache != nil {
		var product models.Product
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &product, ProductCacheTTL, func() (any, error) {
			var p models.Product
			if err := r.db.Where("tenant_id = ? AND slug = ?", tenantID, slug).
				Preload("Variant").First(&p).Error; err != nil {
				return nil, err
			}
			return p, nil
		})
		if err != nil {
			return nil, err
		}
		return &product, nil
	}

	var product models.Product
	if err := r.db.Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Preload("Variant").First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List retrieves products with filters and pagination
func (r *productRepository) List(tenantID string, filters models.ProductFilters) ([]models.Product, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey(tenantID, "products:list", filters)

	type listResult struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}

	fetch := func() (listResult, error) {
		var result listResult
		query := r.db.Model(&models.Product{}).Where("tenant_id = ?", tenantID)
		query = applyProductFilters(query, filters)

		if err := query.Count(&result.Total).Error; err != nil {
			return result, fmt.Errorf("failed to count products: %w", err)
		}

		limit := filters.Limit
		if limit <= 0 {
			limit = 20
		}
		page := filters.Page
		if page <= 0 {
			page = 1
		}

		sortBy := "created_at"
		if filters.SortBy != "" {
			sortBy = filters.SortBy
		}
		sortOrder := "desc"
		if strings.EqualFold(filters.SortOrder, "asc") {
			sortOrder = "asc"
		}

		err := query.Preload("Variant").
			Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
			Limit(limit).
			Offset((page - 1) * limit).
			Find(&result.Products).Error
		return result, err
	}

	if r.cache != nil {
		var result listResult
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &result, ProductListCacheTTL, func() (any, error) {
			return fetch()
		})
		if err != nil {
			return nil, 0, err
		}
		return result.Products, result.Total, nil
	}

	result, err := fetch()
	if err != nil {
		return nil, 0, err
	}
	return result.Products, result.Total, nil
}

// GetWeeklyBestSellers returns the flagged best-seller products for the storefront
func (r *productRepository) GetWeeklyBestSellers(tenantID string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	var products []models.Product
	err := r.db.Where("tenant_id = ? AND weekly_best_seller = ? AND in_stock = ?", tenantID, true, true).
		Preload("Variant").
		Order("updated_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Update replaces product fields and invalidates cache
func (r *productRepository) Update(tenantID string, productID uuid.UUID, product *models.Product) error {
	product.UpdatedAt = time.Now()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Product{}).
			Where("tenant_id = ? AND id = ?", tenantID, productID).
			Updates(product)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if product.Variant != nil {
			product.Variant.ProductID = productID
			if err := tx.Where("product_id = ?", productID).
				Assign(product.Variant).
				FirstOrCreate(&models.ProductVariant{}).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID, product.Slug)
	}
	return err
}

// Delete soft-deletes a product
func (r *productRepository) Delete(tenantID string, productID uuid.UUID) error {
	product, err := r.GetByID(tenantID, productID)
	if err != nil {
		return err
	}

	err = r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.Product{}).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID, product.Slug)
	}
	return err
}

// SlugExists checks whether a non-deleted product already claims the slug
func (r *productRepository) SlugExists(tenantID string, slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Count(&count).Error
	return count > 0, err
}

// RedisHealth returns the health status of Redis connection
func (r *productRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}

// CacheStats returns cache statistics
func (r *productRepository) CacheStats() *cache.CacheStats {
	if r.cache == nil {
		return nil
	}
	stats := r.cache.Stats()
	return &stats
}

// applyProductFilters adds the optional list filters to a query
func applyProductFilters(query *gorm.DB, filters models.ProductFilters) *gorm.DB {
	if filters.CategoryID != nil && *filters.CategoryID != "" {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.InStock != nil {
		query = query.Where("in_stock = ?", *filters.InStock)
	}
	if filters.WeeklyBestSeller != nil {
		query = query.Where("weekly_best_seller = ?", *filters.WeeklyBestSeller)
	}
	if filters.Search != nil && *filters.Search != "" {
		search := "%" + strings.ToLower(*filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}
	return query
}
