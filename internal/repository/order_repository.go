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

// Cache TTL constants for orders
const (
	OrderCacheTTL     = 10 * time.Minute // Orders - frequently accessed
	OrderListCacheTTL = 2 * time.Minute  // Order lists - frequent changes
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(tenantID string, id uuid.UUID) (*models.Order, error)
	GetByOrderNumber(tenantID string, orderNumber string) (*models.Order, error)
	GetByPaymentID(tenantID string, paymentID string) (*models.Order, error)
	List(tenantID string, filters models.OrderFilters) ([]models.Order, int64, error)
	UpdateStatus(tenantID string, id uuid.UUID, status models.OrderStatus, trackingNumber *string, notes *string, actor string) error
	SetPayment(tenantID string, id uuid.UUID, provider, paymentID string) error
	AddTimelineEvent(tenantID string, orderID uuid.UUID, event, description, createdBy string) error
}

type orderRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

// NewOrderRepository creates a new order repository with optional Redis caching
func NewOrderRepository(db *gorm.DB, redisClient *redis.Client) OrderRepository {
	repo := &orderRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: OrderCacheTTL,
			KeyPrefix:  "tesseract:storefront:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// generateOrderCacheKey creates a cache key for order lookups by ID
func generateOrderCacheKey(tenantID string, orderID uuid.UUID) string {
	return fmt.Sprintf("order:%s:%s", tenantID, orderID.String())
}

// invalidateOrderCaches invalidates all caches related to an order
func (r *orderRepository) invalidateOrderCaches(ctx context.Context, tenantID string, orderID uuid.UUID, orderNumber string) {
	if r.cache == nil {
		return
	}

	_ = r.cache.Delete(ctx, generateOrderCacheKey(tenantID, orderID))
	if orderNumber != "" {
		_ = r.cache.Delete(ctx, fmt.Sprintf("order:number:%s:%s", tenantID, orderNumber))
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("order:list:%s:*", tenantID))
}

// Create creates a new order with its items and an initial timeline event
func (r *orderRepository) Create(order *models.Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		timeline := models.OrderTimeline{
			OrderID:     order.ID,
			Event:       "ORDER_CREATED",
			Description: fmt.Sprintf("Order %s created", order.OrderNumber),
			Timestamp:   time.Now(),
			CreatedBy:   "system",
		}
		if err := tx.Create(&timeline).Error; err != nil {
			return fmt.Errorf("failed to create timeline event: %w", err)
		}
		return nil
	})

	if err == nil {
		r.invalidateOrderCaches(context.Background(), order.TenantID, order.ID, order.OrderNumber)
	}
	return err
}

// GetByID retrieves an order with items and timeline, cached
func (r *orderRepository) GetByID(tenantID string, id uuid.UUID) (*models.Order, error) {
	ctx := context.Background()
	cacheKey := generateOrderCacheKey(tenantID, id)

	fetch := func() (*models.Order, error) {
		var order models.Order
		if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).
			Preload("Items").
			Preload("Timeline", func(db *gorm.DB) *gorm.DB {
				return db.Order("timestamp ASC")
			}).
			First(&order).Error; err != nil {
			return nil, err
		}
		return &order, nil
	}

	if r.cache != nil {
		var order models.Order
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &order, OrderCacheTTL, func() (any, error) {
			o, err := fetch()
			if err != nil {
				return nil, err
			}
			return *o, nil
		})
		if err != nil {
			return nil, err
		}
		return &order, nil
	}

	return fetch()
}

// GetByOrderNumber retrieves an order by its customer-facing number
func (r *orderRepository) GetByOrderNumber(tenantID string, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByPaymentID retrieves the order a gateway payment belongs to
func (r *orderRepository) GetByPaymentID(tenantID string, paymentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Preload("Items").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List retrieves orders with filters and pagination
func (r *orderRepository) List(tenantID string, filters models.OrderFilters) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{}).Where("tenant_id = ?", tenantID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerEmail != nil && *filters.CustomerEmail != "" {
		query = query.Where("LOWER(customer_email) = LOWER(?)", *filters.CustomerEmail)
	}
	if filters.Search != nil && *filters.Search != "" {
		search := "%" + *filters.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ? OR customer_email ILIKE ?", search, search, search)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus persists a status change with optional tracking number and
// notes. Nil pointers leave the stored values untouched. A timeline event is
// written in the same transaction.
func (r *orderRepository) UpdateStatus(tenantID string, id uuid.UUID, status models.OrderStatus, trackingNumber *string, notes *string, actor string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}
		if trackingNumber != nil {
			updates["tracking_number"] = *trackingNumber
		}
		if notes != nil {
			updates["notes"] = *notes
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND tenant_id = ?", id, tenantID).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		description := fmt.Sprintf("Order status changed to %s", string(status))
		if notes != nil && *notes != "" {
			description += fmt.Sprintf(". Notes: %s", *notes)
		}

		createdBy := actor
		if createdBy == "" {
			createdBy = "system"
		}
		timeline := models.OrderTimeline{
			OrderID:     id,
			Event:       "STATUS_CHANGED",
			Description: description,
			Timestamp:   time.Now(),
			CreatedBy:   createdBy,
		}
		if err := tx.Create(&timeline).Error; err != nil {
			return fmt.Errorf("failed to create timeline event: %w", err)
		}

		return nil
	})

	if err == nil {
		r.invalidateOrderCaches(context.Background(), tenantID, id, "")
	}
	return err
}

// SetPayment records the gateway session on the order
func (r *orderRepository) SetPayment(tenantID string, id uuid.UUID, provider, paymentID string) error {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{
			"payment_provider": provider,
			"payment_id":       paymentID,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateOrderCaches(context.Background(), tenantID, id, "")
	return nil
}

// AddTimelineEvent appends an event to an order's timeline
func (r *orderRepository) AddTimelineEvent(tenantID string, orderID uuid.UUID, event, description, createdBy string) error {
	var count int64
	if err := r.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	if createdBy == "" {
		createdBy = "system"
	}
	timeline := models.OrderTimeline{
		OrderID:     orderID,
		Event:       event,
		Description: description,
		Timestamp:   time.Now(),
		CreatedBy:   createdBy,
	}
	err := r.db.Create(&timeline).Error
	if err == nil {
		r.invalidateOrderCaches(context.Background(), tenantID, orderID, "")
	}
	return err
}
