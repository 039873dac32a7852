package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

// ActivityLogRepository defines the interface for the append-only activity log
type ActivityLogRepository interface {
	Create(log *models.ActivityLog) error
	List(tenantID string, filters models.ActivityLogFilters) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Create appends an activity log entry
func (r *activityLogRepository) Create(log *models.ActivityLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return r.db.Create(log).Error
}

// List retrieves activity log entries with filters and pagination
func (r *activityLogRepository) List(tenantID string, filters models.ActivityLogFilters) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	query := r.db.Model(&models.ActivityLog{}).Where("tenant_id = ?", tenantID)

	if filters.ActorID != nil && *filters.ActorID != "" {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.Action != nil && *filters.Action != "" {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.EntityType != nil && *filters.EntityType != "" {
		query = query.Where("entity_type = ?", *filters.EntityType)
	}
	if filters.EntityID != nil && *filters.EntityID != "" {
		query = query.Where("entity_id = ?", *filters.EntityID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
