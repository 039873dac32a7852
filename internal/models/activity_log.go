package models

import (
	"time"

	"github.com/google/uuid"
)

// Actor roles recognised by the back-office.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleCustomer   = "customer"
)

// ActorContext identifies who performed an action. Populated from the
// Istio auth headers by middleware.
type ActorContext struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAuthenticated reports whether the actor carries an identity.
func (a ActorContext) IsAuthenticated() bool {
	return a.ID != ""
}

// ActivityLog is an append-only record of back-office actions.
// Super-admin activity is intentionally not recorded.
type ActivityLog struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string    `json:"tenantId" gorm:"type:varchar(255);not null;index:idx_activity_logs_tenant;index:idx_activity_logs_tenant_actor;index:idx_activity_logs_tenant_action"`
	ActorID    string    `json:"actorId" gorm:"not null;index:idx_activity_logs_tenant_actor"`
	ActorEmail string    `json:"actorEmail"`
	ActorRole  string    `json:"actorRole"`
	Action     string    `json:"action" gorm:"not null;index:idx_activity_logs_tenant_action"`
	Details    string    `json:"details" gorm:"type:text"`
	EntityType *string   `json:"entityType,omitempty" gorm:"index"`
	EntityID   *string   `json:"entityId,omitempty" gorm:"index"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// ActivityLogFilters narrows activity list queries.
type ActivityLogFilters struct {
	ActorID    *string
	Action     *string
	EntityType *string
	EntityID   *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}
