package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ActivityHandler exposes the back-office activity log.
type ActivityHandler struct {
	repo repository.ActivityLogRepository
}

func NewActivityHandler(repo repository.ActivityLogRepository) *ActivityHandler {
	return &ActivityHandler{repo: repo}
}

// GetActivityLogs lists activity entries, newest first
func (h *ActivityHandler) GetActivityLogs(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	filters := models.ActivityLogFilters{Page: page, Limit: limit}
	if actorID := c.Query("actorId"); actorID != "" {
		filters.ActorID = &actorID
	}
	if action := c.Query("action"); action != "" {
		filters.Action = &action
	}
	if entityType := c.Query("entityType"); entityType != "" {
		filters.EntityType = &entityType
	}
	if entityID := c.Query("entityId"); entityID != "" {
		filters.EntityID = &entityID
	}
	if from := c.Query("dateFrom"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := c.Query("dateTo"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filters.DateTo = &t
		}
	}

	logs, total, err := h.repo.List(tenantID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve activity logs"))
		return
	}

	c.JSON(http.StatusOK, models.ActivityLogListResponse{Success: true, Data: logs, Total: total})
}
