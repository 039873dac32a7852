package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/config"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// OrdersHandler serves the admin order management endpoints.
type OrdersHandler struct {
	orderService   services.OrderService
	receiptService services.ReceiptService
	cfg            *config.Config
}

func NewOrdersHandler(orderService services.OrderService, receiptService services.ReceiptService, cfg *config.Config) *OrdersHandler {
	return &OrdersHandler{
		orderService:   orderService,
		receiptService: receiptService,
		cfg:            cfg,
	}
}

// GetOrders lists orders with filtering and pagination
func (h *OrdersHandler) GetOrders(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	filters := parseOrderFilters(c)
	orders, total, err := h.orderService.ListOrders(tenantID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve orders"))
		return
	}

	c.JSON(http.StatusOK, models.OrderListResponse{
		Success:    true,
		Data:       orders,
		Pagination: models.NewPaginationInfo(filters.Page, filters.Limit, total),
	})
}

// GetOrder retrieves a single order with items and timeline
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid order ID"))
		return
	}

	order, err := h.orderService.GetOrder(tenantID, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve order"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// UpdateOrderStatus applies an admin status change
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid order ID"))
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), tenantID, orderID, &req, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
		case strings.Contains(err.Error(), "invalid order status transition"):
			c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeInvalidTransition, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to update order status"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// GetNextStatuses returns the statuses the order may transition to
func (h *OrdersHandler) GetNextStatuses(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid order ID"))
		return
	}

	order, err := h.orderService.GetOrder(tenantID, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve order"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"currentStatus": order.Status,
			"nextStatuses":  models.GetNextValidOrderStatuses(order.Status),
			"terminal":      models.IsTerminalOrderStatus(order.Status),
		},
	})
}

// CancelOrder cancels an order on the admin's behalf
func (h *OrdersHandler) CancelOrder(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid order ID"))
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), tenantID, orderID, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
		case strings.Contains(err.Error(), "invalid order status transition"):
			c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeInvalidTransition, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to cancel order"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// DownloadReceipt streams the order receipt PDF
func (h *OrdersHandler) DownloadReceipt(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid order ID"))
		return
	}

	order, err := h.orderService.GetOrder(tenantID, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve order"))
		return
	}

	// Archives a copy in the document service alongside serving the download
	data, _, err := h.receiptService.StoreReceipt(c.Request.Context(), order, tenantID, h.cfg.DefaultCurrency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to generate receipt"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, order.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", data)
}

// parseOrderFilters reads order list query parameters
func parseOrderFilters(c *gin.Context) models.OrderFilters {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filters := models.OrderFilters{
		Page:      page,
		Limit:     limit,
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(strings.ToUpper(status))
		filters.Status = &s
	}
	if email := c.Query("customerEmail"); email != "" {
		filters.CustomerEmail = &email
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
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
	return filters
}
