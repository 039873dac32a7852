package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// CheckoutHandler serves the public storefront order flow: checkout, payment
// initiation, the gateway webhook and customer order lookup.
type CheckoutHandler struct {
	orderService services.OrderService
}

func NewCheckoutHandler(orderService services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{orderService: orderService}
}

// Checkout creates a PENDING order from the cart
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), tenantID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "out of stock") || strings.Contains(err.Error(), "invalid product id") {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to create order"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": order})
}

// InitiatePayment opens a payment session for a pending order
func (h *CheckoutHandler) InitiatePayment(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid order ID"))
		return
	}

	session, err := h.orderService.InitiatePayment(c.Request.Context(), tenantID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
		case strings.Contains(err.Error(), "invalid order status transition"):
			c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeInvalidTransition, err.Error()))
		default:
			c.JSON(http.StatusBadGateway, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to initiate payment"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": session})
}

// PaymentWebhook receives payment events from the gateway. The signature is
// verified before the payload is trusted.
func (h *CheckoutHandler) PaymentWebhook(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeParseError, "Failed to read webhook body"))
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if err := h.orderService.HandlePaymentWebhook(c.Request.Context(), tenantID, payload, signature); err != nil {
		switch {
		case strings.Contains(err.Error(), "signature"):
			c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeInvalidSignature, "Webhook signature verification failed"))
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Order not found"))
		case strings.Contains(err.Error(), "invalid order status transition"):
			c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeInvalidTransition, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to process webhook"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetOrderByNumber lets customers look up their order by number
func (h *CheckoutHandler) GetOrderByNumber(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	orderNumber := c.Param("orderNumber")

	order, err := h.orderService.GetOrderByNumber(tenantID, orderNumber)
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
