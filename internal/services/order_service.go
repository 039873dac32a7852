package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ErrOrderNotFound is returned when an order does not exist for the tenant.
var ErrOrderNotFound = errors.New("Order not found")

// OrderService owns checkout, payment hand-off and the order status
// lifecycle. Customer emails are best-effort: a notification failure never
// fails the operation that triggered it.
type OrderService interface {
	CreateOrder(ctx context.Context, tenantID string, req *models.CheckoutRequest) (*models.Order, error)
	InitiatePayment(ctx context.Context, tenantID string, orderID uuid.UUID) (*clients.PaymentSession, error)
	HandlePaymentWebhook(ctx context.Context, tenantID string, payload []byte, signature string) error
	GetOrder(tenantID string, orderID uuid.UUID) (*models.Order, error)
	GetOrderByNumber(tenantID, orderNumber string) (*models.Order, error)
	ListOrders(tenantID string, filters models.OrderFilters) ([]models.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, tenantID string, orderID uuid.UUID, req *models.UpdateOrderStatusRequest, actor models.ActorContext) (*models.Order, error)
	CancelOrder(ctx context.Context, tenantID string, orderID uuid.UUID, actor models.ActorContext) (*models.Order, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	activityRepo  repository.ActivityLogRepository
	notifications clients.NotificationClient
	payments      clients.PaymentClient
	cfg           *config.Config
	logger        *logrus.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	activityRepo repository.ActivityLogRepository,
	notifications clients.NotificationClient,
	payments clients.PaymentClient,
	cfg *config.Config,
	logger *logrus.Logger,
) OrderService {
	if logger == nil {
		logger = logrus.New()
	}
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		activityRepo:  activityRepo,
		notifications: notifications,
		payments:      payments,
		cfg:           cfg,
		logger:        logger,
	}
}

// CreateOrder prices the cart from the live catalog, snapshots every line and
// persists the order in PENDING.
func (s *orderService) CreateOrder(ctx context.Context, tenantID string, req *models.CheckoutRequest) (*models.Order, error) {
	order := &models.Order{
		TenantID:      tenantID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Status:        models.OrderStatusPending,
		Street:        req.Street,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		Notes:         req.Notes,
	}

	var subtotal float64
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", item.ProductID)
		}

		product, err := s.productRepo.GetByID(tenantID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("product %s not found", item.ProductID)
			}
			return nil, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}
		if product.InStock != nil && !*product.InStock {
			return nil, fmt.Errorf("product %s is out of stock", product.Name)
		}

		unitPrice := resolveUnitPrice(product, item)
		lineTotal := unitPrice * float64(item.Quantity)
		subtotal += lineTotal

		imageURL := ""
		if product.ImageURL != nil {
			imageURL = *product.ImageURL
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:      &product.ID,
			ProductName:    product.Name,
			ProductSlug:    product.Slug,
			ImageURL:       imageURL,
			MaterialName:   item.MaterialName,
			DimensionValue: item.DimensionValue,
			Quantity:       item.Quantity,
			UnitPrice:      unitPrice,
			TotalPrice:     lineTotal,
		})
	}

	order.Subtotal = subtotal
	order.ShippingCost = s.cfg.ShippingFlatFee
	order.TaxAmount = roundMoney(subtotal * s.cfg.TaxRatePercent / 100)
	order.Total = roundMoney(order.Subtotal + order.ShippingCost + order.TaxAmount)

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// resolveUnitPrice picks the combination price for the chosen material and
// dimension when one matches, falling back to the base price, then adds the
// chosen add-ons.
func resolveUnitPrice(product *models.Product, item models.CheckoutItem) float64 {
	var price float64
	if product.Price != nil {
		price = *product.Price
	}

	if product.Variant != nil {
		if item.MaterialName != "" && item.DimensionValue != "" {
			for _, combo := range product.Variant.Combinations {
				if combo.MaterialName == item.MaterialName && combo.DimensionValue == item.DimensionValue {
					price = combo.Price
					break
				}
			}
		}
		for _, wanted := range item.AddOnNames {
			for _, addOn := range product.Variant.AddOns {
				if addOn.Name == wanted {
					price += addOn.Price
					break
				}
			}
		}
	}
	return price
}

func roundMoney(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// InitiatePayment opens a gateway session for a pending order and moves it to
// PAYMENT_INITIATED. Re-initiation after a failed attempt is allowed because
// PAYMENT_INITIATED can fall back to PENDING.
func (s *orderService) InitiatePayment(ctx context.Context, tenantID string, orderID uuid.UUID) (*clients.PaymentSession, error) {
	order, err := s.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := models.ValidateOrderStatusTransition(order.Status, models.OrderStatusPaymentInitiated); err != nil {
		return nil, err
	}

	session, err := s.payments.CreatePayment(ctx, &clients.CreatePaymentRequest{
		TenantID:      tenantID,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Amount:        order.Total,
		Currency:      s.cfg.DefaultCurrency,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		Description:   fmt.Sprintf("Order %s", order.OrderNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	if err := s.orderRepo.SetPayment(tenantID, order.ID, session.Provider, session.PaymentID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(tenantID, order.ID, models.OrderStatusPaymentInitiated, nil, nil, "system"); err != nil {
		return nil, err
	}
	return session, nil
}

// HandlePaymentWebhook verifies the gateway signature and applies the payment
// outcome to the order it references.
func (s *orderService) HandlePaymentWebhook(ctx context.Context, tenantID string, payload []byte, signature string) error {
	if err := s.payments.VerifyWebhook(payload, signature); err != nil {
		return err
	}

	var event clients.WebhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("invalid webhook payload: %w", err)
	}

	order, err := s.orderRepo.GetByPaymentID(tenantID, event.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	var target models.OrderStatus
	switch event.Event {
	case "payment.captured":
		target = models.OrderStatusPaid
	case "payment.failed":
		target = models.OrderStatusPending
	case "payment.refunded":
		target = models.OrderStatusRefunded
	default:
		s.logger.WithField("event", event.Event).Warn("Ignoring unknown payment webhook event")
		return nil
	}

	if err := models.ValidateOrderStatusTransition(order.Status, target); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatus(tenantID, order.ID, target, nil, nil, "payment-webhook"); err != nil {
		return err
	}

	if target == models.OrderStatusPaid || target == models.OrderStatusRefunded {
		updated, err := s.orderRepo.GetByID(tenantID, order.ID)
		if err != nil {
			updated = order
			updated.Status = target
		}
		s.notifyStatusChange(updated, target)
	}
	return nil
}

func (s *orderService) GetOrder(tenantID string, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderByNumber(tenantID, orderNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(tenantID, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(tenantID string, filters models.OrderFilters) ([]models.Order, int64, error) {
	return s.orderRepo.List(tenantID, filters)
}

// UpdateOrderStatus applies an admin status change. Tracking number and notes
// are merged only when present in the request; the stored values survive a
// bare status change.
func (s *orderService) UpdateOrderStatus(ctx context.Context, tenantID string, orderID uuid.UUID, req *models.UpdateOrderStatusRequest, actor models.ActorContext) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := models.ValidateOrderStatusTransition(order.Status, req.Status); err != nil {
		return nil, err
	}

	actorName := actor.Email
	if actorName == "" {
		actorName = "system"
	}
	if err := s.orderRepo.UpdateStatus(tenantID, orderID, req.Status, req.TrackingNumber, req.Notes, actorName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(updated, req.Status)
	s.recordOrderActivity(tenantID, actor, updated, req.Status)
	return updated, nil
}

// CancelOrder is the customer-facing cancellation path.
func (s *orderService) CancelOrder(ctx context.Context, tenantID string, orderID uuid.UUID, actor models.ActorContext) (*models.Order, error) {
	return s.UpdateOrderStatus(ctx, tenantID, orderID, &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusCancelled,
	}, actor)
}

// notifyStatusChange fires the customer email for statuses that warrant one.
// Runs detached so a slow notification-service never blocks the caller.
func (s *orderService) notifyStatusChange(order *models.Order, status models.OrderStatus) {
	if s.notifications == nil {
		return
	}
	notification := s.buildNotification(order)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		switch status {
		case models.OrderStatusPaid:
			err = s.notifications.SendOrderConfirmation(ctx, notification)
		case models.OrderStatusShipped:
			err = s.notifications.SendOrderShipped(ctx, notification)
		case models.OrderStatusDelivered:
			err = s.notifications.SendOrderDelivered(ctx, notification)
		case models.OrderStatusCancelled:
			err = s.notifications.SendOrderCancelled(ctx, notification)
		case models.OrderStatusRefunded:
			err = s.notifications.SendOrderRefunded(ctx, notification)
		case models.OrderStatusProcessing:
			err = s.notifications.SendOrderStatusUpdate(ctx, notification)
		default:
			return
		}
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"order_id": order.ID,
				"status":   status,
			}).Warn("Failed to send order notification")
		}
	}()
}

func (s *orderService) buildNotification(order *models.Order) *clients.OrderNotification {
	notification := &clients.OrderNotification{
		TenantID:      order.TenantID,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		OrderDate:     order.CreatedAt.Format("January 2, 2006"),
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		OrderStatus:   string(order.Status),
		Currency:      s.cfg.DefaultCurrency,
		Subtotal:      fmt.Sprintf("%.2f", order.Subtotal),
		Shipping:      fmt.Sprintf("%.2f", order.ShippingCost),
		Tax:           fmt.Sprintf("%.2f", order.TaxAmount),
		Total:         fmt.Sprintf("%.2f", order.Total),
		Street:        order.Street,
		City:          order.City,
		State:         order.State,
		PostalCode:    order.PostalCode,
		Country:       order.Country,
	}
	if order.TrackingNumber != nil {
		notification.TrackingNumber = *order.TrackingNumber
	}
	if order.Notes != nil {
		notification.Notes = *order.Notes
	}
	for _, item := range order.Items {
		notification.Items = append(notification.Items, clients.NotificationItem{
			Name:     item.ProductName,
			ImageURL: item.ImageURL,
			Quantity: item.Quantity,
			Price:    fmt.Sprintf("%.2f", item.UnitPrice),
		})
	}
	return notification
}

// recordOrderActivity logs admin status changes. Super-admin activity and
// unauthenticated callers (webhooks) are not recorded.
func (s *orderService) recordOrderActivity(tenantID string, actor models.ActorContext, order *models.Order, status models.OrderStatus) {
	if s.activityRepo == nil || !actor.IsAuthenticated() || actor.Role == models.RoleSuperAdmin {
		return
	}

	entityType := "order"
	entityID := order.ID.String()
	entry := &models.ActivityLog{
		TenantID:   tenantID,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		Action:     "orders.status_change",
		Details:    fmt.Sprintf("Order %s moved to %s", order.OrderNumber, status),
		EntityType: &entityType,
		EntityID:   &entityID,
		CreatedAt:  time.Now(),
	}
	if err := s.activityRepo.Create(entry); err != nil {
		s.logger.WithError(err).Warn("Failed to record order activity")
	}
}
