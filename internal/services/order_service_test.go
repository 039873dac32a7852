package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		DefaultCurrency: "USD",
		ShippingFlatFee: 49,
		TaxRatePercent:  8.25,
	}
}

func newOrderServiceForTest(
	orderRepo *MockOrderRepository,
	productRepo *MockProductRepository,
	activityRepo repository.ActivityLogRepository,
	notifications clients.NotificationClient,
	payments clients.PaymentClient,
) OrderService {
	return NewOrderService(orderRepo, productRepo, activityRepo, notifications, payments, testConfig(), nil)
}

func checkoutRequest(productID string) *models.CheckoutRequest {
	return &models.CheckoutRequest{
		CustomerName:  "Robin Buyer",
		CustomerEmail: "robin@example.com",
		Street:        "1 Fjord Lane",
		City:          "Oslo",
		State:         "Oslo",
		PostalCode:    "0150",
		Country:       "NO",
		Items: []models.CheckoutItem{
			{ProductID: productID, Quantity: 2},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	productID := uuid.New()
	price := 100.0
	inStock := true
	product := &models.Product{
		ID:      productID,
		Name:    "Oslo Sofa",
		Slug:    "oslo-sofa",
		Price:   &price,
		InStock: &inStock,
	}

	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", "tenant-1", productID).Return(product, nil)
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo, nil, nil, nil)
	order, err := svc.CreateOrder(context.Background(), "tenant-1", checkoutRequest(productID.String()))

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 200.0, order.Subtotal)
	assert.Equal(t, 49.0, order.ShippingCost)
	assert.Equal(t, 16.5, order.TaxAmount)
	assert.Equal(t, 265.5, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Oslo Sofa", order.Items[0].ProductName)
	assert.Equal(t, 100.0, order.Items[0].UnitPrice)
	assert.Equal(t, 200.0, order.Items[0].TotalPrice)
}

func TestCreateOrder_OutOfStock(t *testing.T) {
	productID := uuid.New()
	outOfStock := false
	product := &models.Product{ID: productID, Name: "Oslo Sofa", InStock: &outOfStock}

	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", "tenant-1", productID).Return(product, nil)

	svc := newOrderServiceForTest(new(MockOrderRepository), productRepo, nil, nil, nil)
	_, err := svc.CreateOrder(context.Background(), "tenant-1", checkoutRequest(productID.String()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of stock")
}

func TestCreateOrder_UnsetStockFlagIsSellable(t *testing.T) {
	productID := uuid.New()
	price := 100.0
	product := &models.Product{ID: productID, Name: "Oslo Sofa", Price: &price}

	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", "tenant-1", productID).Return(product, nil)
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil)

	svc := newOrderServiceForTest(orderRepo, productRepo, nil, nil, nil)
	_, err := svc.CreateOrder(context.Background(), "tenant-1", checkoutRequest(productID.String()))

	require.NoError(t, err)
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	productID := uuid.New()
	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", "tenant-1", productID).Return(nil, gorm.ErrRecordNotFound)

	svc := newOrderServiceForTest(new(MockOrderRepository), productRepo, nil, nil, nil)
	_, err := svc.CreateOrder(context.Background(), "tenant-1", checkoutRequest(productID.String()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCreateOrder_InvalidProductID(t *testing.T) {
	svc := newOrderServiceForTest(new(MockOrderRepository), new(MockProductRepository), nil, nil, nil)

	_, err := svc.CreateOrder(context.Background(), "tenant-1", checkoutRequest("not-a-uuid"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid product id")
}

func TestResolveUnitPrice_CombinationAndAddOns(t *testing.T) {
	basePrice := 999.0
	product := &models.Product{
		Price: &basePrice,
		Variant: &models.ProductVariant{
			Combinations: models.Combinations{
				{MaterialName: "Fabric", DimensionValue: "2600mm", Price: 1299.99, InStock: true},
				{MaterialName: "Leather", DimensionValue: "2600mm", Price: 1799.99, InStock: true},
			},
			AddOns: models.AddOns{
				{Name: "Ottoman", Price: 349.99},
			},
		},
	}

	price := resolveUnitPrice(product, models.CheckoutItem{
		MaterialName:   "Leather",
		DimensionValue: "2600mm",
		AddOnNames:     []string{"Ottoman"},
	})
	assert.InDelta(t, 2149.98, price, 0.001)

	// No matching combination falls back to the base price
	price = resolveUnitPrice(product, models.CheckoutItem{
		MaterialName:   "Velvet",
		DimensionValue: "2600mm",
	})
	assert.Equal(t, 999.0, price)

	// No material/dimension selection uses the base price
	price = resolveUnitPrice(product, models.CheckoutItem{})
	assert.Equal(t, 999.0, price)
}

func TestInitiatePayment(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		OrderNumber:   "ORD-20260831-0001",
		Status:        models.OrderStatusPending,
		Total:         265.5,
		CustomerEmail: "robin@example.com",
		CustomerName:  "Robin Buyer",
	}
	session := &clients.PaymentSession{PaymentID: "pay_123", Provider: "stripe", CheckoutURL: "https://pay.example.com/s/pay_123"}

	orderRepo := new(MockOrderRepository)
	payments := new(MockPaymentClient)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(order, nil)
	payments.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req *clients.CreatePaymentRequest) bool {
		return req.OrderNumber == "ORD-20260831-0001" && req.Amount == 265.5 && req.Currency == "USD"
	})).Return(session, nil)
	orderRepo.On("SetPayment", "tenant-1", orderID, "stripe", "pay_123").Return(nil)
	orderRepo.On("UpdateStatus", "tenant-1", orderID, models.OrderStatusPaymentInitiated, (*string)(nil), (*string)(nil), "system").Return(nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, payments)
	got, err := svc.InitiatePayment(context.Background(), "tenant-1", orderID)

	require.NoError(t, err)
	assert.Equal(t, session, got)
	orderRepo.AssertExpectations(t)
	payments.AssertExpectations(t)
}

func TestInitiatePayment_AlreadyPaid(t *testing.T) {
	orderID := uuid.New()
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusPaid}, nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, new(MockPaymentClient))
	_, err := svc.InitiatePayment(context.Background(), "tenant-1", orderID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status transition")
}

func TestHandlePaymentWebhook_Captured(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, Status: models.OrderStatusPaymentInitiated, OrderNumber: "ORD-1"}

	payload, _ := json.Marshal(clients.WebhookPayload{Event: "payment.captured", PaymentID: "pay_123"})

	orderRepo := new(MockOrderRepository)
	payments := new(MockPaymentClient)
	notifications := new(MockNotificationClient)
	payments.On("VerifyWebhook", payload, "sig").Return(nil)
	orderRepo.On("GetByPaymentID", "tenant-1", "pay_123").Return(order, nil)
	orderRepo.On("UpdateStatus", "tenant-1", orderID, models.OrderStatusPaid, (*string)(nil), (*string)(nil), "payment-webhook").Return(nil)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusPaid, OrderNumber: "ORD-1"}, nil)

	notified := make(chan struct{})
	notifications.On("SendOrderConfirmation", mock.Anything, mock.AnythingOfType("*clients.OrderNotification")).
		Run(func(mock.Arguments) { close(notified) }).
		Return(nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, notifications, payments)
	err := svc.HandlePaymentWebhook(context.Background(), "tenant-1", payload, "sig")

	require.NoError(t, err)
	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation notification was not sent")
	}
	orderRepo.AssertExpectations(t)
}

func TestHandlePaymentWebhook_Failed(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, Status: models.OrderStatusPaymentInitiated}
	payload, _ := json.Marshal(clients.WebhookPayload{Event: "payment.failed", PaymentID: "pay_123"})

	orderRepo := new(MockOrderRepository)
	payments := new(MockPaymentClient)
	notifications := new(MockNotificationClient)
	payments.On("VerifyWebhook", payload, "sig").Return(nil)
	orderRepo.On("GetByPaymentID", "tenant-1", "pay_123").Return(order, nil)
	orderRepo.On("UpdateStatus", "tenant-1", orderID, models.OrderStatusPending, (*string)(nil), (*string)(nil), "payment-webhook").Return(nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, notifications, payments)
	err := svc.HandlePaymentWebhook(context.Background(), "tenant-1", payload, "sig")

	require.NoError(t, err)
	notifications.AssertNotCalled(t, "SendOrderStatusUpdate", mock.Anything, mock.Anything)
	notifications.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
}

func TestHandlePaymentWebhook_UnknownEventIgnored(t *testing.T) {
	payload, _ := json.Marshal(clients.WebhookPayload{Event: "payment.disputed", PaymentID: "pay_123"})

	orderRepo := new(MockOrderRepository)
	payments := new(MockPaymentClient)
	payments.On("VerifyWebhook", payload, "sig").Return(nil)
	orderRepo.On("GetByPaymentID", "tenant-1", "pay_123").Return(&models.Order{ID: uuid.New(), Status: models.OrderStatusPaymentInitiated}, nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, payments)
	err := svc.HandlePaymentWebhook(context.Background(), "tenant-1", payload, "sig")

	require.NoError(t, err)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePaymentWebhook_BadSignature(t *testing.T) {
	payments := new(MockPaymentClient)
	payments.On("VerifyWebhook", mock.Anything, "bad").Return(errors.New("invalid webhook signature"))

	svc := newOrderServiceForTest(new(MockOrderRepository), new(MockProductRepository), nil, nil, payments)
	err := svc.HandlePaymentWebhook(context.Background(), "tenant-1", []byte("{}"), "bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestGetOrder_NotFound(t *testing.T) {
	orderID := uuid.New()
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(nil, gorm.ErrRecordNotFound)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, nil)
	_, err := svc.GetOrder("tenant-1", orderID)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderByNumber_NotFound(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByOrderNumber", "tenant-1", "ORD-MISSING").Return(nil, gorm.ErrRecordNotFound)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, nil)
	_, err := svc.GetOrderByNumber("tenant-1", "ORD-MISSING")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	orderID := uuid.New()
	tracking := "TRK-42"
	current := &models.Order{ID: orderID, OrderNumber: "ORD-1", Status: models.OrderStatusProcessing}
	updated := &models.Order{ID: orderID, OrderNumber: "ORD-1", Status: models.OrderStatusShipped, TrackingNumber: &tracking}

	orderRepo := new(MockOrderRepository)
	activityRepo := new(MockActivityLogRepository)
	notifications := new(MockNotificationClient)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(current, nil).Once()
	orderRepo.On("UpdateStatus", "tenant-1", orderID, models.OrderStatusShipped, &tracking, (*string)(nil), "alex@example.com").Return(nil)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(updated, nil).Once()
	activityRepo.On("Create", mock.MatchedBy(func(entry *models.ActivityLog) bool {
		return entry.Action == "orders.status_change" && entry.ActorID == "actor-1"
	})).Return(nil)

	notified := make(chan struct{})
	notifications.On("SendOrderShipped", mock.Anything, mock.MatchedBy(func(n *clients.OrderNotification) bool {
		return n.TrackingNumber == "TRK-42"
	})).Run(func(mock.Arguments) { close(notified) }).Return(nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), activityRepo, notifications, nil)
	got, err := svc.UpdateOrderStatus(context.Background(), "tenant-1", orderID, &models.UpdateOrderStatusRequest{
		Status:         models.OrderStatusShipped,
		TrackingNumber: &tracking,
	}, adminActor())

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("shipped notification was not sent")
	}
	orderRepo.AssertExpectations(t)
	activityRepo.AssertExpectations(t)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	orderID := uuid.New()
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusPending}, nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, nil)
	_, err := svc.UpdateOrderStatus(context.Background(), "tenant-1", orderID, &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusDelivered,
	}, adminActor())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status transition from PENDING to DELIVERED")
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	orderID := uuid.New()
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(nil, gorm.ErrRecordNotFound)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, nil)
	_, err := svc.UpdateOrderStatus(context.Background(), "tenant-1", orderID, &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusShipped,
	}, adminActor())

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderStatus_SuperAdminActivityNotRecorded(t *testing.T) {
	orderID := uuid.New()
	current := &models.Order{ID: orderID, Status: models.OrderStatusShipped}
	updated := &models.Order{ID: orderID, Status: models.OrderStatusDelivered}

	orderRepo := new(MockOrderRepository)
	activityRepo := new(MockActivityLogRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(current, nil).Once()
	orderRepo.On("UpdateStatus", "tenant-1", orderID, models.OrderStatusDelivered, (*string)(nil), (*string)(nil), "alex@example.com").Return(nil)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(updated, nil).Once()

	actor := adminActor()
	actor.Role = models.RoleSuperAdmin

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), activityRepo, nil, nil)
	_, err := svc.UpdateOrderStatus(context.Background(), "tenant-1", orderID, &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusDelivered,
	}, actor)

	require.NoError(t, err)
	activityRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCancelOrder(t *testing.T) {
	orderID := uuid.New()
	current := &models.Order{ID: orderID, Status: models.OrderStatusPending}
	cancelled := &models.Order{ID: orderID, Status: models.OrderStatusCancelled}

	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(current, nil).Once()
	orderRepo.On("UpdateStatus", "tenant-1", orderID, models.OrderStatusCancelled, (*string)(nil), (*string)(nil), "system").Return(nil)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(cancelled, nil).Once()

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, nil)
	got, err := svc.CancelOrder(context.Background(), "tenant-1", orderID, models.ActorContext{})

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestCancelOrder_Delivered(t *testing.T) {
	orderID := uuid.New()
	orderRepo := new(MockOrderRepository)
	orderRepo.On("GetByID", "tenant-1", orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusDelivered}, nil)

	svc := newOrderServiceForTest(orderRepo, new(MockProductRepository), nil, nil, nil)
	_, err := svc.CancelOrder(context.Background(), "tenant-1", orderID, models.ActorContext{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status transition")
}
