package services

import (
	"context"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepository = (*MockProductRepository)(nil)

func (m *MockProductRepository) Create(tenantID string, product *models.Product) error {
	args := m.Called(tenantID, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(tenantID string, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(tenantID string, slug string) (*models.Product, error) {
	args := m.Called(tenantID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(tenantID string, filters models.ProductFilters) ([]models.Product, int64, error) {
	args := m.Called(tenantID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetWeeklyBestSellers(tenantID string, limit int) ([]models.Product, error) {
	args := m.Called(tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(tenantID string, productID uuid.UUID, product *models.Product) error {
	args := m.Called(tenantID, productID, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(tenantID string, productID uuid.UUID) error {
	args := m.Called(tenantID, productID)
	return args.Error(0)
}

func (m *MockProductRepository) SlugExists(tenantID string, slug string) (bool, error) {
	args := m.Called(tenantID, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) RedisHealth(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProductRepository) CacheStats() *cache.CacheStats {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*cache.CacheStats)
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) Create(tenantID string, category *models.Category) error {
	args := m.Called(tenantID, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(tenantID string, categoryID uuid.UUID) (*models.Category, error) {
	args := m.Called(tenantID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(tenantID string, name string) (*models.Category, error) {
	args := m.Called(tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(tenantID string, filters models.CategoryFilters) ([]models.Category, int64, error) {
	args := m.Called(tenantID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) ListActive(tenantID string) ([]models.Category, error) {
	args := m.Called(tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(tenantID string, categoryID uuid.UUID, category *models.Category) error {
	args := m.Called(tenantID, categoryID, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(tenantID string, categoryID uuid.UUID) error {
	args := m.Called(tenantID, categoryID)
	return args.Error(0)
}

func (m *MockCategoryRepository) Reorder(tenantID string, positions []models.CategoryPosition) error {
	args := m.Called(tenantID, positions)
	return args.Error(0)
}

func (m *MockCategoryRepository) SlugExists(tenantID string, slug string) (bool, error) {
	args := m.Called(tenantID, slug)
	return args.Bool(0), args.Error(1)
}

// MockActivityLogRepository is a mock implementation of ActivityLogRepository
type MockActivityLogRepository struct {
	mock.Mock
}

var _ repository.ActivityLogRepository = (*MockActivityLogRepository)(nil)

func (m *MockActivityLogRepository) Create(log *models.ActivityLog) error {
	args := m.Called(log)
	return args.Error(0)
}

func (m *MockActivityLogRepository) List(tenantID string, filters models.ActivityLogFilters) ([]models.ActivityLog, int64, error) {
	args := m.Called(tenantID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ActivityLog), args.Get(1).(int64), args.Error(2)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(tenantID string, id uuid.UUID) (*models.Order, error) {
	args := m.Called(tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByOrderNumber(tenantID string, orderNumber string) (*models.Order, error) {
	args := m.Called(tenantID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByPaymentID(tenantID string, paymentID string) (*models.Order, error) {
	args := m.Called(tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(tenantID string, filters models.OrderFilters) ([]models.Order, int64, error) {
	args := m.Called(tenantID, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(tenantID string, id uuid.UUID, status models.OrderStatus, trackingNumber *string, notes *string, actor string) error {
	args := m.Called(tenantID, id, status, trackingNumber, notes, actor)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPayment(tenantID string, id uuid.UUID, provider, paymentID string) error {
	args := m.Called(tenantID, id, provider, paymentID)
	return args.Error(0)
}

func (m *MockOrderRepository) AddTimelineEvent(tenantID string, orderID uuid.UUID, event, description, createdBy string) error {
	args := m.Called(tenantID, orderID, event, description, createdBy)
	return args.Error(0)
}

// MockNotificationClient is a mock implementation of NotificationClient
type MockNotificationClient struct {
	mock.Mock
}

var _ clients.NotificationClient = (*MockNotificationClient)(nil)

func (m *MockNotificationClient) SendOrderConfirmation(ctx context.Context, order *clients.OrderNotification) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotificationClient) SendOrderShipped(ctx context.Context, order *clients.OrderNotification) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotificationClient) SendOrderDelivered(ctx context.Context, order *clients.OrderNotification) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotificationClient) SendOrderCancelled(ctx context.Context, order *clients.OrderNotification) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotificationClient) SendOrderRefunded(ctx context.Context, order *clients.OrderNotification) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotificationClient) SendOrderStatusUpdate(ctx context.Context, order *clients.OrderNotification) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockDocumentClient is a mock implementation of DocumentClient
type MockDocumentClient struct {
	mock.Mock
}

var _ clients.DocumentClient = (*MockDocumentClient)(nil)

func (m *MockDocumentClient) UploadDocument(ctx context.Context, req *clients.DocumentUploadRequest) (*clients.StoredDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.StoredDocument), args.Error(1)
}

// MockPaymentClient is a mock implementation of PaymentClient
type MockPaymentClient struct {
	mock.Mock
}

var _ clients.PaymentClient = (*MockPaymentClient)(nil)

func (m *MockPaymentClient) CreatePayment(ctx context.Context, req *clients.CreatePaymentRequest) (*clients.PaymentSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.PaymentSession), args.Error(1)
}

func (m *MockPaymentClient) GetPaymentStatus(ctx context.Context, tenantID, paymentID string) (*clients.PaymentStatus, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.PaymentStatus), args.Error(1)
}

func (m *MockPaymentClient) VerifyWebhook(payload []byte, signature string) error {
	args := m.Called(payload, signature)
	return args.Error(0)
}
