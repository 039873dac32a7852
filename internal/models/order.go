package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "PENDING"           // Order created, payment not started
	OrderStatusPaymentInitiated OrderStatus = "PAYMENT_INITIATED" // Gateway session created
	OrderStatusPaid             OrderStatus = "PAID"              // Payment confirmed by webhook
	OrderStatusProcessing       OrderStatus = "PROCESSING"        // Being prepared for dispatch
	OrderStatusShipped          OrderStatus = "SHIPPED"           // Handed to carrier
	OrderStatusDelivered        OrderStatus = "DELIVERED"         // Successfully delivered
	OrderStatusCancelled        OrderStatus = "CANCELLED"         // Cancelled before delivery
	OrderStatusRefunded         OrderStatus = "REFUNDED"          // Money returned
)

// Order represents a customer order. Item rows carry product snapshots so
// later catalog edits never rewrite order history.
type Order struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID        string         `json:"tenantId" gorm:"type:varchar(255);not null;index:idx_orders_tenant_id;index:idx_orders_tenant_status;index:idx_orders_tenant_created;index:idx_orders_tenant_order_number,unique"`
	OrderNumber     string         `json:"orderNumber" gorm:"not null;index:idx_orders_tenant_order_number,unique"`
	CustomerName    string         `json:"customerName" gorm:"not null"`
	CustomerEmail   string         `json:"customerEmail" gorm:"not null;index"`
	CustomerPhone   string         `json:"customerPhone"`
	Status          OrderStatus    `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index:idx_orders_tenant_status"`
	Subtotal        float64        `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	ShippingCost    float64        `json:"shippingCost" gorm:"type:decimal(10,2);default:0"`
	TaxAmount       float64        `json:"taxAmount" gorm:"type:decimal(10,2);default:0"`
	Total           float64        `json:"total" gorm:"type:decimal(10,2);not null"`
	TrackingNumber  *string        `json:"trackingNumber,omitempty"`
	Notes           *string        `json:"notes,omitempty" gorm:"type:text"`
	PaymentProvider *string        `json:"paymentProvider,omitempty" gorm:"type:varchar(50)"`
	PaymentID       *string        `json:"paymentId,omitempty" gorm:"type:varchar(255);index"`

	// Shipping address
	Street     string `json:"street" gorm:"not null"`
	City       string `json:"city" gorm:"not null"`
	State      string `json:"state" gorm:"not null"`
	PostalCode string `json:"postalCode" gorm:"not null"`
	Country    string `json:"country" gorm:"not null"`

	Items    []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Timeline []OrderTimeline `json:"timeline,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"createdAt" gorm:"index:idx_orders_tenant_created,sort:desc"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderItem is a product snapshot inside an order
type OrderItem struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID        uuid.UUID  `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID `json:"productId,omitempty" gorm:"type:uuid"`
	ProductName    string     `json:"productName" gorm:"not null"`
	ProductSlug    string     `json:"productSlug"`
	ImageURL       string     `json:"imageUrl,omitempty" gorm:"type:varchar(500)"`
	MaterialName   string     `json:"materialName,omitempty"`
	DimensionValue string     `json:"dimensionValue,omitempty"`
	Quantity       int        `json:"quantity" gorm:"not null"`
	UnitPrice      float64    `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	TotalPrice     float64    `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// OrderTimeline represents timeline events for an order
type OrderTimeline struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID `json:"orderId" gorm:"type:uuid;not null;index"`
	Event       string    `json:"event" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BeforeCreate hook to generate order number
func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.OrderNumber == "" {
		o.OrderNumber = generateOrderNumber()
	}
	return
}

// generateOrderNumber creates a unique order number. The random suffix keeps
// two orders created in the same second from colliding on the unique
// order_number index.
func generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// CheckoutRequest is the storefront checkout payload.
type CheckoutRequest struct {
	CustomerName  string         `json:"customerName" binding:"required"`
	CustomerEmail string         `json:"customerEmail" binding:"required,email"`
	CustomerPhone string         `json:"customerPhone"`
	Street        string         `json:"street" binding:"required"`
	City          string         `json:"city" binding:"required"`
	State         string         `json:"state" binding:"required"`
	PostalCode    string         `json:"postalCode" binding:"required"`
	Country       string         `json:"country" binding:"required"`
	Items         []CheckoutItem `json:"items" binding:"required,min=1"`
	ShippingCost  float64        `json:"shippingCost"`
	Notes         *string        `json:"notes,omitempty"`
}

// CheckoutItem is one cart line at checkout.
type CheckoutItem struct {
	ProductID      string   `json:"productId" binding:"required"`
	MaterialName   string   `json:"materialName,omitempty"`
	DimensionValue string   `json:"dimensionValue,omitempty"`
	AddOnNames     []string `json:"addOnNames,omitempty"`
	Quantity       int      `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderStatusRequest is the admin status-change payload. Tracking
// number and notes are optional; nil leaves the stored value untouched.
type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status" binding:"required"`
	TrackingNumber *string     `json:"trackingNumber,omitempty"`
	Notes          *string     `json:"notes,omitempty"`
}

// OrderFilters narrows admin order list queries.
type OrderFilters struct {
	Status        *OrderStatus
	CustomerEmail *string
	Search        *string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	Limit         int
	SortBy        string
	SortOrder     string
}
