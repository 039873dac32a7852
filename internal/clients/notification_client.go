package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// NotificationClient sends order lifecycle emails via notification-service.
// Every method is best-effort: callers log failures but never roll back the
// action that triggered the email.
type NotificationClient interface {
	// SendOrderConfirmation sends order confirmation email to customer
	SendOrderConfirmation(ctx context.Context, order *OrderNotification) error
	// SendOrderShipped sends shipping notification email
	SendOrderShipped(ctx context.Context, order *OrderNotification) error
	// SendOrderDelivered sends delivery confirmation email
	SendOrderDelivered(ctx context.Context, order *OrderNotification) error
	// SendOrderCancelled sends cancellation email
	SendOrderCancelled(ctx context.Context, order *OrderNotification) error
	// SendOrderRefunded sends refund confirmation email
	SendOrderRefunded(ctx context.Context, order *OrderNotification) error
	// SendOrderStatusUpdate sends a generic status-change email
	SendOrderStatusUpdate(ctx context.Context, order *OrderNotification) error
}

// notificationClient implements NotificationClient
type notificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient(baseURL string) NotificationClient {
	if baseURL == "" {
		baseURL = "http://notification-service.devtest.svc.cluster.local:8090"
	}

	return &notificationClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendNotificationRequest represents the API request to notification-service
type SendNotificationRequest struct {
	Channel        string                 `json:"channel"`
	RecipientEmail string                 `json:"recipientEmail"`
	Subject        string                 `json:"subject"`
	TemplateName   string                 `json:"templateName,omitempty"`
	Variables      map[string]interface{} `json:"variables,omitempty"`
	BodyHTML       string                 `json:"bodyHtml,omitempty"`
}

// OrderNotification contains order details for notification
type OrderNotification struct {
	TenantID       string
	OrderID        string
	OrderNumber    string
	OrderDate      string
	CustomerEmail  string
	CustomerName   string
	OrderStatus    string
	Items          []NotificationItem
	Currency       string
	Subtotal       string
	Shipping       string
	Tax            string
	Total          string
	TrackingNumber string
	Notes          string
	Street         string
	City           string
	State          string
	PostalCode     string
	Country        string
}

// NotificationItem represents an item in an order notification
type NotificationItem struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// SendOrderConfirmation sends order confirmation email to customer
func (c *notificationClient) SendOrderConfirmation(ctx context.Context, order *OrderNotification) error {
	return c.sendOrderEmail(ctx, order, "PAID", "Order Confirmed - #%s", "order confirmation")
}

// SendOrderShipped sends shipping notification email
func (c *notificationClient) SendOrderShipped(ctx context.Context, order *OrderNotification) error {
	return c.sendOrderEmail(ctx, order, "SHIPPED", "Your Order is On Its Way - #%s", "shipping notification")
}

// SendOrderDelivered sends delivery confirmation email
func (c *notificationClient) SendOrderDelivered(ctx context.Context, order *OrderNotification) error {
	return c.sendOrderEmail(ctx, order, "DELIVERED", "Your Order Has Arrived - #%s", "delivery notification")
}

// SendOrderCancelled sends cancellation email
func (c *notificationClient) SendOrderCancelled(ctx context.Context, order *OrderNotification) error {
	return c.sendOrderEmail(ctx, order, "CANCELLED", "Order Cancelled - #%s", "cancellation notification")
}

// SendOrderRefunded sends refund confirmation email
func (c *notificationClient) SendOrderRefunded(ctx context.Context, order *OrderNotification) error {
	return c.sendOrderEmail(ctx, order, "REFUNDED", "Refund Processed - #%s", "refund notification")
}

// SendOrderStatusUpdate sends a generic status-change email
func (c *notificationClient) SendOrderStatusUpdate(ctx context.Context, order *OrderNotification) error {
	if order == nil {
		log.Printf("[NotificationClient] Skipping status update - order is nil")
		return nil
	}
	return c.sendOrderEmail(ctx, order, order.OrderStatus, "Order Update - #%s", "status update")
}

// sendOrderEmail implements the shared skip/send/log flow for order emails
func (c *notificationClient) sendOrderEmail(ctx context.Context, order *OrderNotification, status, subjectFormat, kind string) error {
	if order == nil {
		log.Printf("[NotificationClient] Skipping %s - order is nil", kind)
		return nil
	}
	if order.CustomerEmail == "" {
		log.Printf("[NotificationClient] Skipping %s - no customer email for order %s", kind, order.OrderNumber)
		return nil
	}

	order.OrderStatus = status
	req := c.buildNotificationRequest(order)
	req.Subject = fmt.Sprintf(subjectFormat, order.OrderNumber)
	req.TemplateName = "order_customer" // Unified template, uses OrderStatus to determine content

	if err := c.send(ctx, order.TenantID, req); err != nil {
		log.Printf("[NotificationClient] Failed to send %s: %v", kind, err)
		return err
	}

	log.Printf("[NotificationClient] Sent %s for order %s to %s", kind, order.OrderNumber, order.CustomerEmail)
	return nil
}

// buildNotificationRequest builds the notification request from order data
func (c *notificationClient) buildNotificationRequest(order *OrderNotification) SendNotificationRequest {
	var items []map[string]interface{}
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"name":     item.Name,
			"imageUrl": item.ImageURL,
			"quantity": item.Quantity,
			"price":    item.Price,
		})
	}

	return SendNotificationRequest{
		Channel:        "EMAIL",
		RecipientEmail: order.CustomerEmail,
		Variables: map[string]interface{}{
			"orderId":        order.OrderID,
			"orderNumber":    order.OrderNumber,
			"orderDate":      order.OrderDate,
			"orderStatus":    order.OrderStatus,
			"customerName":   order.CustomerName,
			"customerEmail":  order.CustomerEmail,
			"items":          items,
			"currency":       order.Currency,
			"subtotal":       order.Subtotal,
			"shipping":       order.Shipping,
			"tax":            order.Tax,
			"total":          order.Total,
			"trackingNumber": order.TrackingNumber,
			"notes":          order.Notes,
			"shippingAddress": map[string]interface{}{
				"street":     order.Street,
				"city":       order.City,
				"state":      order.State,
				"postalCode": order.PostalCode,
				"country":    order.Country,
			},
		},
	}
}

func (c *notificationClient) send(ctx context.Context, tenantID string, req SendNotificationRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/notifications/send", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)
	httpReq.Header.Set("X-Internal-Service", "storefront-service")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification-service returned status %d", resp.StatusCode)
	}

	return nil
}
