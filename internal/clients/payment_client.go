package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaymentClient talks to the payment gateway service and verifies its
// webhook signatures.
type PaymentClient interface {
	// CreatePayment opens a payment session for an order and returns the
	// gateway payment ID plus the checkout URL the customer is sent to.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentSession, error)
	// GetPaymentStatus fetches the current gateway status of a payment
	GetPaymentStatus(ctx context.Context, tenantID, paymentID string) (*PaymentStatus, error)
	// VerifyWebhook verifies the HMAC-SHA256 webhook signature
	VerifyWebhook(payload []byte, signature string) error
}

// CreatePaymentRequest represents a request to create a payment
type CreatePaymentRequest struct {
	TenantID      string  `json:"tenantId"`
	OrderID       string  `json:"orderId"`
	OrderNumber   string  `json:"orderNumber"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerName  string  `json:"customerName"`
	Description   string  `json:"description,omitempty"`
	ReturnURL     string  `json:"returnUrl,omitempty"`
	CancelURL     string  `json:"cancelUrl,omitempty"`
}

// PaymentSession is the gateway's response to CreatePayment
type PaymentSession struct {
	PaymentID   string `json:"paymentId"`
	Provider    string `json:"provider"`
	CheckoutURL string `json:"checkoutUrl"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

// PaymentStatus is the gateway's view of a payment
type PaymentStatus struct {
	PaymentID string  `json:"paymentId"`
	Status    string  `json:"status"` // created, authorized, captured, failed, refunded
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// WebhookPayload is the body the gateway posts on payment events
type WebhookPayload struct {
	Event     string  `json:"event"` // payment.captured, payment.failed, payment.refunded
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type paymentClient struct {
	baseURL       string
	webhookSecret string
	httpClient    *http.Client
}

// NewPaymentClient creates a new payment gateway client
func NewPaymentClient(baseURL, webhookSecret string) PaymentClient {
	if baseURL == "" {
		baseURL = "http://payment-service.devtest.svc.cluster.local:8094"
	}

	return &paymentClient{
		baseURL:       baseURL,
		webhookSecret: webhookSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreatePayment opens a payment session for an order
func (c *paymentClient) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/payments", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", req.TenantID)
	httpReq.Header.Set("X-Internal-Service", "storefront-service")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var session PaymentSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode payment session: %w", err)
	}
	return &session, nil
}

// GetPaymentStatus fetches the current gateway status of a payment
func (c *paymentClient) GetPaymentStatus(ctx context.Context, tenantID, paymentID string) (*PaymentStatus, error) {
	url := fmt.Sprintf("%s/api/v1/payments/%s", c.baseURL, paymentID)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-Tenant-ID", tenantID)
	httpReq.Header.Set("X-Internal-Service", "storefront-service")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var status PaymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode payment status: %w", err)
	}
	return &status, nil
}

// VerifyWebhook verifies the HMAC-SHA256 webhook signature
func (c *paymentClient) VerifyWebhook(payload []byte, signature string) error {
	if c.webhookSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	expectedSignature := computeHMAC(payload, c.webhookSecret)
	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return fmt.Errorf("webhook signature verification failed")
	}

	return nil
}

func computeHMAC(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
