package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
)

func receiptOrder() *models.Order {
	tracking := "TRK-42"
	return &models.Order{
		ID:             uuid.New(),
		OrderNumber:    "ORD-20260831-1234",
		CustomerName:   "Robin Buyer",
		CustomerEmail:  "robin@example.com",
		Status:         models.OrderStatusPaid,
		Subtotal:       1299.99,
		ShippingCost:   49,
		TaxAmount:      107.25,
		Total:          1456.24,
		TrackingNumber: &tracking,
		Street:         "1 Fjord Lane",
		City:           "Oslo",
		State:          "Oslo",
		PostalCode:     "0150",
		Country:        "NO",
		Items: []models.OrderItem{
			{
				ProductName:    "Oslo 3-Seater Sofa",
				MaterialName:   "Fabric",
				DimensionValue: "2600mm",
				Quantity:       1,
				UnitPrice:      1299.99,
				TotalPrice:     1299.99,
			},
		},
		CreatedAt: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestGenerateReceipt(t *testing.T) {
	svc := NewReceiptService(nil)

	pdf, err := svc.GenerateReceipt(receiptOrder(), "USD")

	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "output is not a PDF document")
}

func TestStoreReceipt_UploadsToDocumentService(t *testing.T) {
	documentClient := new(MockDocumentClient)
	documentClient.On("UploadDocument", mock.Anything, mock.MatchedBy(func(req *clients.DocumentUploadRequest) bool {
		return req.TenantID == "tenant-1" &&
			req.EntityType == "receipt" &&
			req.ContentType == "application/pdf" &&
			!req.IsPublic &&
			bytes.HasPrefix(req.Data, []byte("%PDF"))
	})).Return(&clients.StoredDocument{ID: "doc-1"}, nil)

	svc := NewReceiptService(documentClient)
	pdf, path, err := svc.StoreReceipt(context.Background(), receiptOrder(), "tenant-1", "USD")

	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Contains(t, path, "ORD-20260831-1234.pdf")
	documentClient.AssertExpectations(t)
}

func TestStoreReceipt_UploadFailureIsNonFatal(t *testing.T) {
	documentClient := new(MockDocumentClient)
	documentClient.On("UploadDocument", mock.Anything, mock.Anything).
		Return(nil, errors.New("document-service unavailable"))

	svc := NewReceiptService(documentClient)
	pdf, path, err := svc.StoreReceipt(context.Background(), receiptOrder(), "tenant-1", "USD")

	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.NotEmpty(t, path)
}

func TestStoreReceipt_NoDocumentClient(t *testing.T) {
	svc := NewReceiptService(nil)

	pdf, path, err := svc.StoreReceipt(context.Background(), receiptOrder(), "tenant-1", "USD")

	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Contains(t, path, "receipts/tenant-1/")
	assert.Contains(t, path, "ORD-20260831-1234.pdf")
}
