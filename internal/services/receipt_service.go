package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
)

// ReceiptService renders order receipts as PDF documents.
type ReceiptService interface {
	// GenerateReceipt renders the receipt in-memory and returns the PDF bytes
	GenerateReceipt(order *models.Order, currency string) ([]byte, error)

	// StoreReceipt renders the receipt and uploads it to the document service,
	// returning the storage path. Upload failure is non-fatal when the
	// document client is absent.
	StoreReceipt(ctx context.Context, order *models.Order, tenantID, currency string) ([]byte, string, error)
}

type receiptService struct {
	documentClient clients.DocumentClient
	businessName   string
	bucket         string
	pathPrefix     string
}

// NewReceiptService creates a new receipt service
func NewReceiptService(documentClient clients.DocumentClient) ReceiptService {
	businessName := os.Getenv("RECEIPT_BUSINESS_NAME")
	if businessName == "" {
		businessName = "Tesseract Furniture"
	}

	bucket := os.Getenv("RECEIPT_STORAGE_BUCKET")
	if bucket == "" {
		bucket = "storefront-receipts"
	}

	pathPrefix := os.Getenv("RECEIPT_STORAGE_PATH_PREFIX")
	if pathPrefix == "" {
		pathPrefix = "receipts"
	}

	return &receiptService{
		documentClient: documentClient,
		businessName:   businessName,
		bucket:         bucket,
		pathPrefix:     pathPrefix,
	}
}

// GenerateReceipt renders the order as a PDF using maroto
func (s *receiptService) GenerateReceipt(order *models.Order, currency string) ([]byte, error) {
	cfg := marotoconfig.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	s.addHeader(m, order)
	s.addOrderDetails(m, order)
	s.addShippingAddress(m, order)
	s.addItemsTable(m, order, currency)
	s.addTotals(m, order, currency)
	s.addFooter(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// StoreReceipt renders and uploads the receipt to the document service
func (s *receiptService) StoreReceipt(ctx context.Context, order *models.Order, tenantID, currency string) ([]byte, string, error) {
	data, err := s.GenerateReceipt(order, currency)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	storagePath := fmt.Sprintf("%s/%s/%d/%02d/%s.pdf",
		s.pathPrefix, tenantID, now.Year(), now.Month(), order.OrderNumber)

	if s.documentClient == nil {
		return data, storagePath, nil
	}

	_, err = s.documentClient.UploadDocument(ctx, &clients.DocumentUploadRequest{
		TenantID:    tenantID,
		Bucket:      s.bucket,
		Path:        storagePath,
		Filename:    fmt.Sprintf("receipt-%s.pdf", order.OrderNumber),
		ContentType: "application/pdf",
		Data:        data,
		IsPublic:    false,
		EntityType:  "receipt",
		EntityID:    order.ID.String(),
	})
	if err != nil {
		log.Printf("WARNING: Failed to upload receipt to document service: %v (continuing without storage)", err)
	}
	return data, storagePath, nil
}

func (s *receiptService) addHeader(m core.Maroto, order *models.Order) {
	m.AddRow(25,
		col.New(6).Add(
			text.New(s.businessName, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("RECEIPT", props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("# %s", receiptNumber(order.OrderNumber)), props.Text{
				Size:  10,
				Top:   8,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (s *receiptService) addOrderDetails(m core.Maroto, order *models.Order) {
	m.AddRow(20,
		col.New(6).Add(
			text.New(fmt.Sprintf("Order #: %s", order.OrderNumber), props.Text{
				Size:  10,
				Align: align.Left,
			}),
			text.New(fmt.Sprintf("Date: %s", order.CreatedAt.Format("Jan 02, 2006")), props.Text{
				Size:  10,
				Top:   5,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Status: %s", order.Status.DisplayName()), props.Text{
				Size:  10,
				Align: align.Right,
			}),
			text.New(order.CustomerEmail, props.Text{
				Size:  10,
				Top:   5,
				Align: align.Right,
			}),
		),
	)
}

func (s *receiptService) addShippingAddress(m core.Maroto, order *models.Order) {
	addr := fmt.Sprintf("%s\n%s, %s %s\n%s",
		order.Street, order.City, order.State, order.PostalCode, order.Country)

	m.AddRow(25,
		col.New(6).Add(
			text.New("BILL TO:", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(order.CustomerName, props.Text{
				Size:  10,
				Top:   5,
				Align: align.Left,
			}),
			text.New(order.CustomerEmail, props.Text{
				Size:  9,
				Top:   10,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("SHIP TO:", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(addr, props.Text{
				Size:  9,
				Top:   5,
				Align: align.Left,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (s *receiptService) addItemsTable(m core.Maroto, order *models.Order, currency string) {
	m.AddRow(8,
		col.New(6).Add(
			text.New("Item", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
		),
		col.New(2).Add(
			text.New("Qty", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center}),
		),
		col.New(2).Add(
			text.New("Price", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
		col.New(2).Add(
			text.New("Total", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
	)
	m.AddRow(2, line.NewCol(12))

	symbol := currencySymbol(currency)
	for _, item := range order.Items {
		itemName := item.ProductName
		if item.MaterialName != "" || item.DimensionValue != "" {
			itemName = fmt.Sprintf("%s\n%s", item.ProductName,
				strings.TrimSpace(strings.Join([]string{item.MaterialName, item.DimensionValue}, " ")))
		}

		m.AddRow(10,
			col.New(6).Add(
				text.New(itemName, props.Text{Size: 9, Align: align.Left}),
			),
			col.New(2).Add(
				text.New(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Center}),
			),
			col.New(2).Add(
				text.New(formatMoney(item.UnitPrice, symbol), props.Text{Size: 9, Align: align.Right}),
			),
			col.New(2).Add(
				text.New(formatMoney(item.TotalPrice, symbol), props.Text{Size: 9, Align: align.Right}),
			),
		)
	}
	m.AddRow(3, line.NewCol(12))
}

func (s *receiptService) addTotals(m core.Maroto, order *models.Order, currency string) {
	symbol := currencySymbol(currency)

	addTotalRow := func(label, value string, size float64, style fontstyle.Type) {
		m.AddRow(6,
			col.New(8),
			col.New(2).Add(
				text.New(label, props.Text{Size: size, Style: style, Align: align.Right}),
			),
			col.New(2).Add(
				text.New(value, props.Text{Size: size, Style: style, Align: align.Right}),
			),
		)
	}

	addTotalRow("Subtotal:", formatMoney(order.Subtotal, symbol), 10, fontstyle.Normal)
	if order.TaxAmount > 0 {
		addTotalRow("Tax:", formatMoney(order.TaxAmount, symbol), 10, fontstyle.Normal)
	}
	if order.ShippingCost > 0 {
		addTotalRow("Shipping:", formatMoney(order.ShippingCost, symbol), 10, fontstyle.Normal)
	}

	m.AddRow(2, col.New(8), line.NewCol(4))
	addTotalRow("TOTAL:", formatMoney(order.Total, symbol), 12, fontstyle.Bold)
}

func (s *receiptService) addFooter(m core.Maroto) {
	m.AddRow(10)
	m.AddRow(10,
		col.New(12).Add(
			text.New("Thank you for your purchase!", props.Text{
				Size:  9,
				Align: align.Center,
			}),
		),
	)
	m.AddRow(8,
		col.New(12).Add(
			text.New(fmt.Sprintf("Generated on %s", time.Now().Format("Jan 02, 2006 15:04 MST")), props.Text{
				Size:  8,
				Align: align.Center,
				Color: &props.Color{Red: 128, Green: 128, Blue: 128},
			}),
		),
	)
}

// receiptNumber derives RCP-xxx from ORD-xxx
func receiptNumber(orderNumber string) string {
	if strings.HasPrefix(orderNumber, "ORD-") {
		return "RCP-" + orderNumber[4:]
	}
	return "RCP-" + orderNumber
}

func currencySymbol(currency string) string {
	symbols := map[string]string{
		"USD": "$",
		"EUR": "€",
		"GBP": "£",
		"INR": "₹",
	}
	if symbol, ok := symbols[strings.ToUpper(currency)]; ok {
		return symbol
	}
	return currency + " "
}

func formatMoney(amount float64, symbol string) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}
