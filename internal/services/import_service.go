package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ImportService drives the spreadsheet import pipeline: template generation,
// row preview (convert + validate) and the final commit.
type ImportService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	activityRepo repository.ActivityLogRepository
	validator    *RowValidator
	publisher    *events.Publisher
	logger       *logrus.Logger
}

func NewImportService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	activityRepo repository.ActivityLogRepository,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *ImportService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		activityRepo: activityRepo,
		validator:    NewRowValidator(productRepo),
		publisher:    publisher,
		logger:       logger,
	}
}

// PreviewRows converts and validates every parsed row so the client can show
// a review screen before anything is persisted.
func (s *ImportService) PreviewRows(tenantID string, rows []map[string]string, mapping map[string]string) ([]models.ImportRowResult, error) {
	categories, err := s.categoryRepo.ListActive(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	results := make([]models.ImportRowResult, 0, len(rows))
	for i, row := range rows {
		draft, convErrors := ConvertRow(row, mapping, categories)
		rowErrors := append(convErrors, s.validator.ValidateDraft(tenantID, draft)...)

		results = append(results, models.ImportRowResult{
			Index:  i,
			Raw:    row,
			Draft:  draft,
			Errors: rowErrors,
			Valid:  len(rowErrors) == 0,
		})
	}
	return results, nil
}

// ImportProducts commits reviewed rows sequentially. Invalid rows are skipped
// and reported; overridden rows replace the product that owns the slug. The
// result is successful when at least one product was created or replaced.
func (s *ImportService) ImportProducts(ctx context.Context, tenantID string, actor models.ActorContext, rows []models.ImportRowResult) *models.BulkImportResult {
	if !actor.IsAuthenticated() {
		return &models.BulkImportResult{
			Success: false,
			Message: "Authentication required for product import",
			Results: []models.ImportRowOutcome{},
		}
	}
	if len(rows) == 0 {
		return &models.BulkImportResult{
			Success: false,
			Message: "No rows to import",
			Results: []models.ImportRowOutcome{},
		}
	}

	result := &models.BulkImportResult{
		Results: make([]models.ImportRowOutcome, 0, len(rows)),
	}

	for _, row := range rows {
		outcome := models.ImportRowOutcome{Index: row.Index}
		if row.Draft != nil {
			outcome.Name = row.Draft.Name
		}

		switch {
		case row.Draft == nil:
			outcome.Message = "Row has no converted product"
		case !row.Valid:
			outcome.Message = strings.Join(row.Errors, "; ")
		default:
			if err := s.commitRow(ctx, tenantID, actor, row); err != nil {
				outcome.Message = err.Error()
			} else {
				outcome.Success = true
			}
		}

		if outcome.Success {
			result.CreatedCount++
		} else {
			result.FailedCount++
		}
		result.Results = append(result.Results, outcome)
	}

	result.Success = result.CreatedCount > 0
	result.Message = fmt.Sprintf("Imported %d of %d products", result.CreatedCount, len(rows))

	s.recordImportActivity(tenantID, actor, result, len(rows))
	return result
}

// commitRow persists one valid row. Overridden rows update the existing
// product holding the slug instead of creating a new one.
func (s *ImportService) commitRow(ctx context.Context, tenantID string, actor models.ActorContext, row models.ImportRowResult) error {
	product, err := draftToProduct(row.Draft)
	if err != nil {
		return err
	}
	product.CreatedBy = &actor.ID
	product.UpdatedBy = &actor.ID

	if row.Overridden {
		existing, err := s.productRepo.GetBySlug(tenantID, product.Slug)
		if err != nil {
			return fmt.Errorf("failed to load product for overwrite: %w", err)
		}
		if err := s.productRepo.Update(tenantID, existing.ID, product); err != nil {
			return err
		}
		product.ID = existing.ID
	} else {
		if err := s.productRepo.Create(tenantID, product); err != nil {
			return err
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProductImported(ctx, product, tenantID, actor); err != nil {
			s.logger.WithError(err).WithField("product_id", product.ID).Warn("Failed to publish product imported event")
		}
	}
	return nil
}

// draftToProduct maps a validated draft onto the persistence model.
func draftToProduct(draft *models.ProductDraft) (*models.Product, error) {
	product := &models.Product{
		Name:             draft.Name,
		Slug:             draft.Slug,
		Features:         models.StringList(draft.Features),
		CareInstructions: models.StringList(draft.CareInstructions),
		InStock:          &draft.InStock,
		WeeklyBestSeller: &draft.WeeklyBestSeller,
		Price:            draft.Price,
	}

	if draft.CategoryID != nil {
		categoryID, err := uuid.Parse(*draft.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		product.CategoryID = &categoryID
	}
	if draft.CategoryName != "" {
		product.CategoryName = &draft.CategoryName
	}
	if draft.Description != "" {
		product.Description = &draft.Description
	}
	if draft.DeliveryTime != "" {
		product.DeliveryTime = &draft.DeliveryTime
	}
	if draft.Warranty != "" {
		product.Warranty = &draft.Warranty
	}
	if draft.ReturnPolicy != "" {
		product.ReturnPolicy = &draft.ReturnPolicy
	}
	if draft.ImageURL != "" {
		imageURL := draft.ImageURL
		product.ImageURL = &imageURL
	}

	if draft.Variant != nil {
		product.Variant = &models.ProductVariant{
			Materials:    draft.Variant.Materials,
			Dimensions:   draft.Variant.Dimensions,
			Combinations: draft.Variant.Combinations,
			AddOns:       draft.Variant.AddOns,
		}
	}
	return product, nil
}

// recordImportActivity writes one aggregate entry per import run.
// Super-admin runs are not recorded.
func (s *ImportService) recordImportActivity(tenantID string, actor models.ActorContext, result *models.BulkImportResult, total int) {
	if s.activityRepo == nil || actor.Role == models.RoleSuperAdmin {
		return
	}

	entityType := "product"
	entry := &models.ActivityLog{
		TenantID:   tenantID,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		Action:     "products.import",
		Details:    fmt.Sprintf("Imported %d of %d products", result.CreatedCount, total),
		EntityType: &entityType,
		CreatedAt:  time.Now(),
	}
	if err := s.activityRepo.Create(entry); err != nil {
		s.logger.WithError(err).Warn("Failed to record import activity")
	}
}

// BuildXLSXTemplate assembles the downloadable workbook: a Products sheet with
// styled headers and an example row, an Instructions sheet and a Categories
// reference sheet listing the tenant's active categories.
func (s *ImportService) BuildXLSXTemplate(tenantID string) (*excelize.File, error) {
	template := models.ProductImportTemplate()

	f := excelize.NewFile()
	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText += " *"
		}
		f.SetCellValue(sheetName, cell, headerText)
		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		exampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, exampleCell, col.Example)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")
	f.SetCellValue("Instructions", "A3", "Columns marked with * are required.")
	f.SetCellValue("Instructions", "A4", "Category must match an existing category name exactly - see the Categories sheet.")
	f.SetCellValue("Instructions", "A5", "List columns (features, careInstructions, materials, dimensions) take semicolon-separated values.")
	f.SetCellValue("Instructions", "A6", "materialDimensionPrices takes Material|Dimension|Price|InStock entries separated by semicolons.")
	f.SetCellValue("Instructions", "A7", "addOns takes Name|Price entries separated by semicolons.")
	f.SetCellValue("Instructions", "A8", "Leave slug empty to derive it from the product name.")

	f.SetCellValue("Instructions", "A10", "Column Definitions:")
	f.SetCellValue("Instructions", "A11", "Column")
	f.SetCellValue("Instructions", "B11", "Description")
	f.SetCellValue("Instructions", "C11", "Required")
	f.SetCellValue("Instructions", "D11", "Type")
	f.SetCellValue("Instructions", "E11", "Example")
	for i, col := range template.Columns {
		row := 12 + i
		required := "No"
		if col.Required {
			required = "Yes"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 26)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "E", "E", 50)

	f.NewSheet("Categories")
	f.SetCellValue("Categories", "A1", "Category Name")
	f.SetCellValue("Categories", "B1", "Slug")
	f.SetCellStyle("Categories", "A1", "B1", headerStyle)
	categories, err := s.categoryRepo.ListActive(tenantID)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load categories for template")
	} else {
		for i, category := range categories {
			f.SetCellValue("Categories", fmt.Sprintf("A%d", i+2), category.Name)
			f.SetCellValue("Categories", fmt.Sprintf("B%d", i+2), category.Slug)
		}
	}
	f.SetColWidth("Categories", "A", "B", 30)

	return f, nil
}

// BuildCSVTemplate returns a CSV template with the header row and one example row.
func (s *ImportService) BuildCSVTemplate() ([]byte, error) {
	template := models.ProductImportTemplate()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := make([]string, len(template.Columns))
	examples := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
		if col.Required {
			headers[i] += " *"
		}
		examples[i] = col.Example
	}
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	if err := w.Write(examples); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
