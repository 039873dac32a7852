package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
)

func newImportService(productRepo *MockProductRepository, categoryRepo *MockCategoryRepository, activityRepo *MockActivityLogRepository) *ImportService {
	// A typed nil mock must not reach the interface field; the service
	// treats a nil activity repo as "do not record".
	if activityRepo == nil {
		return NewImportService(productRepo, categoryRepo, nil, nil, nil)
	}
	return NewImportService(productRepo, categoryRepo, activityRepo, nil, nil)
}

func adminActor() models.ActorContext {
	return models.ActorContext{
		ID:    "actor-1",
		Name:  "Alex Admin",
		Email: "alex@example.com",
		Role:  models.RoleAdmin,
	}
}

func validRow(index int, name, slug string) models.ImportRowResult {
	categoryID := uuid.New().String()
	return models.ImportRowResult{
		Index: index,
		Draft: &models.ProductDraft{
			Name:        name,
			Slug:        slug,
			CategoryID:  &categoryID,
			Description: "desc",
		},
		Valid: true,
	}
}

func TestPreviewRows(t *testing.T) {
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)

	categoryID := uuid.New()
	categoryRepo.On("ListActive", "tenant-1").Return([]models.Category{
		{ID: categoryID, Name: "Sofas"},
	}, nil)
	productRepo.On("SlugExists", "tenant-1", mock.Anything).Return(false, nil)

	svc := newImportService(productRepo, categoryRepo, nil)
	rows := []map[string]string{
		{"name": "Oslo Sofa", "category": "Sofas", "description": "A sofa", "_row": "2"},
		{"name": "", "category": "Gazebos", "description": "", "_row": "3"},
	}
	mapping := identityMapping("name", "category", "description")

	results, err := svc.PreviewRows("tenant-1", rows, mapping)

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 0, results[0].Index)
	assert.True(t, results[0].Valid)
	assert.Empty(t, results[0].Errors)
	require.NotNil(t, results[0].Draft)
	assert.Equal(t, "oslo-sofa", results[0].Draft.Slug)
	require.NotNil(t, results[0].Draft.CategoryID)
	assert.Equal(t, categoryID.String(), *results[0].Draft.CategoryID)

	assert.Equal(t, 1, results[1].Index)
	assert.False(t, results[1].Valid)
	assert.Contains(t, results[1].Errors, "Category not found: Gazebos")
	assert.Contains(t, results[1].Errors, "Name is required")
	assert.Contains(t, results[1].Errors, "Description is required")
}

func TestPreviewRows_CategoryLoadFails(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("ListActive", "tenant-1").Return(nil, errors.New("db down"))

	svc := newImportService(new(MockProductRepository), categoryRepo, nil)
	_, err := svc.PreviewRows("tenant-1", []map[string]string{{"name": "x"}}, identityMapping("name"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load categories")
}

func TestImportProducts_Unauthenticated(t *testing.T) {
	svc := newImportService(new(MockProductRepository), new(MockCategoryRepository), nil)

	result := svc.ImportProducts(context.Background(), "tenant-1", models.ActorContext{}, []models.ImportRowResult{validRow(0, "Oslo Sofa", "oslo-sofa")})

	assert.False(t, result.Success)
	assert.Equal(t, "Authentication required for product import", result.Message)
	assert.Zero(t, result.CreatedCount)
	require.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}

func TestImportProducts_EmptyRows(t *testing.T) {
	svc := newImportService(new(MockProductRepository), new(MockCategoryRepository), nil)

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), nil)

	assert.False(t, result.Success)
	assert.Equal(t, "No rows to import", result.Message)
	require.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
}

func TestImportProducts_AllValid(t *testing.T) {
	productRepo := new(MockProductRepository)
	activityRepo := new(MockActivityLogRepository)
	productRepo.On("Create", "tenant-1", mock.AnythingOfType("*models.Product")).Return(nil).Twice()
	activityRepo.On("Create", mock.AnythingOfType("*models.ActivityLog")).Return(nil).Once()

	svc := newImportService(productRepo, new(MockCategoryRepository), activityRepo)
	rows := []models.ImportRowResult{
		validRow(0, "Oslo Sofa", "oslo-sofa"),
		validRow(1, "Bergen Chair", "bergen-chair"),
	}

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), rows)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, "Imported 2 of 2 products", result.Message)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.True(t, result.Results[1].Success)
	productRepo.AssertExpectations(t)
	activityRepo.AssertExpectations(t)
}

func TestImportProducts_PartialFailure(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("Create", "tenant-1", mock.MatchedBy(func(p *models.Product) bool {
		return p.Slug == "oslo-sofa"
	})).Return(nil)
	productRepo.On("Create", "tenant-1", mock.MatchedBy(func(p *models.Product) bool {
		return p.Slug == "bergen-chair"
	})).Return(errors.New("insert failed"))

	svc := newImportService(productRepo, new(MockCategoryRepository), nil)
	invalid := models.ImportRowResult{
		Index:  2,
		Draft:  &models.ProductDraft{Name: "Fjord Table"},
		Errors: []string{"Category is required", "Description is required"},
	}
	rows := []models.ImportRowResult{
		validRow(0, "Oslo Sofa", "oslo-sofa"),
		validRow(1, "Bergen Chair", "bergen-chair"),
		invalid,
	}

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), rows)

	assert.True(t, result.Success) // at least one row landed
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 2, result.FailedCount)
	assert.Equal(t, "Imported 1 of 3 products", result.Message)
	assert.Equal(t, "insert failed", result.Results[1].Message)
	assert.Equal(t, "Category is required; Description is required", result.Results[2].Message)
}

func TestImportProducts_AllFailed(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("Create", "tenant-1", mock.Anything).Return(errors.New("insert failed"))

	svc := newImportService(productRepo, new(MockCategoryRepository), nil)

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), []models.ImportRowResult{
		validRow(0, "Oslo Sofa", "oslo-sofa"),
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Imported 0 of 1 products", result.Message)
}

func TestImportProducts_OverriddenRowUpdatesExisting(t *testing.T) {
	existingID := uuid.New()
	productRepo := new(MockProductRepository)
	productRepo.On("GetBySlug", "tenant-1", "oslo-sofa").Return(&models.Product{ID: existingID, Slug: "oslo-sofa"}, nil)
	productRepo.On("Update", "tenant-1", existingID, mock.AnythingOfType("*models.Product")).Return(nil)

	svc := newImportService(productRepo, new(MockCategoryRepository), nil)
	row := validRow(0, "Oslo Sofa", "oslo-sofa")
	row.Overridden = true

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), []models.ImportRowResult{row})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CreatedCount)
	productRepo.AssertExpectations(t)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportProducts_ExplicitOutOfStockPersisted(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("Create", "tenant-1", mock.MatchedBy(func(p *models.Product) bool {
		return p.InStock != nil && !*p.InStock && p.WeeklyBestSeller != nil && !*p.WeeklyBestSeller
	})).Return(nil)

	svc := newImportService(productRepo, new(MockCategoryRepository), nil)
	row := validRow(0, "Oslo Sofa", "oslo-sofa")
	row.Draft.InStock = false
	row.Draft.WeeklyBestSeller = false

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), []models.ImportRowResult{row})

	assert.True(t, result.Success)
	productRepo.AssertExpectations(t)
}

func TestImportProducts_RowWithoutDraft(t *testing.T) {
	svc := newImportService(new(MockProductRepository), new(MockCategoryRepository), nil)

	result := svc.ImportProducts(context.Background(), "tenant-1", adminActor(), []models.ImportRowResult{
		{Index: 0, Valid: true},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Row has no converted product", result.Results[0].Message)
}

func TestImportProducts_SuperAdminActivityNotRecorded(t *testing.T) {
	productRepo := new(MockProductRepository)
	activityRepo := new(MockActivityLogRepository)
	productRepo.On("Create", "tenant-1", mock.Anything).Return(nil)

	svc := newImportService(productRepo, new(MockCategoryRepository), activityRepo)
	actor := adminActor()
	actor.Role = models.RoleSuperAdmin

	result := svc.ImportProducts(context.Background(), "tenant-1", actor, []models.ImportRowResult{
		validRow(0, "Oslo Sofa", "oslo-sofa"),
	})

	assert.True(t, result.Success)
	activityRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestBuildCSVTemplate(t *testing.T) {
	svc := newImportService(new(MockProductRepository), new(MockCategoryRepository), nil)

	data, err := svc.BuildCSVTemplate()

	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "name *")
	assert.Contains(t, content, "category *")
	assert.Contains(t, content, "description *")
	assert.Contains(t, content, "slug")
	assert.Contains(t, content, "Oslo 3-Seater Sofa")
}

func TestBuildXLSXTemplate(t *testing.T) {
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("ListActive", "tenant-1").Return([]models.Category{
		{ID: uuid.New(), Name: "Sofas", Slug: "sofas"},
		{ID: uuid.New(), Name: "Chairs", Slug: "chairs"},
	}, nil)

	svc := newImportService(productRepo, categoryRepo, nil)
	f, err := svc.BuildXLSXTemplate("tenant-1")

	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Products")
	assert.Contains(t, sheets, "Instructions")
	assert.Contains(t, sheets, "Categories")

	header, err := f.GetCellValue("Products", "A1")
	require.NoError(t, err)
	assert.Equal(t, "name *", header)

	example, err := f.GetCellValue("Products", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Oslo 3-Seater Sofa", example)

	firstCategory, err := f.GetCellValue("Categories", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Sofas", firstCategory)
}
