package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-service/internal/models"
)

func validDraft() *models.ProductDraft {
	categoryID := "4f4f6f1e-0000-4000-8000-000000000001"
	return &models.ProductDraft{
		Name:        "Oslo Sofa",
		Slug:        "oslo-sofa",
		CategoryID:  &categoryID,
		Description: "A deep-seat sofa",
	}
}

func TestValidateDraft_Valid(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("SlugExists", "tenant-1", "oslo-sofa").Return(false, nil)

	validator := NewRowValidator(productRepo)
	errs := validator.ValidateDraft("tenant-1", validDraft())

	assert.Empty(t, errs)
	productRepo.AssertExpectations(t)
}

func TestValidateDraft_RequiredFields(t *testing.T) {
	productRepo := new(MockProductRepository)
	validator := NewRowValidator(productRepo)

	errs := validator.ValidateDraft("tenant-1", &models.ProductDraft{})

	assert.Contains(t, errs, "Name is required")
	assert.Contains(t, errs, "Slug is required")
	assert.Contains(t, errs, "Category is required")
	assert.Contains(t, errs, "Description is required")
}

func TestValidateDraft_UnresolvedCategoryNameNotDoubleReported(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("SlugExists", "tenant-1", "oslo-sofa").Return(false, nil)

	draft := validDraft()
	draft.CategoryID = nil
	draft.CategoryName = "Gazebos" // converter already reported the miss

	validator := NewRowValidator(productRepo)
	errs := validator.ValidateDraft("tenant-1", draft)

	assert.NotContains(t, errs, "Category is required")
	assert.Empty(t, errs)
}

func TestValidateDraft_SlugConflict(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("SlugExists", "tenant-1", "oslo-sofa").Return(true, nil)

	validator := NewRowValidator(productRepo)
	errs := validator.ValidateDraft("tenant-1", validDraft())

	assert.Contains(t, errs, `A product with the slug "oslo-sofa" already exists`)
}

func TestValidateDraft_SlugCheckError(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("SlugExists", "tenant-1", "oslo-sofa").Return(false, errors.New("connection refused"))

	validator := NewRowValidator(productRepo)
	errs := validator.ValidateDraft("tenant-1", validDraft())

	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Failed to check slug")
}

func TestValidateDraft_EmptySlugSkipsExistenceCheck(t *testing.T) {
	productRepo := new(MockProductRepository)

	draft := validDraft()
	draft.Slug = ""

	validator := NewRowValidator(productRepo)
	errs := validator.ValidateDraft("tenant-1", draft)

	assert.Contains(t, errs, "Slug is required")
	productRepo.AssertNotCalled(t, "SlugExists")
}

func TestSlugConflictMessageMatchesOverrideFilter(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("SlugExists", "tenant-1", "oslo-sofa").Return(true, nil)

	validator := NewRowValidator(productRepo)
	row := models.ImportRowResult{
		Errors: validator.ValidateDraft("tenant-1", validDraft()),
	}

	row.ClearSlugConflict()

	assert.True(t, row.Overridden)
	assert.True(t, row.Valid)
	assert.Empty(t, row.Errors)
}
