package services

import (
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// RowValidator checks converted drafts against required fields and existing
// catalog state. Duplicate slugs inside the same batch are intentionally not
// checked here; the database unique constraint catches those at commit time.
type RowValidator struct {
	productRepo repository.ProductRepository
}

func NewRowValidator(productRepo repository.ProductRepository) *RowValidator {
	return &RowValidator{productRepo: productRepo}
}

// ValidateDraft returns the list of validation errors for one draft. An empty
// list means the row is importable as-is.
func (v *RowValidator) ValidateDraft(tenantID string, draft *models.ProductDraft) []string {
	var errors []string

	if draft.Name == "" {
		errors = append(errors, "Name is required")
	}
	if draft.Slug == "" {
		errors = append(errors, "Slug is required")
	}
	if draft.CategoryID == nil {
		if draft.CategoryName == "" {
			errors = append(errors, "Category is required")
		}
		// an unresolved category name was already reported by the converter
	}
	if draft.Description == "" {
		errors = append(errors, "Description is required")
	}

	if draft.Slug != "" {
		exists, err := v.productRepo.SlugExists(tenantID, draft.Slug)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Failed to check slug: %v", err))
		} else if exists {
			errors = append(errors, fmt.Sprintf("%s %q already exists", slugConflictMessagePrefix, draft.Slug))
		}
	}

	return errors
}

// slugConflictMessagePrefix must stay in sync with the overwrite filter on
// ImportRowResult.
const slugConflictMessagePrefix = "A product with the slug"
