package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CategoriesHandler serves category CRUD plus the drag-and-drop reorder
// endpoint used by the admin UI.
type CategoriesHandler struct {
	repo repository.CategoryRepository
}

func NewCategoriesHandler(repo repository.CategoryRepository) *CategoriesHandler {
	return &CategoriesHandler{repo: repo}
}

// CreateCategory creates a new category
func (h *CategoriesHandler) CreateCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}

	category := categoryFromRequest(&req)
	if actor.ID != "" {
		category.CreatedBy = &actor.ID
		category.UpdatedBy = &actor.ID
	}

	exists, err := h.repo.SlugExists(tenantID, category.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to check slug"))
		return
	}
	if exists {
		c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeDuplicateSlug, "A category with this slug already exists"))
		return
	}

	if err := h.repo.Create(tenantID, category); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to create category"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": category})
}

// GetCategories lists categories ordered by position
func (h *CategoriesHandler) GetCategories(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	filters := models.CategoryFilters{Page: page, Limit: limit}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	if isActive := c.Query("isActive"); isActive != "" {
		v := isActive == "true"
		filters.IsActive = &v
	}

	categories, total, err := h.repo.List(tenantID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve categories"))
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success:    true,
		Data:       categories,
		Pagination: models.NewPaginationInfo(page, limit, total),
	})
}

// GetActiveCategories returns the storefront navigation list, uncapped
func (h *CategoriesHandler) GetActiveCategories(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	categories, err := h.repo.ListActive(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve categories"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

// GetCategory retrieves a single category by ID
func (h *CategoriesHandler) GetCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid category ID"))
		return
	}

	category, err := h.repo.GetByID(tenantID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Category not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve category"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": category})
}

// UpdateCategory updates a category
func (h *CategoriesHandler) UpdateCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid category ID"))
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}

	category := categoryFromRequest(&req)
	if actor.ID != "" {
		category.UpdatedBy = &actor.ID
	}

	if err := h.repo.Update(tenantID, categoryID, category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Category not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to update category"))
		return
	}

	updated, err := h.repo.GetByID(tenantID, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve category"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteCategory soft-deletes a category
func (h *CategoriesHandler) DeleteCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid category ID"))
		return
	}

	if err := h.repo.Delete(tenantID, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Category not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to delete category"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}

// ReorderCategories assigns new positions in one transaction
func (h *CategoriesHandler) ReorderCategories(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}
	if len(req.Order) == 0 {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Order must not be empty"))
		return
	}

	if err := h.repo.Reorder(tenantID, req.Order); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to reorder categories"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Categories reordered"})
}

// categoryFromRequest maps the create/update payload onto the model
func categoryFromRequest(req *models.CreateCategoryRequest) *models.Category {
	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if req.Slug != nil && *req.Slug != "" {
		category.Slug = *req.Slug
	} else {
		category.Slug = models.GenerateSlug(req.Name)
	}
	if req.Position != nil {
		category.Position = *req.Position
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	return category
}
