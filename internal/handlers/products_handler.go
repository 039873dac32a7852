package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/events"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ProductsHandler serves the admin product CRUD and the public storefront
// catalog endpoints.
type ProductsHandler struct {
	repo            repository.ProductRepository
	categoryRepo    repository.CategoryRepository
	eventsPublisher *events.Publisher
}

func NewProductsHandler(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, eventsPublisher *events.Publisher) *ProductsHandler {
	return &ProductsHandler{
		repo:            repo,
		categoryRepo:    categoryRepo,
		eventsPublisher: eventsPublisher,
	}
}

// CreateProduct creates a new product
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product"
// @Success 201 {object} map[string]interface{}
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}

	product := productFromRequest(&req)
	product.CreatedBy = &actor.ID
	product.UpdatedBy = &actor.ID

	if product.Slug == "" {
		product.Slug = models.GenerateSlug(product.Name)
	}
	exists, err := h.repo.SlugExists(tenantID, product.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to check slug"))
		return
	}
	if exists {
		c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeDuplicateSlug, "A product with this slug already exists"))
		return
	}

	if req.CategoryID != nil {
		if err := h.resolveCategory(tenantID, *req.CategoryID, product); err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
			return
		}
	}

	if err := h.repo.Create(tenantID, product); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to create product"))
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductCreated(c.Request.Context(), product, tenantID, actor, c.ClientIP(), c.Request.UserAgent())
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

// GetProducts retrieves the product list with filtering and pagination
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	filters := parseProductFilters(c)
	products, total, err := h.repo.List(tenantID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve products"))
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: models.NewPaginationInfo(filters.Page, filters.Limit, total),
	})
}

// GetProduct retrieves a single product by ID
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid product ID"))
		return
	}

	product, err := h.repo.GetByID(tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve product"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// GetProductBySlug retrieves a single product by slug (storefront)
func (h *ProductsHandler) GetProductBySlug(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	slug := c.Param("slug")

	product, err := h.repo.GetBySlug(tenantID, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve product"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// GetWeeklyBestSellers returns the storefront's featured product strip
func (h *ProductsHandler) GetWeeklyBestSellers(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	products, err := h.repo.GetWeeklyBestSellers(tenantID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve best sellers"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// UpdateProduct updates a product
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid product ID"))
		return
	}

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}

	existing, err := h.repo.GetByID(tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve product"))
		return
	}

	product := productFromRequest(&req)
	product.UpdatedBy = &actor.ID
	if product.Slug == "" {
		product.Slug = existing.Slug
	}
	if product.Slug != existing.Slug {
		exists, err := h.repo.SlugExists(tenantID, product.Slug)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to check slug"))
			return
		}
		if exists {
			c.JSON(http.StatusConflict, models.NewErrorResponse(models.ErrCodeDuplicateSlug, "A product with this slug already exists"))
			return
		}
	}

	if req.CategoryID != nil {
		if err := h.resolveCategory(tenantID, *req.CategoryID, product); err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
			return
		}
	}

	if err := h.repo.Update(tenantID, productID, product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to update product"))
		return
	}

	updated, err := h.repo.GetByID(tenantID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve product"))
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductUpdated(c.Request.Context(), updated, existing, nil, tenantID, actor, c.ClientIP(), c.Request.UserAgent())
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteProduct soft-deletes a product
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Invalid product ID"))
		return
	}

	product, err := h.repo.GetByID(tenantID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewErrorResponse(models.ErrCodeNotFound, "Product not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to retrieve product"))
		return
	}

	if err := h.repo.Delete(tenantID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodePersistenceFailed, "Failed to delete product"))
		return
	}

	if h.eventsPublisher != nil {
		_ = h.eventsPublisher.PublishProductDeleted(c.Request.Context(), product, tenantID, actor, c.ClientIP(), c.Request.UserAgent())
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
}

// resolveCategory validates the category and denormalizes its name
func (h *ProductsHandler) resolveCategory(tenantID string, categoryIDStr string, product *models.Product) error {
	categoryID, err := uuid.Parse(categoryIDStr)
	if err != nil {
		return errors.New("invalid category ID")
	}
	category, err := h.categoryRepo.GetByID(tenantID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("category not found")
		}
		return errors.New("failed to resolve category")
	}
	product.CategoryID = &category.ID
	product.CategoryName = &category.Name
	return nil
}

// productFromRequest maps the create/update payload onto the model
func productFromRequest(req *models.CreateProductRequest) *models.Product {
	product := &models.Product{
		Name:             req.Name,
		Price:            req.Price,
		Description:      req.Description,
		Features:         models.StringList(req.Features),
		CareInstructions: models.StringList(req.CareInstructions),
		DeliveryTime:     req.DeliveryTime,
		Warranty:         req.Warranty,
		ReturnPolicy:     req.ReturnPolicy,
		ImageURL:         req.ImageURL,
		// A nil InStock/WeeklyBestSeller lets the column default apply on
		// create and leaves the stored value untouched on update.
		InStock:          req.InStock,
		WeeklyBestSeller: req.WeeklyBestSeller,
	}
	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.Variant != nil {
		product.Variant = &models.ProductVariant{
			Materials:    req.Variant.Materials,
			Dimensions:   req.Variant.Dimensions,
			Combinations: req.Variant.Combinations,
			AddOns:       req.Variant.AddOns,
		}
	}
	return product
}

// parseProductFilters reads list query parameters
func parseProductFilters(c *gin.Context) models.ProductFilters {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filters := models.ProductFilters{
		Page:      page,
		Limit:     limit,
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		filters.CategoryID = &categoryID
	}
	if inStock := c.Query("inStock"); inStock != "" {
		v := inStock == "true"
		filters.InStock = &v
	}
	if best := c.Query("weeklyBestSeller"); best != "" {
		v := best == "true"
		filters.WeeklyBestSeller = &v
	}
	return filters
}
