package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// ImportHandler drives the spreadsheet import flow: template download, file
// upload and parse, mapping review, row preview and the final commit.
type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// GetImportTemplate returns the import template in the requested format
// @Summary Download product import template
// @Tags import
// @Param format query string false "Template format: xlsx, csv or json" default(xlsx)
// @Router /products/import/template [get]
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))

	switch format {
	case "json":
		c.JSON(http.StatusOK, gin.H{"success": true, "data": models.ProductImportTemplate()})

	case "csv":
		data, err := h.importService.BuildCSVTemplate()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to generate template"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="product-import-template.csv"`)
		c.Data(http.StatusOK, "text/csv", data)

	case "xlsx":
		f, err := h.importService.BuildXLSXTemplate(tenantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to generate template"))
			return
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to write template"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="product-import-template.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported template format: %s", format)))
	}
}

// UploadFile parses an uploaded spreadsheet and returns its content together
// with the suggested field mapping. Parse problems are reported inside the
// payload so the client can show them next to the data.
func (h *ImportHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeFileRequired, "No file uploaded. Use multipart field 'file'."))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeParseError, "Failed to open uploaded file"))
		return
	}
	defer file.Close()

	var data *services.WorkbookData
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		data = services.ParseCSV(file)
	case ".xlsx", ".xlsm":
		if sheet := c.Query("sheet"); sheet != "" {
			data = services.ParseSheet(file, sheet)
		} else {
			data = services.ParseWorkbook(file)
		}
	default:
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeInvalidFormat,
			fmt.Sprintf("Unsupported file type: %s. Upload .xlsx or .csv.", filepath.Ext(fileHeader.Filename))))
		return
	}

	if len(data.Rows) == 0 && len(data.Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"data":    data,
		})
		return
	}

	mapping := services.AutoMapFields(data.Headers)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"mapping": gin.H{
			"fields":   mapping,
			"complete": services.MappingComplete(mapping),
		},
	})
}

// PreviewRequest carries parsed rows plus the reviewed mapping.
type PreviewRequest struct {
	Rows    []map[string]string `json:"rows" binding:"required"`
	Mapping map[string]string   `json:"mapping" binding:"required"`
}

// PreviewRows converts and validates rows without persisting anything
func (h *ImportHandler) PreviewRows(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}
	if !services.MappingComplete(req.Mapping) {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Mapping is missing required fields"))
		return
	}

	results, err := h.importService.PreviewRows(tenantID, req.Rows, req.Mapping)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to preview rows"))
		return
	}

	validCount := 0
	for _, r := range results {
		if r.Valid {
			validCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
		"summary": gin.H{
			"total":   len(results),
			"valid":   validCount,
			"invalid": len(results) - validCount,
		},
	})
}

// CommitRequest carries the rows to import. Override indices name the
// preview rows whose duplicate-slug errors the reviewer chose to overwrite.
type CommitRequest struct {
	Rows            []map[string]string `json:"rows" binding:"required"`
	Mapping         map[string]string   `json:"mapping" binding:"required"`
	OverrideIndices []int               `json:"overrideIndices,omitempty"`
}

// CommitImport re-runs conversion and validation server-side, applies the
// reviewer's overwrite choices and persists the valid rows.
func (h *ImportHandler) CommitImport(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	actor := middleware.GetActor(c)

	if !actor.IsAuthenticated() {
		c.JSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, "Authentication required for product import"))
		return
	}

	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, err.Error()))
		return
	}
	if !services.MappingComplete(req.Mapping) {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeValidationFailed, "Mapping is missing required fields"))
		return
	}

	results, err := h.importService.PreviewRows(tenantID, req.Rows, req.Mapping)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(models.ErrCodeInternalError, "Failed to process rows"))
		return
	}

	for _, idx := range req.OverrideIndices {
		if idx >= 0 && idx < len(results) {
			results[idx].ClearSlugConflict()
		}
	}

	result := h.importService.ImportProducts(c.Request.Context(), tenantID, actor, results)

	status := http.StatusOK
	if !result.Success {
		if result.CreatedCount == 0 && result.FailedCount == 0 {
			status = http.StatusBadRequest
		} else {
			status = http.StatusUnprocessableEntity
		}
	}
	c.JSON(status, result)
}
