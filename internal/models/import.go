package models

import "strings"

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean, list, compound
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ProductImportColumns returns the canonical product field catalog. AutoMapFields
// matches spreadsheet headers against the Name keys; Required gates mapping
// completion.
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Oslo 3-Seater Sofa"},
		{Name: "slug", Description: "URL slug - derived from name when empty", Required: false, Type: "string", Example: "oslo-3-seater-sofa"},
		{Name: "category", Description: "Category name - must match an existing category", Required: true, Type: "string", Example: "Sofas"},
		{Name: "price", Description: "Base price - left unset if not a number", Required: false, Type: "number", Example: "1299.99"},
		{Name: "description", Description: "Product description", Required: true, Type: "string", Example: "A deep-seat sofa in brushed oak"},
		{Name: "features", Description: "Semicolon-separated feature list", Required: false, Type: "list", Example: "Removable covers;FSC-certified frame"},
		{Name: "careInstructions", Description: "Semicolon-separated care instructions", Required: false, Type: "list", Example: "Vacuum weekly;Professional clean only"},
		{Name: "deliveryTime", Description: "Delivery estimate shown on the product page", Required: false, Type: "string", Example: "4-6 weeks"},
		{Name: "warranty", Description: "Warranty text", Required: false, Type: "string", Example: "10 year frame warranty"},
		{Name: "returnPolicy", Description: "Return policy text", Required: false, Type: "string", Example: "30 day returns"},
		{Name: "inStock", Description: "true/yes/1 for in stock", Required: false, Type: "boolean", Example: "true"},
		{Name: "weeklyBestSeller", Description: "true/yes/1 to feature in weekly best sellers", Required: false, Type: "boolean", Example: "false"},
		{Name: "materials", Description: "Semicolon-separated material names", Required: false, Type: "list", Example: "Fabric;Leather"},
		{Name: "dimensions", Description: "Semicolon-separated dimension values", Required: false, Type: "list", Example: "2600mm;3000mm"},
		{Name: "materialDimensionPrices", Description: "Material|Dimension|Price|InStock entries separated by semicolons", Required: false, Type: "compound", Example: "Fabric|2600mm|1299.99|true;Leather|3000mm|1799.99|false"},
		{Name: "addOns", Description: "Name|Price entries separated by semicolons", Required: false, Type: "compound", Example: "Ottoman|349.99;Headrest|129.99"},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}

// ProductDraft is the in-flight product built from one spreadsheet row,
// before validation and persistence.
type ProductDraft struct {
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	CategoryName     string          `json:"categoryName"`
	CategoryID       *string         `json:"categoryId,omitempty"`
	Price            *float64        `json:"price,omitempty"`
	Description      string          `json:"description"`
	Features         []string        `json:"features,omitempty"`
	CareInstructions []string        `json:"careInstructions,omitempty"`
	DeliveryTime     string          `json:"deliveryTime,omitempty"`
	Warranty         string          `json:"warranty,omitempty"`
	ReturnPolicy     string          `json:"returnPolicy,omitempty"`
	InStock          bool            `json:"inStock"`
	WeeklyBestSeller bool            `json:"weeklyBestSeller"`
	ImageURL         string          `json:"imageUrl"`
	Variant          *VariantRequest `json:"variant,omitempty"`
}

// ImportRowResult ties one raw spreadsheet row to its converted draft and
// accumulated errors, for client-side review before committing.
type ImportRowResult struct {
	Index      int               `json:"index"`
	Raw        map[string]string `json:"raw"`
	Draft      *ProductDraft     `json:"draft,omitempty"`
	Errors     []string          `json:"errors"`
	Valid      bool              `json:"valid"`
	Overridden bool              `json:"overridden"`

	// clearedErrors holds slug-conflict messages removed by ClearSlugConflict
	// so RestoreErrors can put them back. Unexported so it never leaks into
	// API responses.
	clearedErrors []string
}

// slugConflictPrefix matches the validator's duplicate-slug message.
const slugConflictPrefix = "A product with the slug"

// ClearSlugConflict removes duplicate-slug errors from the row so a reviewer
// can elect to overwrite the existing product. Other errors are kept and the
// removed ones are remembered for RestoreErrors.
func (r *ImportRowResult) ClearSlugConflict() {
	kept := make([]string, 0, len(r.Errors))
	cleared := false
	for _, e := range r.Errors {
		if strings.HasPrefix(e, slugConflictPrefix) {
			cleared = true
			r.clearedErrors = append(r.clearedErrors, e)
			continue
		}
		kept = append(kept, e)
	}
	if cleared {
		r.Errors = kept
		r.Valid = len(kept) == 0
		r.Overridden = true
	}
}

// RestoreErrors undoes ClearSlugConflict, putting the row back in its
// original rejected state.
func (r *ImportRowResult) RestoreErrors() {
	if !r.Overridden {
		return
	}
	r.Errors = append(r.Errors, r.clearedErrors...)
	r.clearedErrors = nil
	r.Valid = false
	r.Overridden = false
}

// ImportRowOutcome is the per-row outcome of an import commit.
type ImportRowOutcome struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BulkImportResult is the aggregate outcome of an import commit. Success
// means at least one row was created.
type BulkImportResult struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	CreatedCount int                `json:"createdCount"`
	FailedCount  int                `json:"failedCount"`
	Results      []ImportRowOutcome `json:"results"`
}
