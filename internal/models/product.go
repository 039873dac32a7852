package models

import (
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultProductImageURL is applied to imported products until real
// imagery is uploaded through the media endpoints.
const DefaultProductImageURL = "https://images.unsplash.com/photo-1555041469-a586c61ea9bc?w=800&q=80"

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// StringList is a JSONB-backed list of strings (features, care instructions).
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Material is a variant material option (e.g. "Fabric", "Full-grain leather").
type Material struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Dimension is a variant size option (e.g. "2600mm", "3-seater").
type Dimension struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Combination prices one material/dimension pair and tracks its availability.
type Combination struct {
	MaterialName   string  `json:"materialName"`
	DimensionValue string  `json:"dimensionValue"`
	Price          float64 `json:"price"`
	InStock        bool    `json:"inStock"`
}

// AddOn is an optional extra sold with the product (e.g. "Ottoman").
type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Materials is the JSONB column type for []Material.
type Materials []Material

func (m Materials) Value() (driver.Value, error)  { return json.Marshal(m) }
func (m *Materials) Scan(value interface{}) error { return scanJSONB(value, m) }

// Dimensions is the JSONB column type for []Dimension.
type Dimensions []Dimension

func (d Dimensions) Value() (driver.Value, error)  { return json.Marshal(d) }
func (d *Dimensions) Scan(value interface{}) error { return scanJSONB(value, d) }

// Combinations is the JSONB column type for []Combination.
type Combinations []Combination

func (c Combinations) Value() (driver.Value, error)  { return json.Marshal(c) }
func (c *Combinations) Scan(value interface{}) error { return scanJSONB(value, c) }

// AddOns is the JSONB column type for []AddOn.
type AddOns []AddOn

func (a AddOns) Value() (driver.Value, error)  { return json.Marshal(a) }
func (a *AddOns) Scan(value interface{}) error { return scanJSONB(value, a) }

func scanJSONB(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, dest)
}

// Product represents a catalog product.
// Composite indexes on tenant_id with frequently filtered columns keep
// multi-tenant list queries fast.
type Product struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID         string          `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_slug,unique;index:idx_products_tenant_category"`
	Name             string          `json:"name" gorm:"not null"`
	Slug             string          `json:"slug" gorm:"not null;index:idx_products_tenant_slug,unique"`
	CategoryID       *uuid.UUID      `json:"categoryId,omitempty" gorm:"type:uuid;index:idx_products_tenant_category"`
	CategoryName     *string         `json:"categoryName,omitempty" gorm:"index"`
	Price            *float64        `json:"price,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Features         StringList      `json:"features" gorm:"type:jsonb"`
	CareInstructions StringList      `json:"careInstructions" gorm:"type:jsonb;column:care_instructions"`
	DeliveryTime     *string         `json:"deliveryTime,omitempty"`
	Warranty         *string         `json:"warranty,omitempty"`
	ReturnPolicy     *string         `json:"returnPolicy,omitempty"`
	// Pointers so an explicit false survives gorm's zero-value handling on
	// create (default: tag) and struct-based Updates.
	InStock          *bool           `json:"inStock" gorm:"not null;default:true"`
	WeeklyBestSeller *bool           `json:"weeklyBestSeller" gorm:"not null;default:false;index"`
	ImageURL         *string         `json:"imageUrl,omitempty" gorm:"column:image_url"`
	Variant          *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeletedAt        *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy        *string         `json:"createdBy,omitempty"`
	UpdatedBy        *string         `json:"updatedBy,omitempty"`
}

// ProductVariant holds the material/dimension pricing matrix and add-ons
// for a product. A product owns at most one variant row.
type ProductVariant struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID    uuid.UUID    `json:"productId" gorm:"type:uuid;not null;uniqueIndex"`
	Materials    Materials    `json:"materials" gorm:"type:jsonb"`
	Dimensions   Dimensions   `json:"dimensions" gorm:"type:jsonb"`
	Combinations Combinations `json:"combinations" gorm:"type:jsonb"`
	AddOns       AddOns       `json:"addOns" gorm:"type:jsonb;column:add_ons"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// CreateProductRequest is the admin create/update payload.
type CreateProductRequest struct {
	Name             string          `json:"name" binding:"required"`
	Slug             *string         `json:"slug,omitempty"`
	CategoryID       *string         `json:"categoryId,omitempty"`
	Price            *float64        `json:"price,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Features         []string        `json:"features,omitempty"`
	CareInstructions []string        `json:"careInstructions,omitempty"`
	DeliveryTime     *string         `json:"deliveryTime,omitempty"`
	Warranty         *string         `json:"warranty,omitempty"`
	ReturnPolicy     *string         `json:"returnPolicy,omitempty"`
	InStock          *bool           `json:"inStock,omitempty"`
	WeeklyBestSeller *bool           `json:"weeklyBestSeller,omitempty"`
	ImageURL         *string         `json:"imageUrl,omitempty"`
	Variant          *VariantRequest `json:"variant,omitempty"`
}

// VariantRequest mirrors ProductVariant for create/update payloads.
type VariantRequest struct {
	Materials    []Material    `json:"materials,omitempty"`
	Dimensions   []Dimension   `json:"dimensions,omitempty"`
	Combinations []Combination `json:"combinations,omitempty"`
	AddOns       []AddOn       `json:"addOns,omitempty"`
}

// ProductFilters narrows admin/storefront list queries.
type ProductFilters struct {
	CategoryID       *string
	Search           *string
	InStock          *bool
	WeeklyBestSeller *bool
	Page             int
	Limit            int
	SortBy           string
	SortOrder        string
}

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a display name into a URL slug: lowercase, runs of
// non-alphanumeric characters collapsed to a single hyphen, hyphens trimmed
// from both ends. Idempotent, so re-slugging a slug is a no-op.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = slugNonAlnum.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
