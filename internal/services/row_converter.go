package services

import (
	"fmt"
	"strconv"
	"strings"

	"storefront-service/internal/models"
)

// ConvertRow coerces one raw spreadsheet row into a ProductDraft using the
// reviewed field mapping and the tenant's known categories. Failures are
// collected per field; one bad cell never aborts the rest of the row.
func ConvertRow(row map[string]string, mapping map[string]string, categories []models.Category) (*models.ProductDraft, []string) {
	draft := &models.ProductDraft{
		ImageURL: models.DefaultProductImageURL,
		InStock:  true, // rows without a mapped inStock column are sellable
	}
	var errors []string

	cell := func(fieldKey string) (string, bool) {
		header, ok := mapping[fieldKey]
		if !ok || header == "" {
			return "", false
		}
		return strings.TrimSpace(row[header]), true
	}

	// Scalars
	if v, ok := cell("name"); ok {
		draft.Name = v
	}
	if v, ok := cell("description"); ok {
		draft.Description = v
	}
	if v, ok := cell("deliveryTime"); ok {
		draft.DeliveryTime = v
	}
	if v, ok := cell("warranty"); ok {
		draft.Warranty = v
	}
	if v, ok := cell("returnPolicy"); ok {
		draft.ReturnPolicy = v
	}

	// Price is left unset when the cell is not a number
	if v, ok := cell("price"); ok && v != "" {
		if price, err := strconv.ParseFloat(strings.TrimPrefix(v, "$"), 64); err == nil {
			draft.Price = &price
		}
	}

	// Slug: mapped value verbatim, else derived from name
	if v, ok := cell("slug"); ok && v != "" {
		draft.Slug = v
	} else {
		draft.Slug = models.GenerateSlug(draft.Name)
	}

	// Category resolved by exact name; a miss is recorded but does not
	// abort the row - the validator makes the final call.
	if v, ok := cell("category"); ok {
		draft.CategoryName = v
		resolved := false
		for i := range categories {
			if categories[i].Name == v {
				id := categories[i].ID.String()
				draft.CategoryID = &id
				resolved = true
				break
			}
		}
		if !resolved {
			errors = append(errors, fmt.Sprintf("Category not found: %s", v))
		}
	}

	// List fields
	if v, ok := cell("features"); ok {
		draft.Features = splitList(v)
	}
	if v, ok := cell("careInstructions"); ok {
		draft.CareInstructions = splitList(v)
	}

	// Booleans
	if v, ok := cell("inStock"); ok {
		draft.InStock = parseBool(v)
	}
	if v, ok := cell("weeklyBestSeller"); ok {
		draft.WeeklyBestSeller = parseBool(v)
	}

	// Variant content: materials and dimensions name the axes, the compound
	// fields fill in the pricing matrix and add-ons. Any of them lazily
	// creates the row's single variant.
	if v, ok := cell("materials"); ok && v != "" {
		variant := ensureVariant(draft)
		for _, name := range splitList(v) {
			variant.Materials = append(variant.Materials, models.Material{Name: name})
		}
	}
	if v, ok := cell("dimensions"); ok && v != "" {
		variant := ensureVariant(draft)
		for _, value := range splitList(v) {
			variant.Dimensions = append(variant.Dimensions, models.Dimension{Value: value})
		}
	}
	if v, ok := cell("materialDimensionPrices"); ok && v != "" {
		combinations := parseCombinations(v)
		if len(combinations) > 0 {
			ensureVariant(draft).Combinations = combinations
		}
	}
	if v, ok := cell("addOns"); ok && v != "" {
		addOns := parseAddOns(v)
		if len(addOns) > 0 {
			ensureVariant(draft).AddOns = addOns
		}
	}

	return draft, errors
}

// ensureVariant lazily creates the draft's single variant
func ensureVariant(draft *models.ProductDraft) *models.VariantRequest {
	if draft.Variant == nil {
		draft.Variant = &models.VariantRequest{}
	}
	return draft.Variant
}

// splitList splits a cell on ";", trims each part and drops empties
func splitList(value string) []string {
	parts := strings.Split(value, ";")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseBool accepts "true"/"yes"/"1" (case-insensitive) as true
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// parseCombinations parses Material|Dimension|Price|InStock entries.
// Price defaults to 0 when unparseable; InStock defaults to true when the
// fourth part is absent. Entries missing material or dimension are dropped.
func parseCombinations(value string) []models.Combination {
	var combinations []models.Combination
	for _, entry := range splitList(value) {
		parts := strings.Split(entry, "|")
		if len(parts) < 2 {
			continue
		}

		material := strings.TrimSpace(parts[0])
		dimension := strings.TrimSpace(parts[1])
		if material == "" || dimension == "" {
			continue
		}

		var price float64
		if len(parts) >= 3 {
			if p, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
				price = p
			}
		}

		inStock := true
		if len(parts) >= 4 {
			s := strings.ToLower(strings.TrimSpace(parts[3]))
			inStock = s == "true" || s == "yes"
		}

		combinations = append(combinations, models.Combination{
			MaterialName:   material,
			DimensionValue: dimension,
			Price:          price,
			InStock:        inStock,
		})
	}
	return combinations
}

// parseAddOns parses Name|Price entries. Price defaults to 0; nameless
// entries are dropped.
func parseAddOns(value string) []models.AddOn {
	var addOns []models.AddOn
	for _, entry := range splitList(value) {
		parts := strings.Split(entry, "|")
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}

		var price float64
		if len(parts) >= 2 {
			if p, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
				price = p
			}
		}

		addOns = append(addOns, models.AddOn{Name: name, Price: price})
	}
	return addOns
}
