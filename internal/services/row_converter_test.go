package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
)

func identityMapping(fields ...string) map[string]string {
	mapping := make(map[string]string, len(fields))
	for _, f := range fields {
		mapping[f] = f
	}
	return mapping
}

func TestConvertRow_Scalars(t *testing.T) {
	row := map[string]string{
		"name":         "Oslo 3-Seater Sofa",
		"description":  "A deep-seat sofa in brushed oak",
		"deliveryTime": "4-6 weeks",
		"warranty":     "10 year frame warranty",
		"returnPolicy": "30 day returns",
	}
	mapping := identityMapping("name", "description", "deliveryTime", "warranty", "returnPolicy")

	draft, errs := ConvertRow(row, mapping, nil)

	assert.Empty(t, errs)
	assert.Equal(t, "Oslo 3-Seater Sofa", draft.Name)
	assert.Equal(t, "A deep-seat sofa in brushed oak", draft.Description)
	assert.Equal(t, "4-6 weeks", draft.DeliveryTime)
	assert.Equal(t, "10 year frame warranty", draft.Warranty)
	assert.Equal(t, "30 day returns", draft.ReturnPolicy)
	assert.Equal(t, models.DefaultProductImageURL, draft.ImageURL)
}

func TestConvertRow_MappedHeaderNames(t *testing.T) {
	row := map[string]string{
		"Product Name": "Bergen Chair",
		"Details":      "A compact armchair",
	}
	mapping := map[string]string{
		"name":        "Product Name",
		"description": "Details",
	}

	draft, _ := ConvertRow(row, mapping, nil)

	assert.Equal(t, "Bergen Chair", draft.Name)
	assert.Equal(t, "A compact armchair", draft.Description)
}

func TestConvertRow_Price(t *testing.T) {
	mapping := identityMapping("price")

	draft, errs := ConvertRow(map[string]string{"price": "1299.99"}, mapping, nil)
	require.NotNil(t, draft.Price)
	assert.Equal(t, 1299.99, *draft.Price)
	assert.Empty(t, errs)

	draft, errs = ConvertRow(map[string]string{"price": "$449.50"}, mapping, nil)
	require.NotNil(t, draft.Price)
	assert.Equal(t, 449.50, *draft.Price)
	assert.Empty(t, errs)

	// A non-numeric price is dropped without an error
	draft, errs = ConvertRow(map[string]string{"price": "call for pricing"}, mapping, nil)
	assert.Nil(t, draft.Price)
	assert.Empty(t, errs)

	draft, _ = ConvertRow(map[string]string{"price": ""}, mapping, nil)
	assert.Nil(t, draft.Price)
}

func TestConvertRow_Slug(t *testing.T) {
	mapping := identityMapping("name", "slug")

	draft, _ := ConvertRow(map[string]string{"name": "Oslo Sofa", "slug": "custom-slug"}, mapping, nil)
	assert.Equal(t, "custom-slug", draft.Slug)

	draft, _ = ConvertRow(map[string]string{"name": "Oslo 3-Seater Sofa!", "slug": ""}, mapping, nil)
	assert.Equal(t, "oslo-3-seater-sofa", draft.Slug)
}

func TestConvertRow_CategoryResolved(t *testing.T) {
	categoryID := uuid.New()
	categories := []models.Category{
		{ID: uuid.New(), Name: "Chairs"},
		{ID: categoryID, Name: "Sofas"},
	}
	mapping := identityMapping("category")

	draft, errs := ConvertRow(map[string]string{"category": "Sofas"}, mapping, categories)

	assert.Empty(t, errs)
	assert.Equal(t, "Sofas", draft.CategoryName)
	require.NotNil(t, draft.CategoryID)
	assert.Equal(t, categoryID.String(), *draft.CategoryID)
}

func TestConvertRow_CategoryNotFound(t *testing.T) {
	categories := []models.Category{{ID: uuid.New(), Name: "Sofas"}}
	mapping := identityMapping("category")

	draft, errs := ConvertRow(map[string]string{"category": "Gazebos"}, mapping, categories)

	assert.Nil(t, draft.CategoryID)
	assert.Equal(t, "Gazebos", draft.CategoryName)
	assert.Contains(t, errs, "Category not found: Gazebos")
}

func TestConvertRow_Lists(t *testing.T) {
	row := map[string]string{
		"features":         "Removable covers; FSC-certified frame ;;",
		"careInstructions": "Vacuum weekly",
	}
	mapping := identityMapping("features", "careInstructions")

	draft, _ := ConvertRow(row, mapping, nil)

	assert.Equal(t, []string{"Removable covers", "FSC-certified frame"}, draft.Features)
	assert.Equal(t, []string{"Vacuum weekly"}, draft.CareInstructions)
}

func TestConvertRow_Booleans(t *testing.T) {
	mapping := identityMapping("inStock", "weeklyBestSeller")

	cases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"Yes", true},
		{"1", true},
		{"TRUE", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"", false},
		{"maybe", false},
	}
	for _, tc := range cases {
		draft, _ := ConvertRow(map[string]string{"inStock": tc.value, "weeklyBestSeller": tc.value}, mapping, nil)
		assert.Equal(t, tc.expected, draft.InStock, "inStock %q", tc.value)
		assert.Equal(t, tc.expected, draft.WeeklyBestSeller, "weeklyBestSeller %q", tc.value)
	}
}

func TestConvertRow_UnmappedInStockDefaultsTrue(t *testing.T) {
	draft, _ := ConvertRow(map[string]string{"name": "Oslo Sofa"}, identityMapping("name"), nil)

	assert.True(t, draft.InStock)
	assert.False(t, draft.WeeklyBestSeller)
}

func TestConvertRow_MaterialsAndDimensions(t *testing.T) {
	row := map[string]string{
		"materials":  "Fabric;Leather",
		"dimensions": "2600mm;3000mm",
	}
	mapping := identityMapping("materials", "dimensions")

	draft, _ := ConvertRow(row, mapping, nil)

	require.NotNil(t, draft.Variant)
	require.Len(t, draft.Variant.Materials, 2)
	assert.Equal(t, "Fabric", draft.Variant.Materials[0].Name)
	assert.Equal(t, "Leather", draft.Variant.Materials[1].Name)
	require.Len(t, draft.Variant.Dimensions, 2)
	assert.Equal(t, "2600mm", draft.Variant.Dimensions[0].Value)
	assert.Equal(t, "3000mm", draft.Variant.Dimensions[1].Value)
}

func TestConvertRow_Combinations(t *testing.T) {
	row := map[string]string{
		"materialDimensionPrices": "Fabric|2600mm|1299.99|true;Leather|3000mm|1799.99|false",
	}
	mapping := identityMapping("materialDimensionPrices")

	draft, _ := ConvertRow(row, mapping, nil)

	require.NotNil(t, draft.Variant)
	require.Len(t, draft.Variant.Combinations, 2)
	assert.Equal(t, models.Combination{
		MaterialName:   "Fabric",
		DimensionValue: "2600mm",
		Price:          1299.99,
		InStock:        true,
	}, draft.Variant.Combinations[0])
	assert.Equal(t, models.Combination{
		MaterialName:   "Leather",
		DimensionValue: "3000mm",
		Price:          1799.99,
		InStock:        false,
	}, draft.Variant.Combinations[1])
}

func TestConvertRow_CombinationDefaults(t *testing.T) {
	mapping := identityMapping("materialDimensionPrices")

	// No price or stock parts: price 0, in stock
	draft, _ := ConvertRow(map[string]string{"materialDimensionPrices": "Fabric|2600mm"}, mapping, nil)
	require.NotNil(t, draft.Variant)
	require.Len(t, draft.Variant.Combinations, 1)
	assert.Equal(t, 0.0, draft.Variant.Combinations[0].Price)
	assert.True(t, draft.Variant.Combinations[0].InStock)

	// Unparseable price defaults to 0
	draft, _ = ConvertRow(map[string]string{"materialDimensionPrices": "Fabric|2600mm|expensive|yes"}, mapping, nil)
	require.Len(t, draft.Variant.Combinations, 1)
	assert.Equal(t, 0.0, draft.Variant.Combinations[0].Price)
	assert.True(t, draft.Variant.Combinations[0].InStock)
}

func TestConvertRow_CombinationMissingAxesDropped(t *testing.T) {
	mapping := identityMapping("materialDimensionPrices")

	draft, _ := ConvertRow(map[string]string{
		"materialDimensionPrices": "Fabric;|2600mm|100;Fabric||100;Leather|3000mm|200",
	}, mapping, nil)

	require.NotNil(t, draft.Variant)
	require.Len(t, draft.Variant.Combinations, 1)
	assert.Equal(t, "Leather", draft.Variant.Combinations[0].MaterialName)
}

func TestConvertRow_AddOns(t *testing.T) {
	mapping := identityMapping("addOns")

	draft, _ := ConvertRow(map[string]string{"addOns": "Ottoman|349.99;Headrest|129.99"}, mapping, nil)

	require.NotNil(t, draft.Variant)
	require.Len(t, draft.Variant.AddOns, 2)
	assert.Equal(t, models.AddOn{Name: "Ottoman", Price: 349.99}, draft.Variant.AddOns[0])
	assert.Equal(t, models.AddOn{Name: "Headrest", Price: 129.99}, draft.Variant.AddOns[1])
}

func TestConvertRow_AddOnWithoutNameDropped(t *testing.T) {
	mapping := identityMapping("addOns")

	draft, _ := ConvertRow(map[string]string{"addOns": "|349.99;Ottoman"}, mapping, nil)

	require.NotNil(t, draft.Variant)
	require.Len(t, draft.Variant.AddOns, 1)
	assert.Equal(t, "Ottoman", draft.Variant.AddOns[0].Name)
	assert.Equal(t, 0.0, draft.Variant.AddOns[0].Price)
}

func TestConvertRow_NoVariantFieldsNoVariant(t *testing.T) {
	mapping := identityMapping("name", "description")

	draft, _ := ConvertRow(map[string]string{"name": "Oslo Sofa", "description": "x"}, mapping, nil)

	assert.Nil(t, draft.Variant)
}

func TestConvertRow_UnmappedFieldsIgnored(t *testing.T) {
	row := map[string]string{
		"name":  "Oslo Sofa",
		"price": "1299.99",
	}
	mapping := identityMapping("name")

	draft, _ := ConvertRow(row, mapping, nil)

	assert.Equal(t, "Oslo Sofa", draft.Name)
	assert.Nil(t, draft.Price)
}
