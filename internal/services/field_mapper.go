package services

import (
	"strings"

	"storefront-service/internal/models"
)

// AutoMapFields proposes a fieldKey -> headerName mapping for the canonical
// product field catalog against a spreadsheet's header row. Exact
// case-insensitive matches win; otherwise a substring match in either
// direction is accepted; otherwise the field stays unmapped. The result is
// meant to be reviewed and edited by a human before conversion.
func AutoMapFields(headers []string) map[string]string {
	mapping := make(map[string]string)

	for _, column := range models.ProductImportColumns() {
		key := strings.ToLower(column.Name)

		// Exact match first
		matched := ""
		for _, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), column.Name) {
				matched = header
				break
			}
		}

		// Substring match in either direction
		if matched == "" {
			for _, header := range headers {
				h := strings.ToLower(strings.TrimSpace(header))
				if h == "" {
					continue
				}
				if strings.Contains(h, key) || strings.Contains(key, h) {
					matched = header
					break
				}
			}
		}

		if matched != "" {
			mapping[column.Name] = matched
		}
	}

	return mapping
}

// MappingComplete reports whether every required field of the catalog maps
// to a non-empty header. Optional fields may stay unmapped.
func MappingComplete(mapping map[string]string) bool {
	for _, column := range models.ProductImportColumns() {
		if !column.Required {
			continue
		}
		if strings.TrimSpace(mapping[column.Name]) == "" {
			return false
		}
	}
	return true
}
