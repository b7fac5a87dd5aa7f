package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ExchangeOrderSortFields contains allowed sort fields for exchange orders
var ExchangeOrderSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"order_number":        true,
	"valuation_date":      true,
	"status":              true,
	"total_credit_amount": true,
	"completed_at":        true,
}

// RateRecordSortFields contains allowed sort fields for rate records
var RateRecordSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"seq":            true,
	"effective_date": true,
	"unit_rate":      true,
}
