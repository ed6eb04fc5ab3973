package domain

import (
	"strings"
)

// CategoryUncategorized is the deterministic fallback assigned whenever the
// categorization capability is unavailable or returns something outside the
// taxonomy.
const CategoryUncategorized = "Uncategorized"

// Categories is the fixed taxonomy every committed transaction draws from.
var Categories = []string{
	"Revenue",
	"COGS",
	"Payroll",
	"Rent",
	"Software",
	"Marketing",
	"Travel",
	"Utilities",
	CategoryUncategorized,
	"Operational",
	"Financial",
	"Legal",
}

var categorySet = func() map[string]string {
	m := make(map[string]string, len(Categories))
	for _, c := range Categories {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// CanonicalCategory maps a loosely-cased category name onto the taxonomy.
// Anything outside the taxonomy degrades to Uncategorized.
func CanonicalCategory(name string) string {
	if c, ok := categorySet[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return CategoryUncategorized
}

// IsValidCategory reports whether name is a taxonomy member (case-insensitive).
func IsValidCategory(name string) bool {
	_, ok := categorySet[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
