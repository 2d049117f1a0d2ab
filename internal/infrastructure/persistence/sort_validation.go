package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// sortColumns whitelists the sort keys of a list endpoint. A key maps to one
// or more columns, so "name" on contacts sorts by first then last name.
// Only whitelisted column names ever reach ORDER BY.
type sortColumns map[string][]string

// resolve returns the columns for key, or those of def when key is unknown
func (s sortColumns) resolve(key, def string) []string {
	if cols, ok := s[strings.TrimSpace(key)]; ok {
		return cols
	}
	return s[def]
}

// orderBy builds the ORDER BY expression. id is appended so rows with equal
// values keep a stable order across pages.
func (s sortColumns) orderBy(key, dir, def string) string {
	cols := s.resolve(key, def)
	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, c+" "+dir)
	}
	if len(cols) != 1 || cols[0] != "id" {
		parts = append(parts, "id "+dir)
	}
	return strings.Join(parts, ", ")
}

func withTimestamps(s sortColumns) sortColumns {
	s["id"] = []string{"id"}
	s["created_at"] = []string{"created_at"}
	s["updated_at"] = []string{"updated_at"}
	return s
}

func single(keys ...string) sortColumns {
	s := make(sortColumns, len(keys)+3)
	for _, k := range keys {
		s[k] = []string{k}
	}
	return withTimestamps(s)
}

var (
	userSort = single("name", "email", "role", "active", "last_login_at")

	clientSort = single("code", "ruc", "business_name", "sector", "status",
		"potential_value", "close_probability", "last_contact_at")

	contactSort = func() sortColumns {
		s := single("first_name", "last_name", "email", "is_primary")
		s["name"] = []string{"first_name", "last_name"}
		return s
	}()

	visitSort = func() sortColumns {
		s := single("scheduled_at", "status", "type", "priority", "title", "completed_at")
		s["date"] = []string{"scheduled_at"}
		return s
	}()

	quotationSort = single("code", "issued_at", "expires_at", "total", "status")

	orderSort = single("code", "ordered_at", "expected_delivery_at", "total", "status")

	productSort = single("code", "name", "base_price", "unit")
)
