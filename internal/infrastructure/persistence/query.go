package persistence

import (
	"errors"
	"strings"

	"github.com/salescrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// likePattern builds a case-insensitive LIKE pattern, escaping wildcards
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(search))) + "%"
}

// searchAny matches the search term against several columns with LOWER(...) LIKE,
// which works on both PostgreSQL and SQLite
func searchAny(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if strings.TrimSpace(search) == "" || len(columns) == 0 {
		return query
	}
	pattern := likePattern(search)
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// paginate applies ordering and paging from the filter
func paginate(query *gorm.DB, filter shared.Filter, sort sortColumns, defaultKey string) *gorm.DB {
	query = query.Order(sort.orderBy(filter.OrderBy, ValidateSortOrder(filter.OrderDir), defaultKey))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// translateNotFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
