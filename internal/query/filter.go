package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/crud_template/internal/apperror"
)

// Filter narrows the base list query before it is counted and paged.
type Filter interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Sorter is implemented by filters that also decide the page order.
type Sorter interface {
	Sort(db *gorm.DB) *gorm.DB
}

type FilterFunc func(db *gorm.DB) *gorm.DB

func (f FilterFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ILike adds a case-insensitive substring match on column. LOWER/LIKE is used
// instead of ILIKE so the same query runs on sqlite.
func ILike(db *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return db
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
	return db.Where(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), pattern)
}

// ParseOrder turns "name,-username" into order columns. Only allowed fields
// are accepted.
func ParseOrder(raw string, allowed ...string) ([]clause.OrderByColumn, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}

	var cols []clause.OrderByColumn
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := false
		switch part[0] {
		case '-':
			desc, part = true, part[1:]
		case '+':
			part = part[1:]
		}
		if _, found := ok[part]; !found {
			return nil, apperror.BadRequest(fmt.Sprintf("cannot order by %q", part))
		}
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: part}, Desc: desc})
	}
	return cols, nil
}

func OrderBy(db *gorm.DB, cols []clause.OrderByColumn) *gorm.DB {
	if len(cols) == 0 {
		return db
	}
	return db.Order(clause.OrderBy{Columns: cols})
}
