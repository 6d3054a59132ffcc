package transport

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/crud_template/internal/query"
)

var userOrderFields = []string{"username", "name", "email"}

// UserFilter is built from the username__ilike and order_by query params.
type UserFilter struct {
	UsernameILike string
	OrderBy       []clause.OrderByColumn
}

func NewUserFilter(usernameILike, orderBy string) (*UserFilter, error) {
	cols, err := query.ParseOrder(orderBy, userOrderFields...)
	if err != nil {
		return nil, err
	}
	return &UserFilter{UsernameILike: usernameILike, OrderBy: cols}, nil
}

func (f *UserFilter) Apply(db *gorm.DB) *gorm.DB {
	return query.ILike(db, "username", f.UsernameILike)
}

func (f *UserFilter) Sort(db *gorm.DB) *gorm.DB {
	if len(f.OrderBy) == 0 {
		return db.Order("id")
	}
	// id breaks ties so pages stay disjoint
	cols := append(append([]clause.OrderByColumn{}, f.OrderBy...), clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	return query.OrderBy(db, cols)
}
