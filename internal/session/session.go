// Package session hands every request its own database handle bound to the
// request context.
package session

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const contextKey = "db_session"

func Middleware(db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextKey, db.WithContext(c.Request().Context()))
			return next(c)
		}
	}
}

// FromContext returns the request session. It panics when the middleware is
// not installed, that is a wiring bug and not a request error.
func FromContext(c echo.Context) *gorm.DB {
	tx, ok := c.Get(contextKey).(*gorm.DB)
	if !ok {
		panic("session: middleware not installed")
	}
	return tx
}
