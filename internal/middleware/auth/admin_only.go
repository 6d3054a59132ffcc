package authmw

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/logging"
)

// RequireRoot runs RequireAuth and then rejects non root users.
func (m *TokenAuth) RequireRoot(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok || !claims.Root {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 403, "reason", "not root")
			return apperror.New(apperror.ErrPermissionDenied, "Require root user.")
		}
		return next(c)
	})
}
