package authmw

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/crud_template/internal/auth"
	"github.com/Skotchmaster/crud_template/internal/logging"
)

// RequireAuth accepts only a valid access token in the Authorization header.
func (m *TokenAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		l := logging.FromContext(req.Context())

		raw, ok := bearerToken(c)
		if !ok {
			l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
			return errNotAuthenticated
		}

		claims, err := m.Tokens.Verify(raw, auth.TypeAccess)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "error", err)
			return err
		}

		c.Set(claimsKey, claims)
		l = l.With("user_id", claims.UserID.String())
		c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

		return next(c)
	}
}
