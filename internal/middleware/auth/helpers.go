package authmw

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/auth"
)

const claimsKey = "claims"

var errNotAuthenticated = apperror.New(apperror.ErrAuthenticationFailed, "Not authenticated")

// Verifier is satisfied by *auth.TokenManager.
type Verifier interface {
	Verify(raw, expectedType string) (*auth.Claims, error)
}

type TokenAuth struct {
	Tokens Verifier
}

func New(tokens Verifier) *TokenAuth {
	return &TokenAuth{Tokens: tokens}
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
