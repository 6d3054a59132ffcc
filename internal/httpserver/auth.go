package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/auth"
	"github.com/Skotchmaster/crud_template/internal/events"
	"github.com/Skotchmaster/crud_template/internal/logging"
	"github.com/Skotchmaster/crud_template/internal/session"
	"github.com/Skotchmaster/crud_template/internal/transport"
)

type AuthHTTP struct {
	Svc    *auth.Service
	Events events.Publisher
}

func (h *AuthHTTP) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return apperror.BadRequest("invalid body")
	}
	return h.login(c, req)
}

// SwaggerLogin takes the OAuth2 password flow form used by API explorers.
func (h *AuthHTTP) SwaggerLogin(c echo.Context) error {
	req := transport.LoginRequest{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	return h.login(c, req)
}

func (h *AuthHTTP) login(c echo.Context, req transport.LoginRequest) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login", "username", req.Username)

	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, u, err := h.Svc.Login(ctx, session.FromContext(c), req.Username, req.Password)
	if err != nil {
		l.Warn("login_failed", "status", apperror.Status(err), "error", err)
		return err
	}

	if h.Events != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
		defer cancel()
		if err := h.Events.Publish(pctx, events.Event{Type: events.UserLoggedIn, UserID: u.ID, Username: u.Username}); err != nil {
			l.Warn("publish_event_failed", "type", events.UserLoggedIn, "error", err)
		}
	}

	l.Info("login_successful", "user_id", u.ID)
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return apperror.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.Svc.Refresh(ctx, session.FromContext(c), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}
