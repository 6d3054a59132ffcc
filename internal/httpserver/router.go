package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	authmw "github.com/Skotchmaster/crud_template/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/crud_template/internal/middleware/logging"
	"github.com/Skotchmaster/crud_template/internal/session"
)

type Deps struct {
	Prefix      string
	UserHandler *UserHTTP
	AuthHandler *AuthHTTP
	TokenAuth   *authmw.TokenAuth
	// Ready backs /health/ready. Nil means always ready.
	Ready func(ctx context.Context) error
}

// RouteGroup mounts one resource under the API prefix.
type RouteGroup func(api *echo.Group, d *Deps)

var routeGroups = []RouteGroup{
	userRoutes,
	authRoutes,
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"detail": "not ready"})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group(d.Prefix)
	for _, mount := range routeGroups {
		mount(api, d)
	}
}

func userRoutes(api *echo.Group, d *Deps) {
	g := api.Group("/user")
	h := d.UserHandler

	g.POST("", h.CreateUser)
	g.GET("/profile", h.Profile, d.TokenAuth.RequireAuth)
	g.POST("/update-password", h.UpdatePassword, d.TokenAuth.RequireAuth)
	g.PUT("/update-profile", h.UpdateProfile, d.TokenAuth.RequireAuth)

	g.GET("", h.ListUsers, d.TokenAuth.RequireRoot)
	g.GET("/search", h.SearchUsers, d.TokenAuth.RequireRoot)
	g.GET("/:id", h.GetUser, d.TokenAuth.RequireRoot)
	g.PUT("/:id", h.UpdateUser, d.TokenAuth.RequireRoot)
	g.DELETE("/:id", h.DeleteUser, d.TokenAuth.RequireRoot)
}

func authRoutes(api *echo.Group, d *Deps) {
	g := api.Group("/auth")
	h := d.AuthHandler

	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/swagger-login", h.SwaggerLogin)
}

type Options struct {
	Logger      *slog.Logger
	DB          *gorm.DB
	CORSOrigins []string
	GzipLevel   int
}

// New builds the echo instance with the shared middleware chain and every
// route group mounted.
func New(opts Options, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLoggerWithConfig(loggingmw.Config{
		Logger: opts.Logger,
		// health checks would drown the access log
		Skipper: func(c echo.Context) bool { return strings.HasPrefix(c.Path(), "/health/") },
	}))
	e.Use(middleware.Secure())

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if opts.GzipLevel != 0 {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: opts.GzipLevel, MinLength: 1000}))
	}
	e.Use(session.Middleware(opts.DB))

	Register(e, d)
	return e
}
