package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/auth"
	"github.com/Skotchmaster/crud_template/internal/cache"
	"github.com/Skotchmaster/crud_template/internal/events"
	"github.com/Skotchmaster/crud_template/internal/logging"
	authmw "github.com/Skotchmaster/crud_template/internal/middleware/auth"
	"github.com/Skotchmaster/crud_template/internal/models"
	"github.com/Skotchmaster/crud_template/internal/query"
	"github.com/Skotchmaster/crud_template/internal/search"
	"github.com/Skotchmaster/crud_template/internal/session"
	"github.com/Skotchmaster/crud_template/internal/transport"
)

const sideEffectTimeout = 5 * time.Second

// UserIndex is the search side of the user directory. *search.Index
// implements it.
type UserIndex interface {
	Put(ctx context.Context, u models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, from, size int) (int64, []search.Document, error)
}

type UserHTTP struct {
	Auth   *auth.Service
	Events events.Publisher
	// Index is nil when search is disabled.
	Index UserIndex
	Cache *cache.ViewCache[transport.UserRead]
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var in transport.UserCreate
	if err := c.Bind(&in); err != nil {
		l.Warn("create_user_failed", "status", 400, "reason", "invalid body", "error", err)
		return apperror.BadRequest("invalid body")
	}
	if err := c.Validate(&in); err != nil {
		l.Warn("create_user_failed", "status", 400, "reason", "validation", "error", err)
		return err
	}

	hash, err := h.Auth.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("create_user_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}
	in.Password = hash

	u, err := query.New[models.User](session.FromContext(c)).Create(ctx, in)
	if err != nil {
		l.Warn("create_user_failed", "status", apperror.Status(err), "error", err)
		return err
	}

	h.publish(ctx, events.UserCreated, *u)
	h.reindex(ctx, *u)
	l.Info("user_created", "user_id", u.ID)
	return c.JSON(http.StatusOK, transport.NewUserRead(*u))
}

func (h *UserHTTP) Profile(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	view, err := h.readUser(c, claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *UserHTTP) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update_password")

	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var in transport.PasswordChange
	if err := c.Bind(&in); err != nil {
		l.Warn("update_password_failed", "status", 400, "reason", "invalid body", "error", err)
		return apperror.BadRequest("invalid body")
	}
	if in.OldPassword == "" && in.NewPassword == "" {
		// older clients send both passwords as query params
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &in); err != nil {
			return apperror.BadRequest("invalid query")
		}
	}
	if err := c.Validate(&in); err != nil {
		return err
	}

	tx := session.FromContext(c)
	if err := h.Auth.UpdatePassword(ctx, tx, claims.UserID, in.OldPassword, in.NewPassword); err != nil {
		return err
	}

	h.publish(ctx, events.UserPasswordChanged, models.User{ID: claims.UserID, Username: claims.Username})
	h.Cache.Delete(ctx, claims.UserID.String())
	l.Info("password_changed")
	return c.JSON(http.StatusOK, query.GeneralResponse{Detail: "Password changed successfully."})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	view, err := h.readUser(c, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_list")

	page, err := query.ParsePage(c.QueryParam("page_index"), c.QueryParam("page_size"))
	if err != nil {
		return err
	}
	filter, err := transport.NewUserFilter(c.QueryParam("username__ilike"), c.QueryParam("order_by"))
	if err != nil {
		return err
	}

	res, err := query.New[models.User](session.FromContext(c)).List(ctx, page, filter)
	if err != nil {
		l.Warn("list_users_failed", "status", apperror.Status(err), "error", err)
		return err
	}
	return c.JSON(http.StatusOK, query.Map(res, transport.NewUserRead))
}

// SearchUsers runs a fuzzy search on the index. Without an index it falls back
// to a username substring match in the database.
func (h *UserHTTP) SearchUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_search")

	q := c.QueryParam("q")
	if q == "" {
		return apperror.BadRequest("q is required")
	}
	page, err := query.ParsePage(c.QueryParam("page_index"), c.QueryParam("page_size"))
	if err != nil {
		return err
	}
	if err := page.Validate(); err != nil {
		return err
	}

	if h.Index == nil {
		filter := &transport.UserFilter{UsernameILike: q}
		res, err := query.New[models.User](session.FromContext(c)).List(ctx, page, filter)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, query.Map(res, transport.NewUserRead))
	}

	total, docs, err := h.Index.Search(ctx, q, page.Offset(), page.Size)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return err
	}
	items := make([]transport.UserRead, 0, len(docs))
	for _, d := range docs {
		items = append(items, transport.UserRead{ID: d.ID, Username: d.Username, Email: d.Email, Name: d.Name, Root: d.Root})
	}
	return c.JSON(http.StatusOK, query.NewPage(items, total, page))
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	var in transport.UserProfile
	return h.update(c, "user_update_profile", claims.UserID, &in)
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var in transport.UserUpdate
	return h.update(c, "user_update", id, &in)
}

func (h *UserHTTP) update(c echo.Context, handler string, id uuid.UUID, in query.Patch) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler, "target_id", id)

	if err := c.Bind(in); err != nil {
		l.Warn("update_user_failed", "status", 400, "reason", "invalid body", "error", err)
		return apperror.BadRequest("invalid body")
	}
	if err := c.Validate(in); err != nil {
		return err
	}

	u, err := query.New[models.User](session.FromContext(c)).Update(ctx, id, in)
	if err != nil {
		l.Warn("update_user_failed", "status", apperror.Status(err), "error", err)
		return err
	}

	h.Cache.Delete(ctx, id.String())
	h.publish(ctx, events.UserUpdated, *u)
	h.reindex(ctx, *u)
	return c.JSON(http.StatusOK, transport.NewUserRead(*u))
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_delete")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	res, err := query.New[models.User](session.FromContext(c)).Delete(ctx, id)
	if err != nil {
		l.Warn("delete_user_failed", "status", apperror.Status(err), "error", err)
		return err
	}

	h.Cache.Delete(ctx, id.String())
	h.publish(ctx, events.UserDeleted, models.User{ID: id})
	h.unindex(ctx, id)
	l.Info("user_deleted", "target_id", id)
	return c.JSON(http.StatusOK, res)
}

func (h *UserHTTP) readUser(c echo.Context, id uuid.UUID) (*transport.UserRead, error) {
	ctx := c.Request().Context()
	key := id.String()
	if view, ok := h.Cache.Get(ctx, key); ok {
		return view, nil
	}

	u, err := query.New[models.User](session.FromContext(c)).Read(ctx, id)
	if err != nil {
		return nil, err
	}
	view := transport.NewUserRead(*u)
	h.Cache.Set(ctx, key, &view)
	return &view, nil
}

// publish, reindex and unindex never fail the request: the row is already
// committed, so errors are only logged.
func (h *UserHTTP) publish(ctx context.Context, typ string, u models.User) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := h.Events.Publish(ctx, events.Event{Type: typ, UserID: u.ID, Username: u.Username}); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "type", typ, "error", err)
	}
}

func (h *UserHTTP) reindex(ctx context.Context, u models.User) {
	if h.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := h.Index.Put(ctx, u); err != nil {
		logging.FromContext(ctx).Warn("index_user_failed", "user_id", u.ID, "error", err)
	}
}

func (h *UserHTTP) unindex(ctx context.Context, id uuid.UUID) {
	if h.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := h.Index.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("unindex_user_failed", "user_id", id, "error", err)
	}
}

func currentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := authmw.ClaimsFrom(c)
	if !ok {
		return nil, apperror.New(apperror.ErrAuthenticationFailed, "Not authenticated")
	}
	return claims, nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid id")
	}
	return id, nil
}
