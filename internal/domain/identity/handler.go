package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/platform/audit"
	"github.com/docnotes/docnotes/internal/platform/auth"
	"github.com/docnotes/docnotes/internal/platform/httperr"
	"github.com/docnotes/docnotes/pkg/pagination"
)

type Handler struct {
	svc *Service
	rec audit.Recorder
}

func NewHandler(svc *Service, rec audit.Recorder) *Handler {
	return &Handler{svc: svc, rec: rec}
}

// RegisterRoutes mounts auth endpoints. Register, login and me are outside
// the session middleware; me resolves its own optional token.
func (h *Handler) RegisterRoutes(public, authed, admin *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	public.GET("/auth/me", h.Me, auth.OptionalSession(h.svc))

	authed.POST("/auth/logout", h.Logout)

	admin.GET("/users", h.ListUsers)
	admin.PATCH("/users/:id", h.UpdateUser)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	result, err := h.svc.Register(c.Request().Context(), in, clientInfo(c))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return httperr.Conflict(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, result.User.ID, audit.ActionCreate, "user", &result.User.ID))
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	result, err := h.svc.Login(c.Request().Context(), creds, clientInfo(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return httperr.Unauthenticated(c, err.Error())
		case errors.Is(err, ErrAccountDisabled):
			return httperr.Forbidden(c, err.Error())
		}
		return httperr.Internal(c, "login failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, result.User.ID, audit.ActionLogin, "user", &result.User.ID))
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Logout(c echo.Context) error {
	userID := auth.UserIDFromContext(c)
	if err := h.svc.Logout(c.Request().Context(), userID); err != nil {
		return httperr.Internal(c, "logout failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, userID, audit.ActionLogout, "user", &userID))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user, or null for anonymous callers.
func (h *Handler) Me(c echo.Context) error {
	sess := auth.SessionFromContext(c)
	if sess == nil {
		return c.JSON(http.StatusOK, nil)
	}
	u, err := h.svc.Me(c.Request().Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return httperr.Internal(c, "lookup failed")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return httperr.Internal(c, "list users failed")
	}
	if items == nil {
		items = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	var in UpdateUserInput
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	u, err := h.svc.UpdateUser(c.Request().Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionUpdate, "user", &u.ID))
	return c.JSON(http.StatusOK, u)
}

func clientInfo(c echo.Context) ClientInfo {
	return ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
