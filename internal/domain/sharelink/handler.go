package sharelink

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/platform/audit"
	"github.com/docnotes/docnotes/internal/platform/auth"
	"github.com/docnotes/docnotes/internal/platform/httperr"
)

type Handler struct {
	svc *Service
	rec audit.Recorder
}

func NewHandler(svc *Service, rec audit.Recorder) *Handler {
	return &Handler{svc: svc, rec: rec}
}

// RegisterRoutes wires link management onto the authenticated group and
// redemption onto the public one. Access is the only route in the API an
// anonymous caller can reach besides login.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	authed.POST("/share-links", h.Create)
	authed.GET("/share-links", h.ListByResource)
	authed.POST("/share-links/:id/revoke", h.Revoke)
	public.POST("/share/access", h.Access)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	link, err := h.svc.Create(c.Request().Context(), in, auth.UserIDFromContext(c))
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionShare, "share_link", &link.ID))
	return c.JSON(http.StatusCreated, link)
}

func (h *Handler) ListByResource(c echo.Context) error {
	resourceType := c.QueryParam("resourceType")
	resourceID, err := uuid.Parse(c.QueryParam("resourceId"))
	if err != nil {
		return httperr.BadRequest(c, "invalid resourceId")
	}

	links, err := h.svc.ListByResource(c.Request().Context(), resourceType, resourceID)
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, links)
}

func (h *Handler) Revoke(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}

	if err := h.svc.Revoke(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "revoke share link failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionUpdate, "share_link", &id))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Access(c echo.Context) error {
	var in struct {
		Token    string  `json:"token"`
		Password *string `json:"password"`
	}
	if err := c.Bind(&in); err != nil || in.Token == "" {
		return httperr.BadRequest(c, "token is required")
	}

	result, err := h.svc.Access(c.Request().Context(), in.Token, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrResourceNotFound):
			return httperr.NotFound(c, err.Error())
		case errors.Is(err, ErrRevoked), errors.Is(err, ErrExpired),
			errors.Is(err, ErrLimitReached), errors.Is(err, ErrWrongPassword):
			return httperr.Forbidden(c, err.Error())
		default:
			return httperr.Internal(c, "share link access failed")
		}
	}
	return c.JSON(http.StatusOK, result)
}
