package auditlog

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/platform/httperr"
	"github.com/docnotes/docnotes/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes wires the trail onto the admin group; practitioners cannot
// read each other's activity.
func (h *Handler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/audit-logs", h.List)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f ListFilter
	if v := c.QueryParam("userId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.BadRequest(c, "invalid userId")
		}
		f.UserID = &id
	}
	if v := c.QueryParam("action"); v != "" {
		f.Action = &v
	}
	if v := c.QueryParam("resource"); v != "" {
		f.Resource = &v
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return httperr.BadRequest(c, "invalid from timestamp")
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return httperr.BadRequest(c, "invalid to timestamp")
		}
		f.To = &t
	}

	items, total, err := h.repo.List(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return httperr.Internal(c, "list audit logs failed")
	}
	if items == nil {
		items = []*LogEntry{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}
