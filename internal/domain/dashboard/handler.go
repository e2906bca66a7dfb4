package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/dashboard/stats", h.Stats)
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return httperr.Internal(c, "load dashboard stats failed")
	}
	return c.JSON(http.StatusOK, stats)
}
