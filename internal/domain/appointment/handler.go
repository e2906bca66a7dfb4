package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/domain/patient"
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

func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/appointments", h.List)
	authed.POST("/appointments", h.Create)
	authed.GET("/appointments/:id", h.Get)
	authed.PATCH("/appointments/:id", h.Update)
	authed.POST("/appointments/:id/cancel", h.Cancel)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var f ListFilter
	if v := c.QueryParam("providerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.BadRequest(c, "invalid providerId")
		}
		f.ProviderID = &id
	}
	if v := c.QueryParam("patientId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return httperr.BadRequest(c, "invalid patientId")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		f.Status = &v
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

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset())
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionCreate, "appointment", &a.ID))
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "get appointment failed")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	a, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionUpdate, "appointment", &a.ID))
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}

	a, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "cancel appointment failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionUpdate, "appointment", &a.ID))
	return c.JSON(http.StatusOK, a)
}
