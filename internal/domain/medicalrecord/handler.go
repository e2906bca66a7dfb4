package medicalrecord

import (
	"errors"
	"net/http"

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
	authed.GET("/patients/:patientId/medical-records", h.ListByPatient)
	authed.POST("/medical-records", h.Create)
	authed.GET("/medical-records/:id", h.Get)
	authed.PATCH("/medical-records/:id", h.Update)
	authed.GET("/medical-records/:id/versions", h.Versions)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return httperr.BadRequest(c, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	f := ListFilter{Type: c.QueryParam("type")}

	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, f, pg.Limit, pg.Offset())
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if items == nil {
		items = []*MedicalRecord{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	m, err := h.svc.Create(c.Request().Context(), in, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionCreate, "medical_record", &m.ID))
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "get record failed")
	}
	return c.JSON(http.StatusOK, m)
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

	m, err := h.svc.Update(c.Request().Context(), id, in, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionUpdate, "medical_record", &m.ID))
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Versions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	items, err := h.svc.Versions(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "version lookup failed")
	}
	return c.JSON(http.StatusOK, items)
}
