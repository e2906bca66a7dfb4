package document

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
	authed.GET("/patients/:patientId/documents", h.ListByPatient)
	authed.POST("/documents/upload", h.RequestUpload)
	authed.POST("/documents/:id/confirm", h.Confirm)
	authed.GET("/documents/:id", h.Get)
	authed.GET("/documents/:id/download", h.Download)
	authed.PATCH("/documents/:id", h.Update)
	authed.DELETE("/documents/:id", h.Delete)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return httperr.BadRequest(c, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	f := ListFilter{Category: c.QueryParam("category")}
	if raw := c.QueryParam("medicalRecordId"); raw != "" {
		recordID, err := uuid.Parse(raw)
		if err != nil {
			return httperr.BadRequest(c, "invalid medical record id")
		}
		f.MedicalRecordID = &recordID
	}

	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, f, pg.Limit, pg.Offset())
	if err != nil {
		return httperr.BadRequest(c, err.Error())
	}
	if items == nil {
		items = []*Document{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) RequestUpload(c echo.Context) error {
	var in UploadRequest
	if err := c.Bind(&in); err != nil {
		return httperr.BadRequest(c, "invalid request body")
	}

	ticket, err := h.svc.RequestUpload(c.Request().Context(), in, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionCreate, "document", &ticket.Document.ID))
	return c.JSON(http.StatusCreated, ticket)
}

func (h *Handler) Confirm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	d, err := h.svc.Confirm(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Conflict(c, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "get document failed")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Download(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}
	url, d, err := h.svc.DownloadURL(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Conflict(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionRead, "document", &d.ID))
	return c.JSON(http.StatusOK, map[string]string{"url": url, "fileName": d.FileName})
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

	d, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.BadRequest(c, err.Error())
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionUpdate, "document", &d.ID))
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest(c, "invalid id")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "delete document failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionDelete, "document", &id))
	return c.NoContent(http.StatusNoContent)
}
