package export

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docnotes/docnotes/internal/domain/medicalrecord"
	"github.com/docnotes/docnotes/internal/domain/patient"
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

func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.POST("/export/patient-summary", h.PatientSummary)
	authed.POST("/export/medical-record", h.MedicalRecord)
}

// Result carries a rendered PDF; the client decodes and saves it.
type Result struct {
	Base64   string `json:"base64"`
	FileName string `json:"fileName"`
}

func (h *Handler) PatientSummary(c echo.Context) error {
	var in struct {
		PatientID uuid.UUID `json:"patientId"`
	}
	if err := c.Bind(&in); err != nil || in.PatientID == uuid.Nil {
		return httperr.BadRequest(c, "patientId is required")
	}

	pdf, name, err := h.svc.PatientSummary(c.Request().Context(), in.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "export failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionExport, "patient", &in.PatientID))
	return c.JSON(http.StatusOK, Result{Base64: base64.StdEncoding.EncodeToString(pdf), FileName: name})
}

func (h *Handler) MedicalRecord(c echo.Context) error {
	var in struct {
		RecordID uuid.UUID `json:"recordId"`
	}
	if err := c.Bind(&in); err != nil || in.RecordID == uuid.Nil {
		return httperr.BadRequest(c, "recordId is required")
	}

	pdf, name, err := h.svc.MedicalRecord(c.Request().Context(), in.RecordID)
	if err != nil {
		if errors.Is(err, medicalrecord.ErrNotFound) || errors.Is(err, patient.ErrNotFound) {
			return httperr.NotFound(c, err.Error())
		}
		return httperr.Internal(c, "export failed")
	}

	h.rec.Record(c.Request().Context(),
		audit.EntryFromRequest(c, auth.UserIDFromContext(c), audit.ActionExport, "medical_record", &in.RecordID))
	return c.JSON(http.StatusOK, Result{Base64: base64.StdEncoding.EncodeToString(pdf), FileName: name})
}
