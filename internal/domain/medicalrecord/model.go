package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record types.
const (
	TypeVisitNote    = "visit_note"
	TypeLabResult    = "lab_result"
	TypePrescription = "prescription"
	TypeReferral     = "referral"
	TypeProcedure    = "procedure"
	TypeImaging      = "imaging"
	TypeDocument     = "document"
)

var validTypes = map[string]bool{
	TypeVisitNote: true, TypeLabResult: true, TypePrescription: true,
	TypeReferral: true, TypeProcedure: true, TypeImaging: true, TypeDocument: true,
}

// MedicalRecord is one immutable version of a clinical note. Rows are never
// updated in place; an edit inserts a new row pointing at its predecessor
// through ParentID.
type MedicalRecord struct {
	ID         uuid.UUID          `json:"id"`
	PatientID  uuid.UUID          `json:"patientId"`
	ProviderID uuid.UUID          `json:"providerId"`
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Subjective *string            `json:"subjective"`
	Objective  *string            `json:"objective"`
	Assessment *string            `json:"assessment"`
	Plan       *string            `json:"plan"`
	Vitals     map[string]float64 `json:"vitals,omitempty"`
	Diagnoses  []string           `json:"diagnoses"`
	Version    int                `json:"version"`
	ParentID   *uuid.UUID         `json:"parentId"`
	CreatedAt  time.Time          `json:"createdAt"`
}
