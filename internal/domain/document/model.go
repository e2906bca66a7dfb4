package document

import (
	"time"

	"github.com/google/uuid"
)

// Document lifecycle. A row is created in uploading when the presigned PUT
// URL is issued and only becomes visible once the client confirms the upload.
const (
	StatusUploading = "uploading"
	StatusActive    = "active"
	StatusArchived  = "archived"
)

const (
	CategoryLabReport        = "lab_report"
	CategoryImaging          = "imaging"
	CategoryReferralLetter   = "referral_letter"
	CategoryPrescription     = "prescription"
	CategoryConsentForm      = "consent_form"
	CategoryInsurance        = "insurance"
	CategoryDischargeSummary = "discharge_summary"
	CategoryOther            = "other"
)

var validCategories = map[string]bool{
	CategoryLabReport:        true,
	CategoryImaging:          true,
	CategoryReferralLetter:   true,
	CategoryPrescription:     true,
	CategoryConsentForm:      true,
	CategoryInsurance:        true,
	CategoryDischargeSummary: true,
	CategoryOther:            true,
}

type Document struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patientId"`
	MedicalRecordID *uuid.UUID `json:"medicalRecordId"`
	FileName        string     `json:"fileName"`
	ContentType     string     `json:"contentType"`
	SizeBytes       int64      `json:"sizeBytes"`
	Category        string     `json:"category"`
	Description     *string    `json:"description"`
	StorageKey      string     `json:"-"`
	Status          string     `json:"status"`
	UploadedBy      *uuid.UUID `json:"uploadedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
