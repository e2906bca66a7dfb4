package sharelink

import (
	"time"

	"github.com/google/uuid"
)

// Shareable resource types.
const (
	ResourcePatientSummary = "patient_summary"
	ResourceMedicalRecord  = "medical_record"
	ResourceDocument       = "document"
)

var validResourceTypes = map[string]bool{
	ResourcePatientSummary: true,
	ResourceMedicalRecord:  true,
	ResourceDocument:       true,
}

// ShareLink grants time-limited public access to one resource. The token is
// the whole credential; anyone holding the URL can redeem it subject to the
// expiry, revocation, access-count and password guards.
type ShareLink struct {
	ID           uuid.UUID `json:"id"`
	Token        string    `json:"token"`
	ResourceType string    `json:"resourceType"`
	ResourceID   uuid.UUID `json:"resourceId"`
	CreatedBy    uuid.UUID `json:"createdBy"`
	PasswordHash *string   `json:"-"`
	MaxAccesses  *int      `json:"maxAccesses"`
	AccessCount  int       `json:"accessCount"`
	IsRevoked    bool      `json:"isRevoked"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (l *ShareLink) HasPassword() bool { return l.PasswordHash != nil }
