package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. The set is flat: any status may be overwritten by
// any other, there is no transition graph.
const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCheckedIn: true,
	StatusInProgress: true, StatusCompleted: true, StatusCancelled: true,
	StatusNoShow: true,
}

// Appointment types.
const (
	TypeNewPatient = "new_patient"
	TypeFollowUp   = "follow_up"
	TypeRoutine    = "routine"
	TypeUrgent     = "urgent"
	TypeTelehealth = "telehealth"
)

var validTypes = map[string]bool{
	TypeNewPatient: true, TypeFollowUp: true, TypeRoutine: true,
	TypeUrgent: true, TypeTelehealth: true,
}

const DefaultDurationMinutes = 15

type Appointment struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patientId"`
	ProviderID      uuid.UUID `json:"providerId"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          *string   `json:"reason"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
