package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docnotes/docnotes/internal/domain/patient"
)

type Service struct {
	appointments Repository
	patients     patient.Repository
}

func NewService(appointments Repository, patients patient.Repository) *Service {
	return &Service{appointments: appointments, patients: patients}
}

type CreateInput struct {
	PatientID       uuid.UUID `json:"patientId"`
	ProviderID      uuid.UUID `json:"providerId"`
	Type            string    `json:"type"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          *string   `json:"reason"`
	Notes           *string   `json:"notes"`
}

// Create books a new appointment in status scheduled. Overlapping bookings
// for the same provider are allowed; preventing double-booking is the
// front desk's job, not the server's.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patientId is required")
	}
	if in.ProviderID == uuid.Nil {
		return nil, fmt.Errorf("providerId is required")
	}
	if !validTypes[in.Type] {
		return nil, fmt.Errorf("invalid appointment type: %s", in.Type)
	}
	if in.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("scheduledAt is required")
	}
	if _, err := s.patients.GetByID(ctx, in.PatientID); err != nil {
		return nil, err
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = DefaultDurationMinutes
	}
	if duration < 0 {
		return nil, fmt.Errorf("durationMinutes must be positive")
	}

	a := &Appointment{
		PatientID:       in.PatientID,
		ProviderID:      in.ProviderID,
		Type:            in.Type,
		Status:          StatusScheduled,
		ScheduledAt:     in.ScheduledAt,
		DurationMinutes: duration,
		Reason:          in.Reason,
		Notes:           in.Notes,
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

type UpdateInput struct {
	Type            *string    `json:"type"`
	Status          *string    `json:"status"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes *int       `json:"durationMinutes"`
	Reason          *string    `json:"reason"`
	Notes           *string    `json:"notes"`
}

// Update applies a partial update. Status moves are unconstrained within
// the valid set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Type != nil {
		if !validTypes[*in.Type] {
			return nil, fmt.Errorf("invalid appointment type: %s", *in.Type)
		}
		a.Type = *in.Type
	}
	if in.Status != nil {
		if !validStatuses[*in.Status] {
			return nil, fmt.Errorf("invalid appointment status: %s", *in.Status)
		}
		a.Status = *in.Status
	}
	if in.ScheduledAt != nil {
		a.ScheduledAt = *in.ScheduledAt
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes <= 0 {
			return nil, fmt.Errorf("durationMinutes must be positive")
		}
		a.DurationMinutes = *in.DurationMinutes
	}
	if in.Reason != nil {
		a.Reason = in.Reason
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel sets status cancelled; the row is kept.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	status := StatusCancelled
	return s.Update(ctx, id, UpdateInput{Status: &status})
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != nil && !validStatuses[*f.Status] {
		return nil, 0, fmt.Errorf("invalid appointment status: %s", *f.Status)
	}
	return s.appointments.List(ctx, f, limit, offset)
}
