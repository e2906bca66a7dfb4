package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("appointment not found")

// ListFilter narrows the appointment listing; nil fields are ignored.
type ListFilter struct {
	ProviderID *uuid.UUID
	PatientID  *uuid.UUID
	Status     *string
	From       *time.Time
	To         *time.Time
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error)
	// ListBetween returns appointments scheduled in [from, to), ascending;
	// used by the dashboard.
	ListBetween(ctx context.Context, from, to time.Time, limit int) ([]*Appointment, error)
	CountBetween(ctx context.Context, from, to time.Time) (int, error)
}
