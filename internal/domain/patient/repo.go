package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("patient not found")

// ListFilter narrows the patient listing. Query matches name, email and
// phone case-insensitively. Only active patients are listed.
type ListFilter struct {
	Query string
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error)
	// CountActive returns the number of non-archived patients.
	CountActive(ctx context.Context) (int, error)
}
