package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("document not found")

// ListFilter narrows the document listing; zero values are ignored.
type ListFilter struct {
	Category        string
	MedicalRecordID *uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// Activate flips an uploading row to active. It returns false when the
	// row was not in uploading, which lets Confirm stay idempotent.
	Activate(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient returns active and archived documents plus uploading
	// rows younger than the grace window, newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*Document, int, error)
}
