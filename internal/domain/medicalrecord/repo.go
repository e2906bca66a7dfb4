package medicalrecord

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("medical record not found")

type ListFilter struct {
	Type string
}

type Repository interface {
	Create(ctx context.Context, m *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error)
	// ListRecent returns up to limit newest records for a patient; used by
	// the summary export.
	ListRecent(ctx context.Context, patientID uuid.UUID, limit int) ([]*MedicalRecord, error)
	// Lineage walks parent links from the given record back to version 1,
	// newest first.
	Lineage(ctx context.Context, id uuid.UUID) ([]*MedicalRecord, error)
	// CountSince counts records created at or after the given instant.
	CountSince(ctx context.Context, since time.Time) (int, error)
}
