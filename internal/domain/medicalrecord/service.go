package medicalrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docnotes/docnotes/internal/domain/patient"
)

type Service struct {
	records  Repository
	patients patient.Repository
}

func NewService(records Repository, patients patient.Repository) *Service {
	return &Service{records: records, patients: patients}
}

type CreateInput struct {
	PatientID  uuid.UUID          `json:"patientId"`
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Subjective *string            `json:"subjective"`
	Objective  *string            `json:"objective"`
	Assessment *string            `json:"assessment"`
	Plan       *string            `json:"plan"`
	Vitals     map[string]float64 `json:"vitals"`
	Diagnoses  []string           `json:"diagnoses"`
}

// Create inserts version 1 of a new record chain.
func (s *Service) Create(ctx context.Context, in CreateInput, providerID uuid.UUID) (*MedicalRecord, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patientId is required")
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !validTypes[in.Type] {
		return nil, fmt.Errorf("invalid record type: %s", in.Type)
	}
	if _, err := s.patients.GetByID(ctx, in.PatientID); err != nil {
		return nil, err
	}

	m := &MedicalRecord{
		PatientID:  in.PatientID,
		ProviderID: providerID,
		Type:       in.Type,
		Title:      in.Title,
		Subjective: in.Subjective,
		Objective:  in.Objective,
		Assessment: in.Assessment,
		Plan:       in.Plan,
		Vitals:     in.Vitals,
		Diagnoses:  in.Diagnoses,
		Version:    1,
	}
	if err := s.records.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return s.records.GetByID(ctx, id)
}

// UpdateInput carries the fields an edit may change; nil fields carry
// forward from the parent version.
type UpdateInput struct {
	Title      *string             `json:"title"`
	Subjective *string             `json:"subjective"`
	Objective  *string             `json:"objective"`
	Assessment *string             `json:"assessment"`
	Plan       *string             `json:"plan"`
	Vitals     *map[string]float64 `json:"vitals"`
	Diagnoses  *[]string           `json:"diagnoses"`
}

// Update never mutates the existing row. It inserts a successor with
// version = parent.version + 1 and parentId pointing at the edited record,
// carrying forward any field the input leaves nil.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, providerID uuid.UUID) (*MedicalRecord, error) {
	parent, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := &MedicalRecord{
		PatientID:  parent.PatientID,
		ProviderID: providerID,
		Type:       parent.Type,
		Title:      parent.Title,
		Subjective: parent.Subjective,
		Objective:  parent.Objective,
		Assessment: parent.Assessment,
		Plan:       parent.Plan,
		Vitals:     parent.Vitals,
		Diagnoses:  parent.Diagnoses,
		Version:    parent.Version + 1,
		ParentID:   &parent.ID,
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		next.Title = *in.Title
	}
	if in.Subjective != nil {
		next.Subjective = in.Subjective
	}
	if in.Objective != nil {
		next.Objective = in.Objective
	}
	if in.Assessment != nil {
		next.Assessment = in.Assessment
	}
	if in.Plan != nil {
		next.Plan = in.Plan
	}
	if in.Vitals != nil {
		next.Vitals = *in.Vitals
	}
	if in.Diagnoses != nil {
		next.Diagnoses = *in.Diagnoses
	}

	if err := s.records.Create(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	if f.Type != "" && !validTypes[f.Type] {
		return nil, 0, fmt.Errorf("invalid record type: %s", f.Type)
	}
	return s.records.ListByPatient(ctx, patientID, f, limit, offset)
}

// Versions returns the full edit history of a record, newest first.
func (s *Service) Versions(ctx context.Context, id uuid.UUID) ([]*MedicalRecord, error) {
	return s.records.Lineage(ctx, id)
}
