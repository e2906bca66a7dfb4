// Package export renders patient data to downloadable PDF files.
package export

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/docnotes/docnotes/internal/domain/identity"
	"github.com/docnotes/docnotes/internal/domain/medicalrecord"
	"github.com/docnotes/docnotes/internal/domain/patient"
	"github.com/docnotes/docnotes/internal/platform/pdfgen"
)

// summaryRecordLimit caps how many notes a patient summary includes.
const summaryRecordLimit = 50

type Service struct {
	patients patient.Repository
	records  medicalrecord.Repository
	users    identity.UserRepository
}

func NewService(patients patient.Repository, records medicalrecord.Repository, users identity.UserRepository) *Service {
	return &Service{patients: patients, records: records, users: users}
}

// PatientSummary renders the patient's demographics and recent records to a
// PDF, returning the bytes and a download file name.
func (s *Service) PatientSummary(ctx context.Context, patientID uuid.UUID) ([]byte, string, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, "", err
	}
	records, err := s.records.ListRecent(ctx, patientID, summaryRecordLimit)
	if err != nil {
		return nil, "", err
	}

	in := make([]pdfgen.Record, 0, len(records))
	for _, r := range records {
		in = append(in, s.toRenderRecord(ctx, r))
	}

	pdf, err := pdfgen.RenderPatientSummary(toRenderPatient(p), in)
	if err != nil {
		return nil, "", err
	}
	return pdf, fileName(p, "Summary"), nil
}

// MedicalRecord renders a single clinical note to a PDF.
func (s *Service) MedicalRecord(ctx context.Context, recordID uuid.UUID) ([]byte, string, error) {
	r, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, "", err
	}
	p, err := s.patients.GetByID(ctx, r.PatientID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := pdfgen.RenderMedicalRecord(toRenderPatient(p), s.toRenderRecord(ctx, r))
	if err != nil {
		return nil, "", err
	}
	return pdf, fileName(p, r.Title), nil
}

func toRenderPatient(p *patient.Patient) pdfgen.Patient {
	out := pdfgen.Patient{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth.Time,
		Gender:      p.Gender,
		Conditions:  p.Conditions,
	}
	if p.BloodType != nil {
		out.BloodType = *p.BloodType
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	for _, a := range p.Allergies {
		ra := pdfgen.Allergy{Name: a.Name, Severity: a.Severity}
		if a.Reaction != nil {
			ra.Reaction = *a.Reaction
		}
		out.Allergies = append(out.Allergies, ra)
	}
	return out
}

func (s *Service) toRenderRecord(ctx context.Context, r *medicalrecord.MedicalRecord) pdfgen.Record {
	out := pdfgen.Record{
		Title:     r.Title,
		Type:      r.Type,
		CreatedAt: r.CreatedAt,
		Vitals:    r.Vitals,
		Diagnoses: r.Diagnoses,
	}
	if r.Subjective != nil {
		out.Subjective = *r.Subjective
	}
	if r.Objective != nil {
		out.Objective = *r.Objective
	}
	if r.Assessment != nil {
		out.Assessment = *r.Assessment
	}
	if r.Plan != nil {
		out.Plan = *r.Plan
	}
	// Provider attribution is best effort; a deleted account just leaves
	// the line blank.
	if u, err := s.users.GetByID(ctx, r.ProviderID); err == nil {
		out.Provider = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return out
}

// fileName builds "First_Last_Suffix.pdf" with anything outside [A-Za-z0-9]
// collapsed to underscores.
func fileName(p *patient.Patient, suffix string) string {
	return sanitize(p.FirstName) + "_" + sanitize(p.LastName) + "_" + sanitize(suffix) + ".pdf"
}

func sanitize(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
