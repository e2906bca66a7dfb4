package appointment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docnotes/docnotes/internal/domain/patient"
)

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if f.ProviderID != nil && a.ProviderID != *f.ProviderID {
			continue
		}
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.From != nil && a.ScheduledAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !a.ScheduledAt.Before(*f.To) {
			continue
		}
		cp := *a
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledAt.After(items[j].ScheduledAt) })
	total := len(items)
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total, nil
}

func (m *mockRepo) ListBetween(_ context.Context, from, to time.Time, limit int) ([]*Appointment, error) {
	var items []*Appointment
	for _, a := range m.appointments {
		if a.ScheduledAt.Before(from) || !a.ScheduledAt.Before(to) {
			continue
		}
		cp := *a
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledAt.Before(items[j].ScheduledAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *mockRepo) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	items, err := m.ListBetween(ctx, from, to, 1<<30)
	return len(items), err
}

type mockPatientRepo struct {
	ids map[uuid.UUID]bool
}

func (m *mockPatientRepo) Create(_ context.Context, p *patient.Patient) error { return nil }
func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	if !m.ids[id] {
		return nil, patient.ErrNotFound
	}
	return &patient.Patient{ID: id, IsActive: true}, nil
}
func (m *mockPatientRepo) Update(_ context.Context, p *patient.Patient) error { return nil }
func (m *mockPatientRepo) List(_ context.Context, f patient.ListFilter, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}
func (m *mockPatientRepo) CountActive(_ context.Context) (int, error) { return len(m.ids), nil }

func newTestService() (*Service, uuid.UUID) {
	patientID := uuid.New()
	patients := &mockPatientRepo{ids: map[uuid.UUID]bool{patientID: true}}
	return NewService(newMockRepo(), patients), patientID
}

func createInput(patientID uuid.UUID) CreateInput {
	return CreateInput{
		PatientID:   patientID,
		ProviderID:  uuid.New(),
		Type:        TypeRoutine,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, patientID := newTestService()

	a, err := svc.Create(context.Background(), createInput(patientID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected default status scheduled, got %s", a.Status)
	}
	if a.DurationMinutes != DefaultDurationMinutes {
		t.Errorf("expected default duration %d, got %d", DefaultDurationMinutes, a.DurationMinutes)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, patientID := newTestService()
	ctx := context.Background()

	in := createInput(patientID)
	in.Type = "walk_in"
	if _, err := svc.Create(ctx, in); err == nil {
		t.Error("expected error for invalid type")
	}

	in = createInput(patientID)
	in.ScheduledAt = time.Time{}
	if _, err := svc.Create(ctx, in); err == nil {
		t.Error("expected error for missing scheduledAt")
	}

	in = createInput(uuid.New())
	if _, err := svc.Create(ctx, in); !errors.Is(err, patient.ErrNotFound) {
		t.Errorf("expected patient.ErrNotFound, got %v", err)
	}
}

func TestUpdate_StatusMovesAreUnconstrained(t *testing.T) {
	svc, patientID := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, createInput(patientID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Any valid status may follow any other, including backwards moves.
	for _, status := range []string{StatusCompleted, StatusScheduled, StatusNoShow, StatusCheckedIn} {
		st := status
		a, err = svc.Update(ctx, a.ID, UpdateInput{Status: &st})
		if err != nil {
			t.Fatalf("Update to %s: %v", status, err)
		}
		if a.Status != status {
			t.Errorf("expected status %s, got %s", status, a.Status)
		}
	}

	bad := "rescheduled"
	if _, err := svc.Update(ctx, a.ID, UpdateInput{Status: &bad}); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestCancel(t *testing.T) {
	svc, patientID := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, createInput(patientID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, a.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	// Row survives cancellation.
	if _, err := svc.Get(ctx, a.ID); err != nil {
		t.Errorf("cancelled appointment should remain readable: %v", err)
	}
}

func TestList_Filters(t *testing.T) {
	svc, patientID := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, createInput(patientID))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, createInput(patientID)); err != nil {
		t.Fatal(err)
	}

	provider := first.ProviderID
	items, total, err := svc.List(ctx, ListFilter{ProviderID: &provider}, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 appointment for provider, got %d", total)
	}

	bad := "rescheduled"
	if _, _, err := svc.List(ctx, ListFilter{Status: &bad}, 20, 0); err == nil {
		t.Error("expected error for invalid status filter")
	}
}
