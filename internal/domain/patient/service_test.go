package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func matches(p *Patient, q string) bool {
	q = strings.ToLower(q)
	fields := []string{p.FirstName, p.LastName}
	if p.Email != nil {
		fields = append(fields, *p.Email)
	}
	if p.Phone != nil {
		fields = append(fields, *p.Phone)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		if !p.IsActive {
			continue
		}
		if f.Query != "" && !matches(p, f.Query) {
			continue
		}
		cp := *p
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
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

func (m *mockRepo) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, p := range m.patients {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

func createInput() CreateInput {
	email := "jane@example.com"
	return CreateInput{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: NewDate(1990, time.January, 1),
		Gender:      "female",
		Email:       &email,
		Allergies:   []Allergy{{Name: "Penicillin", Severity: SeveritySevere}},
		Conditions:  []string{"Asthma"},
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	creator := uuid.New()

	p, err := svc.Create(context.Background(), createInput(), creator)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !p.IsActive {
		t.Error("expected new patient to be active")
	}
	if p.CreatedBy == nil || *p.CreatedBy != creator {
		t.Error("expected createdBy to be set")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	in := createInput()
	in.FirstName = ""
	if _, err := svc.Create(ctx, in, uuid.Nil); err == nil {
		t.Error("expected error for missing first name")
	}

	in = createInput()
	in.Gender = "unknown"
	if _, err := svc.Create(ctx, in, uuid.Nil); err == nil {
		t.Error("expected error for invalid gender")
	}

	in = createInput()
	bt := "C+"
	in.BloodType = &bt
	if _, err := svc.Create(ctx, in, uuid.Nil); err == nil {
		t.Error("expected error for invalid blood type")
	}

	in = createInput()
	in.Allergies = []Allergy{{Name: "Peanuts", Severity: "fatal"}}
	if _, err := svc.Create(ctx, in, uuid.Nil); err == nil {
		t.Error("expected error for invalid allergy severity")
	}
}

func TestUpdate_Partial(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, createInput(), uuid.Nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	phone := "555-0100"
	updated, err := svc.Update(ctx, p.ID, UpdateInput{Phone: &phone})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Error("phone not updated")
	}
	if updated.FirstName != "Jane" {
		t.Errorf("untouched field changed: %s", updated.FirstName)
	}
	if updated.Email == nil || *updated.Email != "jane@example.com" {
		t.Error("untouched email changed")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Update(context.Background(), uuid.New(), UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestArchive_HidesFromListing(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, createInput(), uuid.Nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Archive(ctx, p.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	items, total, err := svc.List(ctx, ListFilter{}, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected archived patient hidden, got %d items", len(items))
	}

	// Row still exists for direct lookup.
	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.IsActive {
		t.Error("expected archived patient to be inactive")
	}
}

func TestList_QueryFilter(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, createInput(), uuid.Nil); err != nil {
		t.Fatal(err)
	}
	other := createInput()
	other.FirstName = "Bob"
	other.LastName = "Smith"
	other.Email = nil
	if _, err := svc.Create(ctx, other, uuid.Nil); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.List(ctx, ListFilter{Query: "jane"}, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 match, got %d", total)
	}
	if items[0].FirstName != "Jane" {
		t.Errorf("unexpected match: %s", items[0].FirstName)
	}
}
