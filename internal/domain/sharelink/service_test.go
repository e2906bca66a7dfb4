package sharelink

import (
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docnotes/docnotes/internal/domain/document"
	"github.com/docnotes/docnotes/internal/domain/patient"
	"github.com/docnotes/docnotes/internal/platform/db"
)

type mockRepo struct {
	links map[uuid.UUID]*ShareLink
}

func newMockRepo() *mockRepo {
	return &mockRepo{links: make(map[uuid.UUID]*ShareLink)}
}

func (m *mockRepo) Create(_ context.Context, l *ShareLink) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	cp := *l
	m.links[l.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*ShareLink, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepo) GetByToken(_ context.Context, token string) (*ShareLink, error) {
	for _, l := range m.links {
		if l.Token == token {
			cp := *l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) ListByResource(_ context.Context, resourceType string, resourceID uuid.UUID) ([]*ShareLink, error) {
	var items []*ShareLink
	for _, l := range m.links {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			cp := *l
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m *mockRepo) Revoke(_ context.Context, id uuid.UUID) error {
	l, ok := m.links[id]
	if !ok {
		return ErrNotFound
	}
	l.IsRevoked = true
	return nil
}

func (m *mockRepo) IncrementAccess(_ context.Context, id uuid.UUID) error {
	l, ok := m.links[id]
	if !ok {
		return ErrNotFound
	}
	l.AccessCount++
	return nil
}

type stubExporter struct {
	pdf  []byte
	name string
	err  error
}

func (s *stubExporter) PatientSummary(_ context.Context, _ uuid.UUID) ([]byte, string, error) {
	return s.pdf, s.name, s.err
}

func (s *stubExporter) MedicalRecord(_ context.Context, _ uuid.UUID) ([]byte, string, error) {
	return s.pdf, s.name, s.err
}

type stubDownloader struct {
	url string
	doc *document.Document
	err error
}

func (s *stubDownloader) SharedDownloadURL(_ context.Context, _ uuid.UUID) (string, *document.Document, error) {
	return s.url, s.doc, s.err
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	exporter *stubExporter
	docs     *stubDownloader
}

func newFixture() *fixture {
	repo := newMockRepo()
	exporter := &stubExporter{pdf: []byte("%PDF-1.4 test"), name: "Jane_Doe_Summary.pdf"}
	docs := &stubDownloader{
		url: "https://blobs.local/patients/x/abc.pdf?method=GET",
		doc: &document.Document{FileName: "bloods.pdf"},
	}
	svc := NewService(repo, db.NopRunner{}, exporter, docs, "https://app.docnotes.example/")
	return &fixture{svc: svc, repo: repo, exporter: exporter, docs: docs}
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestCreate_Defaults(t *testing.T) {
	f := newFixture()

	link, err := f.svc.Create(context.Background(), CreateInput{
		ResourceType: ResourcePatientSummary,
		ResourceID:   uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(link.Token) != 64 {
		t.Errorf("expected 64-char token, got %d chars", len(link.Token))
	}
	if link.URL != "https://app.docnotes.example/share/"+link.Token {
		t.Errorf("unexpected URL %q", link.URL)
	}
	if link.HasPassword {
		t.Error("expected no password")
	}
	until := time.Until(link.ExpiresAt)
	if until < 71*time.Hour || until > 73*time.Hour {
		t.Errorf("expected default 72h expiry, got %v", until)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	base := CreateInput{ResourceType: ResourceMedicalRecord, ResourceID: uuid.New()}

	in := base
	in.ResourceType = "appointment"
	if _, err := f.svc.Create(ctx, in, uuid.New()); err == nil {
		t.Error("expected error for invalid resource type")
	}

	in = base
	in.ExpiresInHours = 721
	if _, err := f.svc.Create(ctx, in, uuid.New()); err == nil {
		t.Error("expected error for expiry over the cap")
	}

	in = base
	in.Password = strp("abc")
	if _, err := f.svc.Create(ctx, in, uuid.New()); err == nil {
		t.Error("expected error for short password")
	}

	in = base
	in.MaxAccesses = intp(0)
	if _, err := f.svc.Create(ctx, in, uuid.New()); err == nil {
		t.Error("expected error for zero maxAccesses")
	}
}

func TestAccess_PDF(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourcePatientSummary,
		ResourceID:   uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Access(ctx, link.Token, nil)
	if err != nil {
		t.Fatalf("Access: %v", err)
	}
	if res.Type != "pdf" {
		t.Errorf("expected pdf result, got %q", res.Type)
	}
	if res.FileName != "Jane_Doe_Summary.pdf" {
		t.Errorf("unexpected file name %q", res.FileName)
	}
	decoded, err := base64.StdEncoding.DecodeString(res.Base64)
	if err != nil || string(decoded) != "%PDF-1.4 test" {
		t.Errorf("base64 payload does not round-trip: %v", err)
	}

	stored, _ := f.repo.GetByID(ctx, link.ID)
	if stored.AccessCount != 1 {
		t.Errorf("expected access count 1, got %d", stored.AccessCount)
	}
}

func TestAccess_DocumentRedirect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourceDocument,
		ResourceID:   uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Access(ctx, link.Token, nil)
	if err != nil {
		t.Fatalf("Access: %v", err)
	}
	if res.Type != "redirect" || res.URL == "" {
		t.Errorf("expected redirect result, got %+v", res)
	}
	if res.FileName != "bloods.pdf" {
		t.Errorf("unexpected file name %q", res.FileName)
	}
}

func TestAccess_UnknownToken(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Access(context.Background(), "deadbeef", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccess_GuardOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// A revoked, expired, password-protected link must report revocation;
	// the later guards never run.
	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourcePatientSummary,
		ResourceID:   uuid.New(),
		Password:     strp("secret"),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	stored := f.repo.links[link.ID]
	stored.IsRevoked = true
	stored.ExpiresAt = time.Now().Add(-time.Hour)

	if _, err := f.svc.Access(ctx, link.Token, nil); !errors.Is(err, ErrRevoked) {
		t.Errorf("expected ErrRevoked, got %v", err)
	}

	// Unrevoked but expired: expired wins over the password prompt.
	stored.IsRevoked = false
	if _, err := f.svc.Access(ctx, link.Token, nil); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestAccess_Limit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourcePatientSummary,
		ResourceID:   uuid.New(),
		MaxAccesses:  intp(1),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Access(ctx, link.Token, nil); err != nil {
		t.Fatalf("first access: %v", err)
	}
	if _, err := f.svc.Access(ctx, link.Token, nil); !errors.Is(err, ErrLimitReached) {
		t.Errorf("expected ErrLimitReached, got %v", err)
	}
}

func TestAccess_Password(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourcePatientSummary,
		ResourceID:   uuid.New(),
		Password:     strp("secret"),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	// No password supplied: a prompt, not an error, and no access consumed.
	res, err := f.svc.Access(ctx, link.Token, nil)
	if err != nil {
		t.Fatalf("Access without password: %v", err)
	}
	if !res.RequiresPassword {
		t.Error("expected requiresPassword")
	}
	if f.repo.links[link.ID].AccessCount != 0 {
		t.Error("password prompt must not consume an access")
	}

	if _, err := f.svc.Access(ctx, link.Token, strp("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if f.repo.links[link.ID].AccessCount != 0 {
		t.Error("wrong password must not consume an access")
	}

	res, err = f.svc.Access(ctx, link.Token, strp("secret"))
	if err != nil {
		t.Fatalf("Access with password: %v", err)
	}
	if res.Type != "pdf" {
		t.Errorf("expected pdf result, got %+v", res)
	}
	if f.repo.links[link.ID].AccessCount != 1 {
		t.Errorf("expected access count 1, got %d", f.repo.links[link.ID].AccessCount)
	}
}

func TestAccess_ResourceGone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.exporter.err = patient.ErrNotFound

	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourcePatientSummary,
		ResourceID:   uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Access(ctx, link.Token, nil); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	link, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourceMedicalRecord,
		ResourceID:   uuid.New(),
	}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Revoke(ctx, link.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := f.svc.Access(ctx, link.Token, nil); !errors.Is(err, ErrRevoked) {
		t.Errorf("expected ErrRevoked after revoke, got %v", err)
	}
}

func TestListByResource_HidesHash(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	resourceID := uuid.New()

	if _, err := f.svc.Create(ctx, CreateInput{
		ResourceType: ResourceDocument,
		ResourceID:   resourceID,
		Password:     strp("secret"),
	}, uuid.New()); err != nil {
		t.Fatal(err)
	}

	links, err := f.svc.ListByResource(ctx, ResourceDocument, resourceID)
	if err != nil {
		t.Fatalf("ListByResource: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if !links[0].HasPassword {
		t.Error("expected hasPassword to be derived")
	}
}
