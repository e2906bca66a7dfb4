package sharelink

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docnotes/docnotes/internal/domain/document"
	"github.com/docnotes/docnotes/internal/domain/medicalrecord"
	"github.com/docnotes/docnotes/internal/domain/patient"
	"github.com/docnotes/docnotes/internal/platform/db"
)

// Redemption failures, each with the exact message shown to the anonymous
// caller. The guard order matters: a dead protected link must report that it
// is dead, never prompt for a password.
var (
	ErrRevoked          = errors.New("This share link has been revoked")
	ErrExpired          = errors.New("This share link has expired")
	ErrLimitReached     = errors.New("This share link has reached its access limit")
	ErrWrongPassword    = errors.New("Incorrect password")
	ErrResourceNotFound = errors.New("Resource not found")
)

const (
	tokenBytes = 32

	minExpiryHours     = 1
	maxExpiryHours     = 720
	defaultExpiryHours = 72

	minPasswordChars = 4
	maxPasswordChars = 128

	minMaxAccesses = 1
	maxMaxAccesses = 100

	bcryptCost = 12
)

// Exporter renders shareable resources to PDF. Implemented by the export
// service.
type Exporter interface {
	PatientSummary(ctx context.Context, patientID uuid.UUID) ([]byte, string, error)
	MedicalRecord(ctx context.Context, recordID uuid.UUID) ([]byte, string, error)
}

// DocumentDownloader issues presigned download URLs for redemption.
// Implemented by the document service; archived documents stay reachable
// through links issued while they were active.
type DocumentDownloader interface {
	SharedDownloadURL(ctx context.Context, id uuid.UUID) (string, *document.Document, error)
}

type Service struct {
	links     Repository
	runner    db.Runner
	exporter  Exporter
	documents DocumentDownloader
	webURL    string
	now       func() time.Time
}

func NewService(links Repository, runner db.Runner, exporter Exporter, documents DocumentDownloader, webURL string) *Service {
	return &Service{
		links:     links,
		runner:    runner,
		exporter:  exporter,
		documents: documents,
		webURL:    strings.TrimRight(webURL, "/"),
		now:       time.Now,
	}
}

type CreateInput struct {
	ResourceType   string    `json:"resourceType"`
	ResourceID     uuid.UUID `json:"resourceId"`
	ExpiresInHours int       `json:"expiresInHours"`
	Password       *string   `json:"password"`
	MaxAccesses    *int      `json:"maxAccesses"`
}

// CreatedLink is the creation response. The raw token appears here once;
// listings only ever show metadata.
type CreatedLink struct {
	ID          uuid.UUID `json:"id"`
	Token       string    `json:"token"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
	HasPassword bool      `json:"hasPassword"`
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy uuid.UUID) (*CreatedLink, error) {
	if !validResourceTypes[in.ResourceType] {
		return nil, fmt.Errorf("invalid resource type: %s", in.ResourceType)
	}
	if in.ResourceID == uuid.Nil {
		return nil, fmt.Errorf("resourceId is required")
	}

	hours := in.ExpiresInHours
	if hours == 0 {
		hours = defaultExpiryHours
	}
	if hours < minExpiryHours || hours > maxExpiryHours {
		return nil, fmt.Errorf("expiresInHours must be between %d and %d", minExpiryHours, maxExpiryHours)
	}

	var passwordHash *string
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < minPasswordChars || len(*in.Password) > maxPasswordChars {
			return nil, fmt.Errorf("password must be between %d and %d characters", minPasswordChars, maxPasswordChars)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	if in.MaxAccesses != nil {
		if *in.MaxAccesses < minMaxAccesses || *in.MaxAccesses > maxMaxAccesses {
			return nil, fmt.Errorf("maxAccesses must be between %d and %d", minMaxAccesses, maxMaxAccesses)
		}
	}

	l := &ShareLink{
		Token:        newToken(),
		ResourceType: in.ResourceType,
		ResourceID:   in.ResourceID,
		CreatedBy:    createdBy,
		PasswordHash: passwordHash,
		MaxAccesses:  in.MaxAccesses,
		ExpiresAt:    s.now().Add(time.Duration(hours) * time.Hour),
	}
	if err := s.links.Create(ctx, l); err != nil {
		return nil, err
	}

	return &CreatedLink{
		ID:          l.ID,
		Token:       l.Token,
		URL:         s.webURL + "/share/" + l.Token,
		ExpiresAt:   l.ExpiresAt,
		HasPassword: l.HasPassword(),
	}, nil
}

// LinkInfo is the listing view; it derives hasPassword and omits both the
// hash and the raw token's URL.
type LinkInfo struct {
	ID           uuid.UUID `json:"id"`
	Token        string    `json:"token"`
	ResourceType string    `json:"resourceType"`
	ResourceID   uuid.UUID `json:"resourceId"`
	CreatedBy    uuid.UUID `json:"createdBy"`
	HasPassword  bool      `json:"hasPassword"`
	MaxAccesses  *int      `json:"maxAccesses"`
	AccessCount  int       `json:"accessCount"`
	IsRevoked    bool      `json:"isRevoked"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Service) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]LinkInfo, error) {
	if !validResourceTypes[resourceType] {
		return nil, fmt.Errorf("invalid resource type: %s", resourceType)
	}
	links, err := s.links.ListByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	out := make([]LinkInfo, 0, len(links))
	for _, l := range links {
		out = append(out, LinkInfo{
			ID:           l.ID,
			Token:        l.Token,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			CreatedBy:    l.CreatedBy,
			HasPassword:  l.HasPassword(),
			MaxAccesses:  l.MaxAccesses,
			AccessCount:  l.AccessCount,
			IsRevoked:    l.IsRevoked,
			ExpiresAt:    l.ExpiresAt,
			CreatedAt:    l.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.links.Revoke(ctx, id)
}

// AccessResult is the redemption payload. Exactly one shape is populated:
// RequiresPassword alone, a base64 PDF, or a redirect URL.
type AccessResult struct {
	RequiresPassword bool   `json:"requiresPassword,omitempty"`
	Type             string `json:"type,omitempty"`
	Base64           string `json:"base64,omitempty"`
	URL              string `json:"url,omitempty"`
	FileName         string `json:"fileName,omitempty"`
}

// Access redeems a token. The guards run in a fixed order so each dead link
// reports one specific reason; only when all pass is the access counted and
// the resource resolved, both inside one transaction so a failed resolution
// does not consume an access.
func (s *Service) Access(ctx context.Context, token string, password *string) (*AccessResult, error) {
	l, err := s.links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if l.IsRevoked {
		return nil, ErrRevoked
	}
	if s.now().After(l.ExpiresAt) {
		return nil, ErrExpired
	}
	if l.MaxAccesses != nil && l.AccessCount >= *l.MaxAccesses {
		return nil, ErrLimitReached
	}
	if l.HasPassword() {
		if password == nil || *password == "" {
			return &AccessResult{RequiresPassword: true}, nil
		}
		if bcrypt.CompareHashAndPassword([]byte(*l.PasswordHash), []byte(*password)) != nil {
			return nil, ErrWrongPassword
		}
	}

	var result *AccessResult
	err = s.runner.WithTx(ctx, func(ctx context.Context) error {
		if err := s.links.IncrementAccess(ctx, l.ID); err != nil {
			return err
		}
		r, err := s.resolve(ctx, l)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, l *ShareLink) (*AccessResult, error) {
	switch l.ResourceType {
	case ResourcePatientSummary:
		pdf, name, err := s.exporter.PatientSummary(ctx, l.ResourceID)
		if err != nil {
			return nil, mapResourceErr(err)
		}
		return &AccessResult{Type: "pdf", Base64: base64.StdEncoding.EncodeToString(pdf), FileName: name}, nil
	case ResourceMedicalRecord:
		pdf, name, err := s.exporter.MedicalRecord(ctx, l.ResourceID)
		if err != nil {
			return nil, mapResourceErr(err)
		}
		return &AccessResult{Type: "pdf", Base64: base64.StdEncoding.EncodeToString(pdf), FileName: name}, nil
	case ResourceDocument:
		url, d, err := s.documents.SharedDownloadURL(ctx, l.ResourceID)
		if err != nil {
			return nil, mapResourceErr(err)
		}
		return &AccessResult{Type: "redirect", URL: url, FileName: d.FileName}, nil
	default:
		return nil, fmt.Errorf("unknown resource type: %s", l.ResourceType)
	}
}

// mapResourceErr hides which kind of record died behind the link; the public
// caller learns only that nothing is there anymore.
func mapResourceErr(err error) error {
	if isNotFound(err) {
		return ErrResourceNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, document.ErrNotFound) ||
		errors.Is(err, patient.ErrNotFound) ||
		errors.Is(err, medicalrecord.ErrNotFound)
}

func newToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("sharelink: read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}
