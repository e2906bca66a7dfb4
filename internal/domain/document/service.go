package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docnotes/docnotes/internal/domain/patient"
	"github.com/docnotes/docnotes/internal/platform/blobstore"
)

type Service struct {
	documents Repository
	patients  patient.Repository
	blobs     blobstore.Store
	logger    zerolog.Logger
}

func NewService(documents Repository, patients patient.Repository, blobs blobstore.Store, logger zerolog.Logger) *Service {
	return &Service{documents: documents, patients: patients, blobs: blobs, logger: logger}
}

type UploadRequest struct {
	PatientID       uuid.UUID  `json:"patientId"`
	MedicalRecordID *uuid.UUID `json:"medicalRecordId"`
	FileName        string     `json:"fileName"`
	ContentType     string     `json:"contentType"`
	SizeBytes       int64      `json:"sizeBytes"`
	Category        string     `json:"category"`
	Description     *string    `json:"description"`
}

// UploadTicket is handed back to the client, which PUTs the file bytes to
// UploadURL and then calls Confirm.
type UploadTicket struct {
	Document  *Document `json:"document"`
	UploadURL string    `json:"uploadUrl"`
}

func (in UploadRequest) validate() error {
	if in.PatientID == uuid.Nil {
		return fmt.Errorf("patientId is required")
	}
	if in.FileName == "" {
		return fmt.Errorf("fileName is required")
	}
	if in.ContentType == "" {
		return fmt.Errorf("contentType is required")
	}
	if in.SizeBytes <= 0 {
		return fmt.Errorf("sizeBytes must be positive")
	}
	if in.SizeBytes > blobstore.MaxFileSize {
		return fmt.Errorf("file exceeds the %d byte limit", blobstore.MaxFileSize)
	}
	if !validCategories[in.Category] {
		return fmt.Errorf("invalid category: %s", in.Category)
	}
	return nil
}

// RequestUpload records the document in status uploading and returns a
// presigned PUT URL. The row stays invisible to listings until Confirm.
func (s *Service) RequestUpload(ctx context.Context, in UploadRequest, uploadedBy uuid.UUID) (*UploadTicket, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, in.PatientID); err != nil {
		return nil, err
	}

	d := &Document{
		PatientID:       in.PatientID,
		MedicalRecordID: in.MedicalRecordID,
		FileName:        in.FileName,
		ContentType:     in.ContentType,
		SizeBytes:       in.SizeBytes,
		Category:        in.Category,
		Description:     in.Description,
		StorageKey:      blobstore.GenerateKey(in.PatientID, in.FileName),
		Status:          StatusUploading,
	}
	if uploadedBy != uuid.Nil {
		d.UploadedBy = &uploadedBy
	}
	if err := s.documents.Create(ctx, d); err != nil {
		return nil, err
	}

	url, err := s.blobs.PresignPut(ctx, d.StorageKey, d.ContentType, blobstore.PutURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &UploadTicket{Document: d, UploadURL: url}, nil
}

// Confirm marks the upload complete. Confirming an already active document
// succeeds again with the current row.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Document, error) {
	activated, err := s.documents.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !activated && d.Status != StatusActive {
		return nil, fmt.Errorf("document is %s and cannot be confirmed", d.Status)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.documents.GetByID(ctx, id)
}

// DownloadURL issues a presigned GET for an active document.
func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (string, *Document, error) {
	d, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if d.Status != StatusActive {
		return "", nil, fmt.Errorf("document is %s and cannot be downloaded", d.Status)
	}
	url, err := s.blobs.PresignGet(ctx, d.StorageKey, d.FileName, blobstore.GetURLExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("presign download: %w", err)
	}
	return url, d, nil
}

// SharedDownloadURL issues a presigned GET for share-link redemption. Unlike
// DownloadURL it does not require the document to be active: a link issued
// while the document was live keeps working after it is archived.
func (s *Service) SharedDownloadURL(ctx context.Context, id uuid.UUID) (string, *Document, error) {
	d, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	url, err := s.blobs.PresignGet(ctx, d.StorageKey, d.FileName, blobstore.GetURLExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("presign download: %w", err)
	}
	return url, d, nil
}

type UpdateInput struct {
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Update edits document metadata. Status may only move between active and
// archived here; uploading is owned by the upload flow.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Document, error) {
	d, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Category != nil {
		if !validCategories[*in.Category] {
			return nil, fmt.Errorf("invalid category: %s", *in.Category)
		}
		d.Category = *in.Category
	}
	if in.Description != nil {
		d.Description = in.Description
	}
	if in.Status != nil {
		if *in.Status != StatusActive && *in.Status != StatusArchived {
			return nil, fmt.Errorf("invalid status: %s", *in.Status)
		}
		if d.Status == StatusUploading {
			return nil, fmt.Errorf("document upload has not been confirmed")
		}
		d.Status = *in.Status
	}
	if err := s.documents.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes the row first and then the blob. A blob that fails to
// delete is logged and left for storage lifecycle rules; the document is
// gone either way.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, d.StorageKey); err != nil {
		s.logger.Warn().Err(err).
			Str("document_id", d.ID.String()).
			Str("storage_key", d.StorageKey).
			Msg("failed to delete blob for removed document")
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, f ListFilter, limit, offset int) ([]*Document, int, error) {
	if f.Category != "" && !validCategories[f.Category] {
		return nil, 0, fmt.Errorf("invalid category: %s", f.Category)
	}
	return s.documents.ListByPatient(ctx, patientID, f, limit, offset)
}
