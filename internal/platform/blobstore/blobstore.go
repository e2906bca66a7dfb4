// Package blobstore abstracts the object store holding patient document
// blobs. Clients upload and download directly against presigned URLs; the
// API server never proxies file bytes.
package blobstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrBlobNotFound = errors.New("blob not found")

// Presign validity windows.
const (
	PutURLExpiry = 10 * time.Minute
	GetURLExpiry = time.Hour
)

// MaxFileSize is the largest accepted upload in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// Store is the contract for object storage backends.
type Store interface {
	// PresignPut returns a URL the client can PUT the blob to.
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)
	// PresignGet returns a URL serving the blob as an attachment named
	// fileName.
	PresignGet(ctx context.Context, key, fileName string, expires time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// GenerateKey builds the storage key for a new patient document:
// patients/<patientID>/<8 random bytes hex><original extension>.
func GenerateKey(patientID uuid.UUID, fileName string) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failure means the process is beyond saving
		panic(fmt.Sprintf("blobstore: read random bytes: %v", err))
	}
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("patients/%s/%s%s", patientID, hex.EncodeToString(buf[:]), ext)
}
