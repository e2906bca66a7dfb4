package sharelink

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("Share link not found")

type Repository interface {
	Create(ctx context.Context, l *ShareLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*ShareLink, error)
	GetByToken(ctx context.Context, token string) (*ShareLink, error)
	// ListByResource returns every link ever issued for the resource,
	// newest first.
	ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*ShareLink, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	// IncrementAccess adds one to access_count.
	IncrementAccess(ctx context.Context, id uuid.UUID) error
}
