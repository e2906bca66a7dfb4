package auditlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docnotes/docnotes/internal/platform/audit"
)

// ListFilter narrows the trail; nil fields are ignored.
type ListFilter struct {
	UserID   *uuid.UUID
	Action   *string
	Resource *string
	From     *time.Time
	To       *time.Time
}

// Repository extends the platform audit.Store with the read side used by the
// admin listing.
type Repository interface {
	audit.Store
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*LogEntry, int, error)
}
