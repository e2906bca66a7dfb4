// Package auditlog stores and serves the audit trail written by the platform
// audit sink.
package auditlog

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one persisted audit event. UserID is nullable: anonymous
// actions (failed logins, public share access) have no actor.
type LogEntry struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"userId"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID *uuid.UUID `json:"resourceId"`
	IPAddress  *string    `json:"ipAddress"`
	UserAgent  *string    `json:"userAgent"`
	CreatedAt  time.Time  `json:"createdAt"`
}
