package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// Resolve returns the session joined to its user when the token exists
	// and expires_at is still in the future. Expired rows are invisible.
	Resolve(ctx context.Context, token string, now time.Time) (*ResolvedSession, error)
	// DeleteByUser removes every session of the user, logging out all devices.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	// DeleteExpired prunes rows whose expiry has passed; for maintenance.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
