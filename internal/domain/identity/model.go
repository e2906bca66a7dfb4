package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a practitioner account. The password hash never leaves the server.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Session is one logged-in device. Tokens are opaque random strings; expiry
// is fixed at creation with no sliding window.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"-"`
	IPAddress *string   `json:"-"`
	UserAgent *string   `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResolvedSession is the join of a live session row with its user, produced
// when authenticating a request.
type ResolvedSession struct {
	UserID uuid.UUID
	Role   string
}
