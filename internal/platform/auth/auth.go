// Package auth provides bearer-token session authentication for the HTTP
// layer. Tokens are opaque random strings resolved against the sessions
// table on every request; there is no client-side claims parsing.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Roles assignable to users.
const (
	RoleGP    = "gp"
	RoleNurse = "nurse"
	RoleAdmin = "admin"
)

// ErrInvalidToken is returned by a Resolver when the token does not map to a
// live session.
var ErrInvalidToken = errors.New("invalid or expired token")

// Session is the resolved identity attached to a request.
type Session struct {
	UserID uuid.UUID
	Role   string
}

// Resolver turns a bearer token into a session. Implemented by the identity
// service.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Session, error)
}

// ValidRole reports whether r is one of the assignable roles.
func ValidRole(r string) bool {
	switch r {
	case RoleGP, RoleNurse, RoleAdmin:
		return true
	}
	return false
}
