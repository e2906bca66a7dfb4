package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docnotes/docnotes/internal/platform/auth"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
)

const (
	bcryptCost       = 12
	tokenBytes       = 48
	minPasswordChars = 8
)

type Service struct {
	users      UserRepository
	sessions   SessionRepository
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(users UserRepository, sessions SessionRepository, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by Register and Login: the user plus a fresh
// session token.
type AuthResult struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ClientInfo carries request metadata recorded on the session row.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

func (s *Service) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(in.Password) < minPasswordChars {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordChars)
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}

	role := in.Role
	if role == "" {
		role = auth.RoleGP
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:          email,
		HashedPassword: string(hash),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           role,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.startSession(ctx, u, client)
}

func (s *Service) Login(ctx context.Context, creds Credentials, client ClientInfo) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.startSession(ctx, u, client)
}

// Logout deletes every session of the user, not just the presented token, so
// a single logout invalidates all devices.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.DeleteByUser(ctx, userID)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// Resolve implements auth.Resolver for the session middleware.
func (s *Service) Resolve(ctx context.Context, token string) (*auth.Session, error) {
	rs, err := s.sessions.Resolve(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return &auth.Session{UserID: rs.UserID, Role: rs.Role}, nil
}

// ListUsers returns all accounts; admin surface.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

type UpdateUserInput struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// UpdateUser changes role or active flag; admin surface. Deactivating does
// not revoke existing sessions immediately, but login is refused.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != nil {
		if !auth.ValidRole(*in.Role) {
			return nil, fmt.Errorf("invalid role: %s", *in.Role)
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) startSession(ctx context.Context, u *User, client ClientInfo) (*AuthResult, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		UserID:    u.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if client.IPAddress != "" {
		sess.IPAddress = &client.IPAddress
	}
	if client.UserAgent != "" {
		sess.UserAgent = &client.UserAgent
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	return &AuthResult{User: u, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
