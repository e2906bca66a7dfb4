package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docnotes/docnotes/internal/platform/auth"
)

// ---- mocks ----

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range m.users {
		cp := *u
		items = append(items, &cp)
	}
	return items, len(items), nil
}

type mockSessionRepo struct {
	users    *mockUserRepo
	sessions map[string]*Session
}

func newMockSessionRepo(users *mockUserRepo) *mockSessionRepo {
	return &mockSessionRepo{users: users, sessions: make(map[string]*Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, s *Session) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	m.sessions[s.Token] = &cp
	return nil
}

func (m *mockSessionRepo) Resolve(_ context.Context, token string, now time.Time) (*ResolvedSession, error) {
	s, ok := m.sessions[token]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, ErrSessionNotFound
	}
	u, ok := m.users.users[s.UserID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &ResolvedSession{UserID: u.ID, Role: u.Role}, nil
}

func (m *mockSessionRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for token, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *mockUserRepo, *mockSessionRepo) {
	users := newMockUserRepo()
	sessions := newMockSessionRepo(users)
	svc := NewService(users, sessions, 168*time.Hour)
	return svc, users, sessions
}

func registerInput() RegisterInput {
	return RegisterInput{
		Email:     "jane@example.com",
		Password:  "correct-horse",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

// ---- tests ----

func TestRegister_CreatesUserAndSession(t *testing.T) {
	svc, users, sessions := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, registerInput(), ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if result.User.Role != auth.RoleGP {
		t.Errorf("expected default role gp, got %s", result.User.Role)
	}
	if !result.User.IsActive {
		t.Error("expected new user to be active")
	}
	if len(result.Token) != 96 {
		t.Errorf("expected 96-char hex token, got %d chars", len(result.Token))
	}

	stored := users.users[result.User.ID]
	if stored.HashedPassword == "correct-horse" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("correct-horse")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	if _, ok := sessions.sessions[result.Token]; !ok {
		t.Error("expected session row for issued token")
	}
	wantExpiry := time.Now().Add(168 * time.Hour)
	if result.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || result.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry %v not within a minute of %v", result.ExpiresAt, wantExpiry)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ClientInfo{}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, registerInput(), ClientInfo{})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	in := registerInput()
	in.Password = "short"
	if _, err := svc.Register(ctx, in, ClientInfo{}); err == nil {
		t.Error("expected error for short password")
	}

	in = registerInput()
	in.Email = "not-an-email"
	if _, err := svc.Register(ctx, in, ClientInfo{}); err == nil {
		t.Error("expected error for invalid email")
	}

	in = registerInput()
	in.Role = "superuser"
	if _, err := svc.Register(ctx, in, ClientInfo{}); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput(), ClientInfo{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, errUnknown := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "whatever"}, ClientInfo{})
	_, errWrongPw := svc.Login(ctx, Credentials{Email: "jane@example.com", Password: "wrong"}, ClientInfo{})

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPw)
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, registerInput(), ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	users.users[result.User.ID].IsActive = false

	_, err = svc.Login(ctx, Credentials{Email: "jane@example.com", Password: "correct-horse"}, ClientInfo{})
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLogout_InvalidatesAllSessions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, registerInput(), ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := svc.Login(ctx, Credentials{Email: "jane@example.com", Password: "correct-horse"}, ClientInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, first.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		if _, err := svc.Resolve(ctx, token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("token %s: expected auth.ErrInvalidToken after logout, got %v", token[:8], err)
		}
	}
}

func TestResolve_ExpiredSession(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, registerInput(), ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Resolve(ctx, result.Token); err != nil {
		t.Fatalf("Resolve before expiry: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(169 * time.Hour) }
	if _, err := svc.Resolve(ctx, result.Token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected auth.ErrInvalidToken after expiry, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, registerInput(), ClientInfo{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	role := auth.RoleAdmin
	inactive := false
	u, err := svc.UpdateUser(ctx, result.User.ID, UpdateUserInput{Role: &role, IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.Role != auth.RoleAdmin || u.IsActive {
		t.Errorf("update not applied: role=%s active=%v", u.Role, u.IsActive)
	}

	bad := "superuser"
	if _, err := svc.UpdateUser(ctx, result.User.ID, UpdateUserInput{Role: &bad}); err == nil {
		t.Error("expected error for invalid role")
	}

	if _, err := svc.UpdateUser(ctx, uuid.New(), UpdateUserInput{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
