package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contaflow/contaflow/internal/shared"
)

type memoryAuthRepo struct {
	users    map[string]User
	sessions map[string]string
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &user, nil
}

func (r *memoryAuthRepo) CreateSession(ctx context.Context, id string, userID string, expiresAt time.Time, ip, ua string) error {
	r.sessions[id] = userID
	return nil
}

func (r *memoryAuthRepo) DeleteSession(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func newTestService(t *testing.T, active bool) (*Service, *memoryAuthRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &memoryAuthRepo{
		users: map[string]User{
			"maria@example.com": {
				ID:           uuid.New(),
				Email:        "maria@example.com",
				Name:         "Maria",
				PasswordHash: string(hash),
				IsActive:     active,
			},
		},
		sessions: make(map[string]string),
	}
	return NewService(repo), repo
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t, true)

	user, err := svc.Authenticate(context.Background(), "maria@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "Maria", user.Name)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, true)

	_, err := svc.Authenticate(context.Background(), "maria@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, true)

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, _ := newTestService(t, false)

	_, err := svc.Authenticate(context.Background(), "maria@example.com", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	svc, repo := newTestService(t, true)

	err := svc.RegisterSession(context.Background(), "sess-1", "user-1", time.Now().Add(time.Hour), "127.0.0.1", "go-test")
	require.NoError(t, err)
	require.Contains(t, repo.sessions, "sess-1")

	err = svc.RemoveSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotContains(t, repo.sessions, "sess-1")
}
