package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contaflow/contaflow/internal/shared"
)

type memoryUsersRepo struct {
	users  map[uuid.UUID]User
	hashes map[uuid.UUID]string
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{
		users:  make(map[uuid.UUID]User),
		hashes: make(map[uuid.UUID]string),
	}
}

func (r *memoryUsersRepo) Create(ctx context.Context, user *User, passwordHash string) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = *user
	r.hashes[user.ID] = passwordHash
	return nil
}

func (r *memoryUsersRepo) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *memoryUsersRepo) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memoryUsersRepo) Update(ctx context.Context, user *User) error {
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUsersRepo) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	r.hashes[id] = passwordHash
	return nil
}

func (r *memoryUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	delete(r.hashes, id)
	return nil
}

type recordingGrants struct {
	removed []string
}

func (g *recordingGrants) RemoveAllForUser(ctx context.Context, userID string) error {
	g.removed = append(g.removed, userID)
	return nil
}

func newTestService() (*Service, *memoryUsersRepo, *recordingGrants) {
	repo := newMemoryUsersRepo()
	grants := &recordingGrants{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, grants, logger), repo, grants
}

func TestCreateHashesPassword(t *testing.T) {
	svc, repo, _ := newTestService()

	user, err := svc.Create(context.Background(), CreateInput{
		Email:    "maria@example.com",
		Name:     "Maria",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.True(t, user.IsActive)

	hash := repo.hashes[user.ID]
	require.NotEqual(t, "correct-horse", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "maria@example.com",
		Name:     "Maria",
		Password: "short",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	input := CreateInput{Email: "maria@example.com", Name: "Maria", Password: "correct-horse"}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateTogglesAdmin(t *testing.T) {
	svc, _, _ := newTestService()

	user, err := svc.Create(context.Background(), CreateInput{
		Email: "maria@example.com", Name: "Maria", Password: "correct-horse",
	})
	require.NoError(t, err)

	admin := true
	updated, err := svc.Update(context.Background(), user.ID, UpdateInput{IsAdmin: &admin})
	require.NoError(t, err)
	require.True(t, updated.IsAdmin)
}

func TestDeleteRemovesGrants(t *testing.T) {
	svc, repo, grants := newTestService()

	user, err := svc.Create(context.Background(), CreateInput{
		Email: "maria@example.com", Name: "Maria", Password: "correct-horse",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), user.ID)
	require.NoError(t, err)
	require.Empty(t, repo.users)
	require.Equal(t, []string{user.ID.String()}, grants.removed)

	err = svc.Delete(context.Background(), user.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
