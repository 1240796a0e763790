package profiles

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/shared"
)

type memoryProfilesRepo struct {
	profiles map[string]Profile
}

func key(userID string, scope shared.Scope) string {
	return userID + "/" + string(scope)
}

func (r *memoryProfilesRepo) Get(ctx context.Context, userID string, scope shared.Scope) (*Profile, error) {
	p, ok := r.profiles[key(userID, scope)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryProfilesRepo) Upsert(ctx context.Context, profile *Profile) error {
	r.profiles[key(profile.UserID, profile.Scope)] = *profile
	return nil
}

func newTestService() (*Service, *memoryProfilesRepo) {
	repo := &memoryProfilesRepo{profiles: make(map[string]Profile)}
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestUpsertAndGet(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Upsert(context.Background(), Profile{
		UserID:   "user-1",
		Scope:    shared.ScopePersonal,
		Name:     "Maria Silva",
		Document: "123.456.789-00",
		City:     "São Paulo",
	})
	require.NoError(t, err)
	require.False(t, p.UpdatedAt.IsZero())

	got, err := svc.Get(context.Background(), "user-1", shared.ScopePersonal)
	require.NoError(t, err)
	require.Equal(t, "Maria Silva", got.Name)

	_, err = svc.Get(context.Background(), "user-1", shared.ScopeHousehold)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertValidatesRequiredFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Upsert(context.Background(), Profile{UserID: "user-1", Scope: shared.ScopePersonal})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSubmitterMissingProfileIsEmpty(t *testing.T) {
	svc, _ := newTestService()

	sub, err := svc.Submitter(context.Background(), "user-1", shared.ScopePersonal)
	require.NoError(t, err)
	require.Empty(t, sub.Name)

	_, err = svc.Upsert(context.Background(), Profile{
		UserID: "user-1", Scope: shared.ScopePersonal,
		Name: "Maria Silva", Document: "123.456.789-00",
	})
	require.NoError(t, err)

	sub, err = svc.Submitter(context.Background(), "user-1", shared.ScopePersonal)
	require.NoError(t, err)
	require.Equal(t, "Maria Silva", sub.Name)
	require.Equal(t, "123.456.789-00", sub.Document)
}
