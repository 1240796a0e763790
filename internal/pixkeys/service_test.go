package pixkeys

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/shared"
)

type memoryPixRepo struct {
	keys map[uuid.UUID]PixKey
}

func (r *memoryPixRepo) Create(ctx context.Context, key *PixKey) error {
	r.keys[key.ID] = *key
	return nil
}

func (r *memoryPixRepo) Get(ctx context.Context, id uuid.UUID) (*PixKey, error) {
	key, ok := r.keys[id]
	if !ok {
		return nil, nil
	}
	return &key, nil
}

func (r *memoryPixRepo) List(ctx context.Context, scope shared.Scope) ([]PixKey, error) {
	var out []PixKey
	for _, key := range r.keys {
		if key.Scope == scope {
			out = append(out, key)
		}
	}
	return out, nil
}

func (r *memoryPixRepo) Update(ctx context.Context, key *PixKey) error {
	if _, ok := r.keys[key.ID]; !ok {
		return ErrNotFound
	}
	r.keys[key.ID] = *key
	return nil
}

func (r *memoryPixRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.keys[id]; !ok {
		return ErrNotFound
	}
	delete(r.keys, id)
	return nil
}

func newTestService() (*Service, *memoryPixRepo) {
	repo := &memoryPixRepo{keys: make(map[uuid.UUID]PixKey)}
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestCreateAndUpdate(t *testing.T) {
	svc, _ := newTestService()

	key, err := svc.Create(context.Background(), "user-1", shared.ScopePersonal, Input{
		Label:    "Chave principal",
		KeyType:  TypeEmail,
		KeyValue: "maria@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, TypeEmail, key.KeyType)

	updated, err := svc.Update(context.Background(), shared.ScopePersonal, key.ID, Input{
		Label:    "Chave aleatória",
		KeyType:  TypeRandom,
		KeyValue: uuid.NewString(),
	})
	require.NoError(t, err)
	require.Equal(t, TypeRandom, updated.KeyType)
}

func TestCreateBRCodePayload(t *testing.T) {
	svc, _ := newTestService()

	payload := "00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-4266554400005204000053039865802BR"
	key, err := svc.Create(context.Background(), "user-1", shared.ScopePersonal, Input{
		Label:    "Cobrança fixa",
		KeyType:  TypeBRCode,
		KeyValue: payload,
	})
	require.NoError(t, err)
	require.Equal(t, payload, key.KeyValue)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "user-1", shared.ScopePersonal, Input{
		Label: "Sem valor", KeyType: TypeEmail,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), "user-1", shared.ScopePersonal, Input{
		Label: "Tipo inválido", KeyType: KeyType("qr"), KeyValue: "x",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestScopeIsolation(t *testing.T) {
	svc, _ := newTestService()

	key, err := svc.Create(context.Background(), "user-1", shared.ScopeFather, Input{
		Label:    "Conta do pai",
		KeyType:  TypeCPF,
		KeyValue: "123.456.789-00",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), shared.ScopePersonal, key.ID)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(context.Background(), shared.ScopeFather, key.ID)
	require.NoError(t, err)
	require.Equal(t, key.ID, got.ID)
}
