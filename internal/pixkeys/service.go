package pixkeys

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/shared"
)

// ErrNotFound indicates the PIX key does not exist.
var ErrNotFound = errors.New("pixkeys: not found")

// RepositoryPort defines data access methods for PIX keys.
type RepositoryPort interface {
	Create(ctx context.Context, key *PixKey) error
	Get(ctx context.Context, id uuid.UUID) (*PixKey, error)
	List(ctx context.Context, scope shared.Scope) ([]PixKey, error)
	Update(ctx context.Context, key *PixKey) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Input carries the submitted fields of a PIX key form.
type Input struct {
	Label         string
	KeyType       KeyType
	KeyValue      string
	BankAccountID *uuid.UUID
}

// Service handles PIX key business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func validateInput(input Input) error {
	if input.Label == "" {
		return shared.Validation("label is required")
	}
	if !ValidKeyType(input.KeyType) {
		return shared.Validation("unknown key type")
	}
	if input.KeyValue == "" {
		return shared.Validation("key value is required")
	}
	return nil
}

// Create registers a PIX key.
func (s *Service) Create(ctx context.Context, userID string, scope shared.Scope, input Input) (*PixKey, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := s.now()
	key := &PixKey{
		ID:            uuid.New(),
		UserID:        userID,
		Scope:         scope,
		Label:         input.Label,
		KeyType:       input.KeyType,
		KeyValue:      input.KeyValue,
		BankAccountID: input.BankAccountID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Get fetches one PIX key, enforcing the request scope.
func (s *Service) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*PixKey, error) {
	key, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil || key.Scope != scope {
		return nil, ErrNotFound
	}
	return key, nil
}

// List returns every PIX key in the scope.
func (s *Service) List(ctx context.Context, scope shared.Scope) ([]PixKey, error) {
	return s.repo.List(ctx, scope)
}

// Update replaces the editable fields of one PIX key.
func (s *Service) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, input Input) (*PixKey, error) {
	key, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	key.Label = input.Label
	key.KeyType = input.KeyType
	key.KeyValue = input.KeyValue
	key.BankAccountID = input.BankAccountID
	key.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Delete removes one PIX key.
func (s *Service) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
