package bankaccounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/shared"
)

// ErrNotFound indicates the bank account does not exist.
var ErrNotFound = errors.New("bankaccounts: not found")

// RepositoryPort defines data access methods for bank accounts.
type RepositoryPort interface {
	Create(ctx context.Context, acc *BankAccount) error
	Get(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	List(ctx context.Context, scope shared.Scope) ([]BankAccount, error)
	Update(ctx context.Context, acc *BankAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Input carries the submitted fields of a bank account form.
type Input struct {
	Name     string
	Kind     Kind
	Checking *CheckingInfo
	Card     *CardInfo
}

// Service handles bank account business logic.
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
	if input.Name == "" {
		return shared.Validation("name is required")
	}
	switch input.Kind {
	case KindChecking:
		if input.Card != nil {
			return shared.Validation("checking accounts take no card fields")
		}
		if input.Checking == nil || input.Checking.BankCode == "" || input.Checking.Number == "" {
			return shared.Validation("bank code and account number are required")
		}
	case KindCard:
		if input.Checking != nil {
			return shared.Validation("cards take no checking fields")
		}
		if input.Card == nil || input.Card.Brand == "" {
			return shared.Validation("card brand is required")
		}
		if input.Card.Limit.Cents() <= 0 {
			return shared.Validation("card limit must be positive")
		}
		if input.Card.ClosingDay < 1 || input.Card.ClosingDay > 31 {
			return shared.Validation("closing day must be between 1 and 31")
		}
		if input.Card.DueDay < 1 || input.Card.DueDay > 31 {
			return shared.Validation("due day must be between 1 and 31")
		}
	default:
		return shared.Validation("kind must be checking or card")
	}
	return nil
}

// Create registers a bank account or card.
func (s *Service) Create(ctx context.Context, userID string, scope shared.Scope, input Input) (*BankAccount, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := s.now()
	acc := &BankAccount{
		ID:        uuid.New(),
		UserID:    userID,
		Scope:     scope,
		Name:      input.Name,
		Kind:      input.Kind,
		Checking:  input.Checking,
		Card:      input.Card,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Get fetches one bank account, enforcing the request scope.
func (s *Service) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*BankAccount, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Scope != scope {
		return nil, ErrNotFound
	}
	return acc, nil
}

// List returns every bank account in the scope.
func (s *Service) List(ctx context.Context, scope shared.Scope) ([]BankAccount, error) {
	return s.repo.List(ctx, scope)
}

// Update replaces the editable fields of one bank account. Kind is
// immutable.
func (s *Service) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, input Input) (*BankAccount, error) {
	acc, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if input.Kind != acc.Kind {
		return nil, shared.Validation("kind cannot change")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	acc.Name = input.Name
	acc.Checking = input.Checking
	acc.Card = input.Card
	acc.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Delete removes one bank account.
func (s *Service) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
