package profiles

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/report"
)

// ErrNotFound indicates the profile does not exist yet.
var ErrNotFound = errors.New("profiles: not found")

// RepositoryPort defines data access methods for profiles.
type RepositoryPort interface {
	Get(ctx context.Context, userID string, scope shared.Scope) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

// Service handles profile business logic.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Get fetches the profile for one user and scope.
func (s *Service) Get(ctx context.Context, userID string, scope shared.Scope) (*Profile, error) {
	p, err := s.repo.Get(ctx, userID, scope)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Upsert creates or replaces the profile for one user and scope.
func (s *Service) Upsert(ctx context.Context, profile Profile) (*Profile, error) {
	if profile.Name == "" {
		return nil, shared.Validation("name is required")
	}
	if profile.Document == "" {
		return nil, shared.Validation("document is required")
	}
	profile.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Submitter resolves the submitter block printed on bills. A missing
// profile yields empty fields rather than an error so document
// generation never blocks on an unfilled profile.
func (s *Service) Submitter(ctx context.Context, userID string, scope shared.Scope) (report.SubmitterData, error) {
	p, err := s.repo.Get(ctx, userID, scope)
	if err != nil {
		return report.SubmitterData{}, err
	}
	if p == nil {
		return report.SubmitterData{}, nil
	}
	return report.SubmitterData{
		Name:       p.Name,
		Document:   p.Document,
		Address:    p.Address,
		City:       p.City,
		PostalCode: p.PostalCode,
	}, nil
}
