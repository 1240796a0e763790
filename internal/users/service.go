package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/contaflow/contaflow/internal/shared"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("users: not found")

// ErrEmailTaken marks a create or update colliding with an existing
// email.
var ErrEmailTaken = errors.New("users: email already registered")

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, user *User, passwordHash string) error
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GrantsPort removes permission grants when a user is deleted.
type GrantsPort interface {
	RemoveAllForUser(ctx context.Context, userID string) error
}

// CreateInput carries the fields of a new user.
type CreateInput struct {
	Email    string
	Name     string
	Password string
	IsAdmin  bool
}

// UpdateInput carries the editable fields of a user.
type UpdateInput struct {
	Name     *string
	IsAdmin  *bool
	IsActive *bool
	Password *string
}

// Service handles user management business logic.
type Service struct {
	repo   RepositoryPort
	grants GrantsPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, grants GrantsPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, grants: grants, logger: logger, now: time.Now}
}

// Create registers a new user with a bcrypt hashed password.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	if input.Email == "" {
		return nil, shared.Validation("email is required")
	}
	if len(input.Password) < 8 {
		return nil, shared.Validation("password must have at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &User{
		ID:        uuid.New(),
		Email:     input.Email,
		Name:      input.Name,
		IsAdmin:   input.IsAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user, string(hash)); err != nil {
		return nil, err
	}
	return user, nil
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Update edits one user. A new password, when present, is re-hashed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, shared.Validation("password must have at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetPassword(ctx, id, string(hash)); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Delete removes one user together with every permission grant they
// held.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.grants != nil {
		if err := s.grants.RemoveAllForUser(ctx, id.String()); err != nil {
			s.logger.Warn("remove user grants", slog.Any("error", err), slog.String("user_id", id.String()))
		}
	}
	return nil
}
