package users

import (
	"context"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetByID(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, page shared.Pagination) ([]User, int, error)
	UpsertByEmail(ctx context.Context, email, name string) (User, bool, error)
}

// Service handles user lookups for the rest of the system.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetByID returns the user, ErrUserNotFound when missing.
func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetActive returns the user only when the account is active.
func (s *Service) GetActive(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !user.IsActive {
		return User{}, shared.ErrUserNotFound
	}
	return user, nil
}

// List returns a page of users with pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}
