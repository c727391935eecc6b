package cycles

import (
	"context"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Cycle, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Cycle, error) {
	if id <= 0 {
		return Cycle{}, shared.Validation("invalid cycle ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Cycle) (Cycle, error) {
	if err := s.validate(c); err != nil {
		return Cycle{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Cycle) error {
	if id <= 0 {
		return shared.Validation("invalid cycle ID")
	}
	if err := s.validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, c)
}

// SetOpen opens or closes a cycle for document submission.
func (s *Service) SetOpen(ctx context.Context, id int64, open bool) error {
	if id <= 0 {
		return shared.Validation("invalid cycle ID")
	}
	return s.repo.SetOpen(ctx, id, open)
}
