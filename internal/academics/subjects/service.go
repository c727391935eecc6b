package subjects

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

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Subject, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Subject, error) {
	if id <= 0 {
		return Subject{}, shared.Validation("invalid subject ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, subject Subject) (Subject, error) {
	if err := s.validate(subject); err != nil {
		return Subject{}, err
	}
	return s.repo.Create(ctx, subject)
}

func (s *Service) Update(ctx context.Context, id int64, subject Subject) error {
	if id <= 0 {
		return shared.Validation("invalid subject ID")
	}
	if err := s.validate(subject); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, subject)
}

// AssignTeacher links or unlinks (nil) the teacher responsible for the subject.
func (s *Service) AssignTeacher(ctx context.Context, id int64, teacherID *int64) error {
	if id <= 0 {
		return shared.Validation("invalid subject ID")
	}
	if teacherID != nil && *teacherID <= 0 {
		return shared.Validation("invalid teacher ID")
	}
	return s.repo.AssignTeacher(ctx, id, teacherID)
}
