package subjects

import (
	"strings"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

func (s *Service) validate(subject Subject) error {
	if subject.CycleID <= 0 {
		return shared.Validation("subject cycle is required")
	}
	if strings.TrimSpace(subject.Code) == "" {
		return shared.Validation("subject code is required")
	}
	if strings.TrimSpace(subject.Name) == "" {
		return shared.Validation("subject name is required")
	}
	if subject.Credits <= 0 || subject.Credits > 20 {
		return shared.Validation("subject credits must be between 1 and 20")
	}
	return nil
}
