package cycles

import (
	"strings"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

func (s *Service) validate(c Cycle) error {
	if strings.TrimSpace(c.Code) == "" {
		return shared.Validation("cycle code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return shared.Validation("cycle name is required")
	}
	if !c.EndsOn.After(c.StartsOn) {
		return shared.Validation("cycle must end after it starts")
	}
	return nil
}
