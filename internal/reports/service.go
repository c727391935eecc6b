package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// StatusTotals aggregates documents by verification state.
type StatusTotals struct {
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
	Rejected int64 `json:"rejected"`
}

// SubjectCompliance is the per-subject breakdown of a compliance report.
type SubjectCompliance struct {
	SubjectID   int64        `json:"subject_id"`
	SubjectCode string       `json:"subject_code"`
	SubjectName string       `json:"subject_name"`
	TeacherID   *int64       `json:"teacher_id,omitempty"`
	TeacherName string       `json:"teacher_name,omitempty"`
	Totals      StatusTotals `json:"totals"`
	Completion  float64      `json:"completion"`
}

// ComplianceReport is the portfolio-verification snapshot for one cycle.
type ComplianceReport struct {
	CycleID     int64               `json:"cycle_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Totals      StatusTotals        `json:"totals"`
	Subjects    []SubjectCompliance `json:"subjects"`
	Teachers    int64               `json:"teachers"`
}

// Repository defines the aggregation queries behind reports.
type Repository interface {
	CycleTotals(ctx context.Context, cycleID int64) (StatusTotals, error)
	SubjectBreakdown(ctx context.Context, cycleID int64) ([]SubjectCompliance, error)
	ActiveTeacherCount(ctx context.Context) (int64, error)
}

// Service produces cached compliance snapshots.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService builds Service instance.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Compliance resolves the cycle snapshot using cache-aware lookups. The
// three aggregates are independent, so they run concurrently.
func (s *Service) Compliance(ctx context.Context, cycleID int64) (ComplianceReport, error) {
	if cycleID <= 0 {
		return ComplianceReport{}, shared.Validation("invalid cycle ID")
	}
	loader := func(ctx context.Context) (interface{}, error) {
		var report ComplianceReport
		report.CycleID = cycleID
		report.GeneratedAt = time.Now().UTC()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			totals, err := s.repo.CycleTotals(gctx, cycleID)
			if err != nil {
				return err
			}
			report.Totals = totals
			return nil
		})
		g.Go(func() error {
			subjects, err := s.repo.SubjectBreakdown(gctx, cycleID)
			if err != nil {
				return err
			}
			report.Subjects = subjects
			return nil
		})
		g.Go(func() error {
			teachers, err := s.repo.ActiveTeacherCount(gctx)
			if err != nil {
				return err
			}
			report.Teachers = teachers
			return nil
		})
		if err := g.Wait(); err != nil {
			return ComplianceReport{}, err
		}
		for i := range report.Subjects {
			report.Subjects[i].Completion = completionRatio(report.Subjects[i].Totals)
		}
		return report, nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return ComplianceReport{}, err
		}
		return value.(ComplianceReport), nil
	}

	key, err := s.cache.BuildKey(ctx, keyCompliance(cycleID))
	if err != nil {
		return ComplianceReport{}, err
	}
	var report ComplianceReport
	if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
		return ComplianceReport{}, err
	}
	return report, nil
}

// Invalidate drops every cached snapshot. Called after verdicts and role
// changes move the numbers.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}

func completionRatio(t StatusTotals) float64 {
	total := t.Pending + t.Verified + t.Rejected
	if total == 0 {
		return 0
	}
	return float64(t.Verified) / float64(total)
}
