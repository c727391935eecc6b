package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
)

// PGRepository implements Repository using PostgreSQL aggregates.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CycleTotals(ctx context.Context, cycleID int64) (StatusTotals, error) {
	var t StatusTotals
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE d.status = 'pending'),
			COUNT(*) FILTER (WHERE d.status = 'verified'),
			COUNT(*) FILTER (WHERE d.status = 'rejected')
		FROM documents d
		JOIN subjects s ON s.id = d.subject_id
		WHERE s.cycle_id = $1`, cycleID).Scan(&t.Pending, &t.Verified, &t.Rejected)
	if err != nil {
		return StatusTotals{}, db.MapError(err)
	}
	return t, nil
}

func (r *PGRepository) SubjectBreakdown(ctx context.Context, cycleID int64) ([]SubjectCompliance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			s.id, s.code, s.name, s.teacher_id, COALESCE(u.name, ''),
			COUNT(d.id) FILTER (WHERE d.status = 'pending'),
			COUNT(d.id) FILTER (WHERE d.status = 'verified'),
			COUNT(d.id) FILTER (WHERE d.status = 'rejected')
		FROM subjects s
		LEFT JOIN documents d ON d.subject_id = s.id
		LEFT JOIN users u ON u.id = s.teacher_id
		WHERE s.cycle_id = $1
		GROUP BY s.id, s.code, s.name, s.teacher_id, u.name
		ORDER BY s.code ASC`, cycleID)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []SubjectCompliance
	for rows.Next() {
		var sc SubjectCompliance
		if err := rows.Scan(&sc.SubjectID, &sc.SubjectCode, &sc.SubjectName, &sc.TeacherID, &sc.TeacherName, &sc.Totals.Pending, &sc.Totals.Verified, &sc.Totals.Rejected); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *PGRepository) ActiveTeacherCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT ra.user_id)
		FROM role_assignments ra
		JOIN users u ON u.id = ra.user_id AND u.is_active
		WHERE ra.role_name = $1 AND ra.active`, catalog.RoleTeacher).Scan(&count)
	if err != nil {
		return 0, db.MapError(err)
	}
	return count, nil
}

var _ Repository = (*PGRepository)(nil)
