package subjects

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// ListFilters narrows subject listings. Filters compose as parameterized
// clauses; values never enter the query text.
type ListFilters struct {
	CycleID   int64
	TeacherID int64
}

// Repository defines data access for subjects.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Subject, error)
	Get(ctx context.Context, id int64) (Subject, error)
	Create(ctx context.Context, s Subject) (Subject, error)
	Update(ctx context.Context, id int64, s Subject) error
	AssignTeacher(ctx context.Context, id int64, teacherID *int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const subjectColumns = `id, cycle_id, code, name, credits, teacher_id, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Subject, error) {
	clauses := []string{"TRUE"}
	args := []any{}
	if filters.CycleID > 0 {
		args = append(args, filters.CycleID)
		clauses = append(clauses, "cycle_id = $"+strconv.Itoa(len(args)))
	}
	if filters.TeacherID > 0 {
		args = append(args, filters.TeacherID)
		clauses = append(clauses, "teacher_id = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY code`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Subject, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	s, err := scanSubject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subject{}, shared.ErrNotFound
		}
		return Subject{}, db.MapError(err)
	}
	return s, nil
}

func (r *PGRepository) Create(ctx context.Context, s Subject) (Subject, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subjects (cycle_id, code, name, credits, teacher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+subjectColumns, s.CycleID, s.Code, s.Name, s.Credits, s.TeacherID)
	created, err := scanSubject(row)
	if err != nil {
		return Subject{}, db.MapError(err)
	}
	return created, nil
}

func (r *PGRepository) Update(ctx context.Context, id int64, s Subject) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subjects SET cycle_id = $2, code = $3, name = $4, credits = $5, updated_at = NOW()
		WHERE id = $1`, id, s.CycleID, s.Code, s.Name, s.Credits)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) AssignTeacher(ctx context.Context, id int64, teacherID *int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE subjects SET teacher_id = $2, updated_at = NOW() WHERE id = $1`, id, teacherID)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanSubject(row pgx.Row) (Subject, error) {
	var s Subject
	err := row.Scan(&s.ID, &s.CycleID, &s.Code, &s.Name, &s.Credits, &s.TeacherID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

var _ Repository = (*PGRepository)(nil)
