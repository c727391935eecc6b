package cycles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Repository defines data access for academic cycles.
type Repository interface {
	List(ctx context.Context) ([]Cycle, error)
	Get(ctx context.Context, id int64) (Cycle, error)
	Create(ctx context.Context, c Cycle) (Cycle, error)
	Update(ctx context.Context, id int64, c Cycle) error
	SetOpen(ctx context.Context, id int64, open bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const cycleColumns = `id, code, name, starts_on, ends_on, is_open, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context) ([]Cycle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cycleColumns+` FROM academic_cycles ORDER BY starts_on DESC`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Cycle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cycleColumns+` FROM academic_cycles WHERE id = $1`, id)
	c, err := scanCycle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cycle{}, shared.ErrNotFound
		}
		return Cycle{}, db.MapError(err)
	}
	return c, nil
}

func (r *PGRepository) Create(ctx context.Context, c Cycle) (Cycle, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO academic_cycles (code, name, starts_on, ends_on, is_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+cycleColumns, c.Code, c.Name, c.StartsOn, c.EndsOn, c.IsOpen)
	created, err := scanCycle(row)
	if err != nil {
		return Cycle{}, db.MapError(err)
	}
	return created, nil
}

func (r *PGRepository) Update(ctx context.Context, id int64, c Cycle) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE academic_cycles SET code = $2, name = $3, starts_on = $4, ends_on = $5, updated_at = NOW()
		WHERE id = $1`, id, c.Code, c.Name, c.StartsOn, c.EndsOn)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetOpen(ctx context.Context, id int64, open bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE academic_cycles SET is_open = $2, updated_at = NOW() WHERE id = $1`, id, open)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.StartsOn, &c.EndsOn, &c.IsOpen, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

var _ Repository = (*PGRepository)(nil)
