package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, is_active, last_access_at, created_at, updated_at`

// GetByID fetches a user by id. Missing rows map to ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrUserNotFound
		}
		return User{}, db.MapError(err)
	}
	return user, nil
}

// List returns a page of users plus the total count.
func (r *Repository) List(ctx context.Context, page shared.Pagination) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.MapError(err)
	}
	return out, total, nil
}

// UpsertByEmail inserts or reactivates an account during roster imports.
// The boolean reports whether the row was freshly inserted; xmax is zero only
// for rows the INSERT created, not for conflict updates.
func (r *Repository) UpsertByEmail(ctx context.Context, email, name string) (User, bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, is_active = TRUE, updated_at = NOW()
		RETURNING `+userColumns+`, (xmax = 0) AS inserted`, email, name)
	var user User
	var inserted bool
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.IsActive, &user.LastAccessAt, &user.CreatedAt, &user.UpdatedAt, &inserted)
	if err != nil {
		return User{}, false, db.MapError(err)
	}
	return user, inserted, nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.IsActive, &user.LastAccessAt, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}
