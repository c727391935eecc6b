package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/db"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// uqActiveConstraint is the partial unique index on (user_id, role_name)
// WHERE active. It closes the check-then-insert race: two concurrent assigns
// for the same pair cannot both commit an active row.
const uqActiveConstraint = "uq_role_assignments_active"

// Repository provides PostgreSQL backed persistence for role assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assignmentColumns = `id, user_id, role_name, active, assigned_at, revoked_at, assigned_by, notes`

// Insert creates a new active assignment row. A unique violation on the
// partial index surfaces as ErrDuplicateRole.
func (r *Repository) Insert(ctx context.Context, userID int64, roleName string, assignedBy int64, notes string) (RoleAssignment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO role_assignments (user_id, role_name, active, assigned_at, assigned_by, notes)
		VALUES ($1, $2, TRUE, NOW(), $3, $4)
		RETURNING `+assignmentColumns, userID, roleName, assignedBy, notes)
	assignment, err := scanAssignment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == uqActiveConstraint {
			return RoleAssignment{}, shared.ErrDuplicateRole
		}
		return RoleAssignment{}, db.MapError(err)
	}
	return assignment, nil
}

// Revoke deactivates the active row for the pair, appending the reason to
// the notes column. Returns ErrRoleNotActive when nothing was active.
func (r *Repository) Revoke(ctx context.Context, userID int64, roleName string, revokedBy int64, reason string) error {
	note := fmt.Sprintf("revoked by %d", revokedBy)
	if reason != "" {
		note = fmt.Sprintf("%s: %s", note, reason)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE role_assignments
		SET active = FALSE,
		    revoked_at = NOW(),
		    notes = CASE WHEN notes = '' THEN $3 ELSE notes || E'\n' || $3 END
		WHERE user_id = $1 AND role_name = $2 AND active`,
		userID, roleName, note)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrRoleNotActive
	}
	return nil
}

// ActiveRolesFor returns active assignments oldest first. The ordering feeds
// the principal-role tiebreak, so it is part of the contract.
func (r *Repository) ActiveRolesFor(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM role_assignments
		WHERE user_id = $1 AND active
		ORDER BY assigned_at ASC, id ASC`, userID)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// HistoryFor returns the full assignment history, newest first, capped at limit.
func (r *Repository) HistoryFor(ctx context.Context, userID int64, limit int) ([]RoleAssignment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+` FROM role_assignments
		WHERE user_id = $1
		ORDER BY assigned_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// UsersWithRole lists users holding the role. Optional filters are built as
// parameterized clauses; filter values never enter the query text.
func (r *Repository) UsersWithRole(ctx context.Context, roleName string, activeOnly bool) ([]RoleMember, error) {
	clauses := []string{"ra.role_name = $1"}
	args := []any{roleName}
	if activeOnly {
		clauses = append(clauses, "ra.active")
	}
	query := `
		SELECT u.id, u.email, u.name, u.is_active, ` + prefixColumns("ra", assignmentColumns) + `
		FROM role_assignments ra
		JOIN users u ON u.id = ra.user_id
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY ra.assigned_at DESC, ra.id DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var members []RoleMember
	for rows.Next() {
		var m RoleMember
		var revokedAt *time.Time
		if err := rows.Scan(
			&m.UserID, &m.Email, &m.Name, &m.IsActive,
			&m.Assignment.ID, &m.Assignment.UserID, &m.Assignment.RoleName, &m.Assignment.Active,
			&m.Assignment.AssignedAt, &revokedAt, &m.Assignment.AssignedBy, &m.Assignment.Notes,
		); err != nil {
			return nil, err
		}
		m.Assignment.RevokedAt = revokedAt
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return members, nil
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + "." + p
	}
	return strings.Join(parts, ", ")
}

func scanAssignment(row pgx.Row) (RoleAssignment, error) {
	var a RoleAssignment
	err := row.Scan(&a.ID, &a.UserID, &a.RoleName, &a.Active, &a.AssignedAt, &a.RevokedAt, &a.AssignedBy, &a.Notes)
	return a, err
}

func collectAssignments(rows pgx.Rows) ([]RoleAssignment, error) {
	var out []RoleAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}
