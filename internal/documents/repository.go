package documents

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

// ListFilters narrows document listings.
type ListFilters struct {
	OwnerID   int64
	SubjectID int64
	Status    string
}

// Repository defines data access for documents.
type Repository interface {
	Get(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context, filters ListFilters) ([]Document, error)
	Create(ctx context.Context, d Document) (Document, error)
	SetVerdict(ctx context.Context, id int64, verifierID int64, status, observation string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const documentColumns = `id, owner_id, subject_id, title, file_key, file_name, status, observation, verified_by, verified_at, created_at, updated_at`

func (r *PGRepository) Get(ctx context.Context, id int64) (Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, shared.ErrNotFound
		}
		return Document{}, db.MapError(err)
	}
	return d, nil
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Document, error) {
	clauses := []string{"TRUE"}
	args := []any{}
	if filters.OwnerID > 0 {
		args = append(args, filters.OwnerID)
		clauses = append(clauses, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if filters.SubjectID > 0 {
		args = append(args, filters.SubjectID)
		clauses = append(clauses, "subject_id = $"+strconv.Itoa(len(args)))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func (r *PGRepository) Create(ctx context.Context, d Document) (Document, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (owner_id, subject_id, title, file_key, file_name, status, observation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, '', NOW(), NOW())
		RETURNING `+documentColumns, d.OwnerID, d.SubjectID, d.Title, d.FileKey, d.FileName, d.Status)
	created, err := scanDocument(row)
	if err != nil {
		return Document{}, db.MapError(err)
	}
	return created, nil
}

// SetVerdict settles a pending document. The status predicate in the WHERE
// clause makes concurrent verdicts race-safe: only one update can win.
func (r *PGRepository) SetVerdict(ctx context.Context, id int64, verifierID int64, status, observation string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, observation = $3, verified_by = $4, verified_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		id, status, observation, verifierID, StatusPending)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.Validation("document is not pending review")
	}
	return nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.OwnerID, &d.SubjectID, &d.Title, &d.FileKey, &d.FileName, &d.Status, &d.Observation, &d.VerifiedBy, &d.VerifiedAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

var _ Repository = (*PGRepository)(nil)
