package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"kbrain/internal/model"
	"kbrain/internal/repository"
)

// ScopePostgres is a PostgreSQL implementation of repository.ScopeRepository.
type ScopePostgres struct {
	db *sql.DB
}

// NewScopePostgres creates a new ScopePostgres repository.
func NewScopePostgres(db *sql.DB) *ScopePostgres {
	return &ScopePostgres{db: db}
}

var _ repository.ScopeRepository = (*ScopePostgres)(nil)

const scopeColumns = `id, name, description, allowed_extensions, storage_backend, is_active, created_at, updated_at`

func scanScope(row rowScanner) (*model.Scope, error) {
	var (
		s    model.Scope
		desc sql.NullString
		exts []byte
	)
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&desc,
		&exts,
		&s.StorageBackend,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Description = desc.String
	if len(exts) > 0 {
		if err := json.Unmarshal(exts, &s.AllowedExtensions); err != nil {
			return nil, fmt.Errorf("decode allowed extensions: %w", err)
		}
	}
	return &s, nil
}

// Create inserts a new scope row and returns the stored record.
func (r *ScopePostgres) Create(ctx context.Context, scope *model.Scope) (*model.Scope, error) {
	exts, err := json.Marshal(scope.AllowedExtensions)
	if err != nil {
		return nil, fmt.Errorf("encode allowed extensions: %w", err)
	}
	const q = `
		INSERT INTO scopes (id, name, description, allowed_extensions, storage_backend, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + scopeColumns
	row := r.db.QueryRowContext(ctx, q,
		scope.ID,
		scope.Name,
		nullString(scope.Description),
		exts,
		scope.StorageBackend,
		scope.IsActive,
	)
	return scanScope(row)
}

// FindByID fetches a single scope by its ID.
func (r *ScopePostgres) FindByID(ctx context.Context, id string) (*model.Scope, error) {
	const q = `SELECT ` + scopeColumns + ` FROM scopes WHERE id = $1`
	return scanScope(r.db.QueryRowContext(ctx, q, id))
}

// FindByName fetches a single scope by its unique name.
func (r *ScopePostgres) FindByName(ctx context.Context, name string) (*model.Scope, error) {
	const q = `SELECT ` + scopeColumns + ` FROM scopes WHERE name = $1`
	return scanScope(r.db.QueryRowContext(ctx, q, name))
}

// List returns scopes using LIMIT/OFFSET pagination and a total count.
func (r *ScopePostgres) List(ctx context.Context, isActive *bool, pq repository.PageQuery) (*repository.PageResult[model.Scope], error) {
	cond := ""
	args := []any{}
	if isActive != nil {
		cond = " WHERE is_active = $1"
		args = append(args, *isActive)
	}

	qCount := `SELECT COUNT(*) FROM scopes` + cond
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + scopeColumns + ` FROM scopes` + cond +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Scope, 0)
	for rows.Next() {
		s, err := scanScope(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Scope]{Items: items, Total: total}, nil
}

// Update persists the mutable policy fields of a scope.
func (r *ScopePostgres) Update(ctx context.Context, scope *model.Scope) (*model.Scope, error) {
	exts, err := json.Marshal(scope.AllowedExtensions)
	if err != nil {
		return nil, fmt.Errorf("encode allowed extensions: %w", err)
	}
	const q = `
		UPDATE scopes
		SET description = $2, allowed_extensions = $3, storage_backend = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING ` + scopeColumns
	row := r.db.QueryRowContext(ctx, q,
		scope.ID,
		nullString(scope.Description),
		exts,
		scope.StorageBackend,
		scope.IsActive,
	)
	return scanScope(row)
}

// Statistics aggregates document count, total size and status breakdown.
func (r *ScopePostgres) Statistics(ctx context.Context, scopeID string) (*model.ScopeStatistics, error) {
	const qTotals = `SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM documents WHERE scope_id = $1`
	stats := &model.ScopeStatistics{StatusBreakdown: map[string]int{}}
	if err := r.db.QueryRowContext(ctx, qTotals, scopeID).Scan(&stats.DocumentCount, &stats.TotalSize); err != nil {
		return nil, err
	}

	const qBreakdown = `SELECT status, COUNT(*) FROM documents WHERE scope_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, qBreakdown, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.StatusBreakdown[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Delete removes a scope by ID. It does not return an error if the row does not exist.
func (r *ScopePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM scopes WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
