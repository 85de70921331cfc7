package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"kbrain/internal/model"
	"kbrain/internal/repository"
)

// TagPostgres is a PostgreSQL implementation of repository.TagRepository.
type TagPostgres struct {
	db *sql.DB
}

// NewTagPostgres creates a new TagPostgres repository.
func NewTagPostgres(db *sql.DB) *TagPostgres {
	return &TagPostgres{db: db}
}

var _ repository.TagRepository = (*TagPostgres)(nil)

const tagColumns = `id, scope_id, name, description, color, meta, created_at, updated_at`

func scanTag(row rowScanner) (*model.Tag, error) {
	var (
		t     model.Tag
		desc  sql.NullString
		color sql.NullString
		meta  []byte
	)
	if err := row.Scan(
		&t.ID,
		&t.ScopeID,
		&t.Name,
		&desc,
		&color,
		&meta,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Description = desc.String
	t.Color = color.String
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &t.Meta); err != nil {
			return nil, fmt.Errorf("decode tag meta: %w", err)
		}
	}
	return &t, nil
}

func scanTags(rows *sql.Rows) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// Create inserts a new tag row and returns the stored record.
func (r *TagPostgres) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	meta, err := marshalMeta(tag.Meta)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO tags (id, scope_id, name, description, color, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + tagColumns
	row := r.db.QueryRowContext(ctx, q,
		tag.ID,
		tag.ScopeID,
		tag.Name,
		nullString(tag.Description),
		nullString(tag.Color),
		meta,
	)
	return scanTag(row)
}

// FindByID fetches a tag by ID within a scope.
func (r *TagPostgres) FindByID(ctx context.Context, scopeID, id string) (*model.Tag, error) {
	const q = `SELECT ` + tagColumns + ` FROM tags WHERE id = $1 AND scope_id = $2`
	return scanTag(r.db.QueryRowContext(ctx, q, id, scopeID))
}

// FindByName fetches a tag by its scope-unique name.
func (r *TagPostgres) FindByName(ctx context.Context, scopeID, name string) (*model.Tag, error) {
	const q = `SELECT ` + tagColumns + ` FROM tags WHERE scope_id = $1 AND name = $2`
	return scanTag(r.db.QueryRowContext(ctx, q, scopeID, name))
}

// ListByScope returns all of a scope's tags ordered by name.
func (r *TagPostgres) ListByScope(ctx context.Context, scopeID string) ([]model.Tag, error) {
	const q = `SELECT ` + tagColumns + ` FROM tags WHERE scope_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// ResolveByIDs returns the tags among ids that exist and belong to scopeID.
func (r *TagPostgres) ResolveByIDs(ctx context.Context, scopeID string, ids []string) ([]model.Tag, error) {
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, scopeID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	q := `SELECT ` + tagColumns + ` FROM tags WHERE scope_id = $1 AND id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// Update persists the mutable fields of a tag.
func (r *TagPostgres) Update(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	meta, err := marshalMeta(tag.Meta)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE tags
		SET name = $3, description = $4, color = $5, meta = $6, updated_at = now()
		WHERE id = $1 AND scope_id = $2
		RETURNING ` + tagColumns
	row := r.db.QueryRowContext(ctx, q,
		tag.ID,
		tag.ScopeID,
		tag.Name,
		nullString(tag.Description),
		nullString(tag.Color),
		meta,
	)
	return scanTag(row)
}

// Delete removes a tag by ID. It does not return an error if the row does not exist.
func (r *TagPostgres) Delete(ctx context.Context, scopeID, id string) error {
	const q = `DELETE FROM tags WHERE id = $1 AND scope_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, scopeID)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
