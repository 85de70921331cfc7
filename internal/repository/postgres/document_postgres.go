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

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, scope_id, filename, original_name, file_size, mime_type, file_extension,
		storage_path, storage_backend, checksum_md5, checksum_sha256, status, upload_date,
		processing_started, processed_at, error_message, retry_count, metadata, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d        model.Document
		mimeType sql.NullString
		procAt   sql.NullTime
		doneAt   sql.NullTime
		errMsg   sql.NullString
		metadata []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.ScopeID,
		&d.Filename,
		&d.OriginalName,
		&d.FileSize,
		&mimeType,
		&d.FileExtension,
		&d.StoragePath,
		&d.StorageBackend,
		&d.ChecksumMD5,
		&d.ChecksumSHA256,
		&d.Status,
		&d.UploadDate,
		&procAt,
		&doneAt,
		&errMsg,
		&d.RetryCount,
		&metadata,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.MimeType = mimeType.String
	if procAt.Valid {
		t := procAt.Time
		d.ProcessingStarted = &t
	}
	if doneAt.Valid {
		t := doneAt.Time
		d.ProcessedAt = &t
	}
	d.ErrorMessage = errMsg.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode document metadata: %w", err)
		}
	}
	return &d, nil
}

func marshalMeta(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Create inserts the document row and its tag associations in one
// transaction. Tags on the returned record are left for the caller to
// attach from its already-resolved set.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document, tagIDs []string) (*model.Document, error) {
	meta, err := marshalMeta(doc.Metadata)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO documents (id, scope_id, filename, original_name, file_size, mime_type, file_extension,
			storage_path, storage_backend, checksum_md5, checksum_sha256, status, upload_date, retry_count, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + documentColumns
	row := tx.QueryRowContext(ctx, q,
		doc.ID,
		doc.ScopeID,
		doc.Filename,
		doc.OriginalName,
		doc.FileSize,
		nullString(doc.MimeType),
		doc.FileExtension,
		doc.StoragePath,
		doc.StorageBackend,
		doc.ChecksumMD5,
		doc.ChecksumSHA256,
		doc.Status,
		doc.UploadDate,
		doc.RetryCount,
		meta,
	)
	out, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	const qTag = `INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2)`
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, qTag, out.ID, tagID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single document by its ID, tags included.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	tags, err := r.ListTags(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Tags = tags
	return doc, nil
}

// FindByScopeAndChecksum returns the scope's document matching sha256, or sql.ErrNoRows.
func (r *DocumentPostgres) FindByScopeAndChecksum(ctx context.Context, scopeID, sha256 string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE scope_id = $1 AND checksum_sha256 = $2
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, scopeID, sha256))
}

// ListByScope returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListByScope(ctx context.Context, scopeID string, f repository.DocumentFilter, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where := []string{"scope_id = $1"}
	args := []any{scopeID}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Extension != "" {
		args = append(args, f.Extension)
		where = append(where, fmt.Sprintf("file_extension = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("original_name ILIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	qCount := `SELECT COUNT(*) FROM documents WHERE ` + cond
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE ` + cond + `
		ORDER BY upload_date DESC, id DESC
		LIMIT $` + fmt.Sprint(len(args)+1) + ` OFFSET $` + fmt.Sprint(len(args)+2)
	args = append(args, pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update persists the mutable fields and returns the stored row.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) (*model.Document, error) {
	meta, err := marshalMeta(doc.Metadata)
	if err != nil {
		return nil, err
	}
	const q = `
		UPDATE documents
		SET status = $2, processing_started = $3, processed_at = $4, error_message = $5,
			retry_count = $6, metadata = $7, updated_at = now()
		WHERE id = $1
		RETURNING ` + documentColumns
	var procAt, doneAt any
	if doc.ProcessingStarted != nil {
		procAt = *doc.ProcessingStarted
	}
	if doc.ProcessedAt != nil {
		doneAt = *doc.ProcessedAt
	}
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Status,
		procAt,
		doneAt,
		nullString(doc.ErrorMessage),
		doc.RetryCount,
		meta,
	)
	return scanDocument(row)
}

// ListTags returns the tags attached to a document ordered by name.
func (r *DocumentPostgres) ListTags(ctx context.Context, documentID string) ([]model.Tag, error) {
	const q = `
		SELECT t.id, t.scope_id, t.name, t.description, t.color, t.meta, t.created_at, t.updated_at
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		WHERE dt.document_id = $1
		ORDER BY t.name
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
