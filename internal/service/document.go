package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"kbrain/internal/checksum"
	"kbrain/internal/model"
	"kbrain/internal/repository"
	"kbrain/internal/storage"
)

// UploadInput carries one uploaded file plus its optional tag references.
type UploadInput struct {
	Filename string
	Content  []byte
	MimeType string
	TagIDs   []string
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload runs the full intake pipeline for scopeID: extension check,
	// size check, checksums, duplicate check, key generation, tag
	// resolution, storage write, metadata commit. The returned document
	// includes its resolved tags and always starts in status "added".
	Upload(ctx context.Context, scopeID string, in UploadInput) (*model.Document, error)

	// Get returns a single document by its ID, tags included.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns a scope's documents using limit/offset and a total count.
	List(ctx context.Context, scopeID string, f repository.DocumentFilter, limit, offset int) (*DocumentListResult, error)

	// Download returns a document's metadata and its stored bytes.
	Download(ctx context.Context, id string) (*model.Document, []byte, error)

	// UpdateStatus transitions a document's processing status, stamping
	// processing_started / processed_at as appropriate.
	UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, errorMessage string) (*model.Document, error)

	// UpdateMetadata merges patch into the document's metadata map.
	UpdateMetadata(ctx context.Context, id string, patch map[string]any) (*model.Document, error)

	// Delete removes a document record; when deleteStorage is true the
	// backing bytes are removed first.
	Delete(ctx context.Context, id string, deleteStorage bool) error
}

type documentService struct {
	store       storage.FileStorage
	backend     model.StorageBackend
	docs        repository.DocumentRepository
	scopes      repository.ScopeRepository
	tags        repository.TagRepository
	maxFileSize int64
}

// NewDocumentService constructs a new DocumentService. backend names the
// driver store was built with; it is recorded on every document so reads
// after a backend migration stay traceable.
func NewDocumentService(store storage.FileStorage, backend model.StorageBackend, docs repository.DocumentRepository, scopes repository.ScopeRepository, tags repository.TagRepository, maxFileSize int64) DocumentService {
	return &documentService{
		store:       store,
		backend:     backend,
		docs:        docs,
		scopes:      scopes,
		tags:        tags,
		maxFileSize: maxFileSize,
	}
}

func (s *documentService) Upload(ctx context.Context, scopeID string, in UploadInput) (*model.Document, error) {
	if scopeID == "" {
		return nil, ErrIDRequired
	}
	scope, err := s.scopes.FindByID(ctx, scopeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("scope", scopeID)
		}
		return nil, err
	}
	if !scope.IsActive {
		return nil, &ValidationError{Message: fmt.Sprintf("scope %q is not active", scope.Name)}
	}

	ext := fileExtension(in.Filename)
	if !scope.AllowsExtension(ext) {
		return nil, &ValidationError{Message: fmt.Sprintf(
			"extension %q is not allowed in scope %q (allowed: %s)",
			ext, scope.Name, strings.Join(scope.AllowedExtensions, ", "),
		)}
	}

	size := int64(len(in.Content))
	if size > s.maxFileSize {
		return nil, &TooLargeError{Size: size, Max: s.maxFileSize}
	}

	sums := checksum.Compute(in.Content)

	// Fast duplicate pre-check; the unique index on (scope_id,
	// checksum_sha256) remains the authoritative guard under races.
	existing, err := s.docs.FindByScopeAndChecksum(ctx, scope.ID, sums.SHA256)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, &ConflictError{
			Message:    fmt.Sprintf("identical content already stored as document %s", existing.ID),
			ExistingID: existing.ID,
		}
	}

	key := generateKey(scope.Name, ext, time.Now().UTC())

	// Tags are resolved before the storage write so a bad tag reference
	// never leaves an orphaned file behind.
	var resolved []model.Tag
	if len(in.TagIDs) > 0 {
		resolved, err = s.tags.ResolveByIDs(ctx, scope.ID, in.TagIDs)
		if err != nil {
			return nil, err
		}
		if len(resolved) != len(in.TagIDs) {
			return nil, &ValidationError{Message: fmt.Sprintf(
				"unknown tags for scope %q: %s", scope.Name,
				strings.Join(missingTagIDs(in.TagIDs, resolved), ", "),
			)}
		}
	}

	ok, err := s.store.Save(ctx, key, in.Content, true)
	if err != nil {
		return nil, &StorageError{Op: "save", Err: err}
	}
	if !ok {
		return nil, &StorageError{Op: "save", Err: fmt.Errorf("write to %s refused", key)}
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:             uuid.New().String(),
		ScopeID:        scope.ID,
		Filename:       path.Base(key),
		OriginalName:   in.Filename,
		FileSize:       size,
		MimeType:       in.MimeType,
		FileExtension:  ext,
		StoragePath:    key,
		StorageBackend: s.backend,
		ChecksumMD5:    sums.MD5,
		ChecksumSHA256: sums.SHA256,
		Status:         model.StatusAdded,
		UploadDate:     now,
		Metadata:       map[string]any{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	stored, err := s.docs.Create(ctx, doc, in.TagIDs)
	if err != nil {
		// Rollback the written bytes; if that also fails the object is
		// orphaned and left to an external reconciliation sweep.
		if _, delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("metadata commit failed: %v; rollback delete failed: %v", err, delErr)
		}
		// A concurrent upload of the same content can slip past the
		// pre-check; the unique index turns that race into a conflict.
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "identical content already stored in this scope"}
		}
		return nil, fmt.Errorf("metadata commit failed: %w", err)
	}
	if len(stored.Tags) == 0 && len(resolved) > 0 {
		stored.Tags = resolved
	}
	return stored, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("document", id)
		}
		return nil, err
	}
	return doc, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, scopeID string, f repository.DocumentFilter, limit, offset int) (*DocumentListResult, error) {
	if scopeID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown status %q", f.Status)}
	}

	res, err := s.docs.ListByScope(ctx, scopeID, f, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Download(ctx context.Context, id string) (*model.Document, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	content, found, err := s.store.Read(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, &StorageError{Op: "read", Err: err}
	}
	if !found {
		return nil, nil, notFound("stored object", doc.StoragePath)
	}
	return doc, content, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, id string, status model.DocumentStatus, errorMessage string) (*model.Document, error) {
	if !model.ValidStatus(status) {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown status %q", status)}
	}
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc.Status = status
	switch status {
	case model.StatusProcessing:
		doc.ProcessingStarted = &now
		doc.ErrorMessage = ""
	case model.StatusProcessed:
		doc.ProcessedAt = &now
		doc.ErrorMessage = ""
	case model.StatusFailed:
		doc.ProcessedAt = &now
		doc.ErrorMessage = errorMessage
		doc.RetryCount++
	}
	doc.UpdatedAt = now

	return s.docs.Update(ctx, doc)
}

func (s *documentService) UpdateMetadata(ctx context.Context, id string, patch map[string]any) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	for k, v := range patch {
		doc.Metadata[k] = v
	}
	doc.UpdatedAt = time.Now().UTC()
	return s.docs.Update(ctx, doc)
}

// Delete removes the stored bytes (unless deleteStorage is false), then the
// record. A storage failure keeps the record so the reference is not lost.
func (s *documentService) Delete(ctx context.Context, id string, deleteStorage bool) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if deleteStorage {
		if _, err := s.store.Delete(ctx, doc.StoragePath); err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
	}
	return s.docs.Delete(ctx, id)
}

// fileExtension returns the lowercase text after the last dot of name, or
// "" when name has no dot.
func fileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// generateKey builds a scope-namespaced, date-stamped storage key with a
// random 12-hex suffix, e.g. scopes/reports/2026/08/2026-08-31_3f2a91c04bd7.pdf.
func generateKey(scopeName, ext string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	name := fmt.Sprintf("%s_%s", now.Format("2006-01-02"), suffix)
	if ext != "" {
		name += "." + ext
	}
	return fmt.Sprintf("scopes/%s/%d/%02d/%s", scopeName, now.Year(), int(now.Month()), name)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// missingTagIDs returns the ids absent from resolved, preserving order.
func missingTagIDs(ids []string, resolved []model.Tag) []string {
	found := make(map[string]struct{}, len(resolved))
	for _, t := range resolved {
		found[t.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
