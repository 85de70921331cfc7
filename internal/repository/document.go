package repository

import (
	"context"

	"kbrain/internal/model"
)

// DocumentFilter narrows ListByScope results. Zero values mean "no filter".
type DocumentFilter struct {
	Status    model.DocumentStatus
	Extension string
	Search    string
}

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document row and its tag associations in a
	// single transaction; this is the upload pipeline's commit boundary.
	// Returns the stored document with tags populated.
	Create(ctx context.Context, doc *model.Document, tagIDs []string) (*model.Document, error)

	// FindByID returns a document by its ID, tags included.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByScopeAndChecksum returns the document in scopeID whose
	// checksum_sha256 matches, or sql.ErrNoRows if none exists. Used as
	// the dedup pre-check before writing bytes.
	FindByScopeAndChecksum(ctx context.Context, scopeID, sha256 string) (*model.Document, error)

	// ListByScope returns a paginated list of a scope's documents and the
	// total rows count for the given filter.
	ListByScope(ctx context.Context, scopeID string, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Update persists the mutable fields of doc (status, timestamps,
	// error_message, retry_count, metadata) and returns the stored row.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// ListTags returns the tags attached to a document.
	ListTags(ctx context.Context, documentID string) ([]model.Tag, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
