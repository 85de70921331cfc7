package repository

import (
	"context"

	"kbrain/internal/model"
)

// TagRepository defines data access for tags.
type TagRepository interface {
	// Create inserts a new tag row and returns the stored record.
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)

	// FindByID returns a tag belonging to scopeID, or sql.ErrNoRows.
	FindByID(ctx context.Context, scopeID, id string) (*model.Tag, error)

	// FindByName returns the tag named name within scopeID, or sql.ErrNoRows.
	FindByName(ctx context.Context, scopeID, name string) (*model.Tag, error)

	// ListByScope returns all of a scope's tags ordered by name.
	ListByScope(ctx context.Context, scopeID string) ([]model.Tag, error)

	// ResolveByIDs returns the tags among ids that exist and belong to
	// scopeID. Callers compare the result length against len(ids) to
	// detect missing or foreign identifiers.
	ResolveByIDs(ctx context.Context, scopeID string, ids []string) ([]model.Tag, error)

	// Update persists the mutable fields of tag.
	Update(ctx context.Context, tag *model.Tag) (*model.Tag, error)

	// Delete removes a tag by ID within a scope. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, scopeID, id string) error
}
