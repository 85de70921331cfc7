package repository

import (
	"context"

	"kbrain/internal/model"
)

// ScopeRepository defines data access for scopes.
type ScopeRepository interface {
	// Create inserts a new scope row and returns the stored record.
	Create(ctx context.Context, scope *model.Scope) (*model.Scope, error)

	// FindByID returns a scope by its ID.
	FindByID(ctx context.Context, id string) (*model.Scope, error)

	// FindByName returns a scope by its unique name.
	FindByName(ctx context.Context, name string) (*model.Scope, error)

	// List returns scopes, optionally filtered by active flag (nil means all).
	List(ctx context.Context, isActive *bool, pq PageQuery) (*PageResult[model.Scope], error)

	// Update persists the mutable policy fields of scope.
	Update(ctx context.Context, scope *model.Scope) (*model.Scope, error)

	// Statistics aggregates document count, total size and status
	// breakdown for a scope.
	Statistics(ctx context.Context, scopeID string) (*model.ScopeStatistics, error)

	// Delete removes a scope by ID; documents and tags cascade.
	Delete(ctx context.Context, id string) error
}
