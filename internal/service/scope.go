package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kbrain/internal/model"
	"kbrain/internal/repository"
)

// CreateScopeInput carries the fields for a new scope.
type CreateScopeInput struct {
	Name              string
	Description       string
	AllowedExtensions []string
	StorageBackend    model.StorageBackend
}

// UpdateScopeInput carries the mutable policy fields of a scope.
// Nil pointers leave the current value unchanged.
type UpdateScopeInput struct {
	Description       *string
	AllowedExtensions []string
	IsActive          *bool
}

// ScopeListResult is the service-level DTO for paginated scopes.
type ScopeListResult struct {
	Items []model.Scope `json:"data"`
	Total int           `json:"total"`
}

// ScopeService defines the administrative use cases for scopes.
type ScopeService interface {
	// Create registers a new scope. Names are unique across the service.
	Create(ctx context.Context, in CreateScopeInput) (*model.Scope, error)

	// Get returns a scope by its ID.
	Get(ctx context.Context, id string) (*model.Scope, error)

	// List returns scopes, optionally filtered by active flag.
	List(ctx context.Context, isActive *bool, limit, offset int) (*ScopeListResult, error)

	// Update changes a scope's mutable policy fields.
	Update(ctx context.Context, id string, in UpdateScopeInput) (*model.Scope, error)

	// Statistics aggregates document count, total size and per-status
	// counts for a scope.
	Statistics(ctx context.Context, id string) (*model.ScopeStatistics, error)

	// Delete removes a scope; its documents and tags cascade away. Stored
	// bytes are not touched.
	Delete(ctx context.Context, id string) error
}

type scopeService struct {
	scopes         repository.ScopeRepository
	defaultBackend model.StorageBackend
}

// NewScopeService constructs a new ScopeService. defaultBackend is used when
// a create request does not name one.
func NewScopeService(scopes repository.ScopeRepository, defaultBackend model.StorageBackend) ScopeService {
	return &scopeService{scopes: scopes, defaultBackend: defaultBackend}
}

func (s *scopeService) Create(ctx context.Context, in CreateScopeInput) (*model.Scope, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.ContainsAny(name, "/\\") {
		return nil, &ValidationError{Message: "scope name must not contain path separators"}
	}

	backend := in.StorageBackend
	if backend == "" {
		backend = s.defaultBackend
	}
	switch backend {
	case model.BackendLocal, model.BackendS3, model.BackendAzure, model.BackendMemory:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("unknown storage backend %q", backend)}
	}

	if existing, err := s.scopes.FindByName(ctx, name); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	} else if existing != nil {
		return nil, &ConflictError{
			Message:    fmt.Sprintf("scope %q already exists", name),
			ExistingID: existing.ID,
		}
	}

	now := time.Now().UTC()
	scope := &model.Scope{
		ID:                uuid.New().String(),
		Name:              name,
		Description:       in.Description,
		AllowedExtensions: normalizeExtensions(in.AllowedExtensions),
		StorageBackend:    backend,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return s.scopes.Create(ctx, scope)
}

func (s *scopeService) Get(ctx context.Context, id string) (*model.Scope, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	scope, err := s.scopes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("scope", id)
		}
		return nil, err
	}
	return scope, nil
}

func (s *scopeService) List(ctx context.Context, isActive *bool, limit, offset int) (*ScopeListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.scopes.List(ctx, isActive, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ScopeListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *scopeService) Update(ctx context.Context, id string, in UpdateScopeInput) (*model.Scope, error) {
	scope, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		scope.Description = *in.Description
	}
	if in.AllowedExtensions != nil {
		scope.AllowedExtensions = normalizeExtensions(in.AllowedExtensions)
	}
	if in.IsActive != nil {
		scope.IsActive = *in.IsActive
	}
	scope.UpdatedAt = time.Now().UTC()
	return s.scopes.Update(ctx, scope)
}

func (s *scopeService) Statistics(ctx context.Context, id string) (*model.ScopeStatistics, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.scopes.Statistics(ctx, id)
}

func (s *scopeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.scopes.Delete(ctx, id)
}

// normalizeExtensions lowercases entries, strips leading dots and drops
// empties and duplicates, preserving first-seen order.
func normalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
