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

// CreateTagInput carries the fields for a new tag.
type CreateTagInput struct {
	Name        string
	Description string
	Color       string
	Meta        map[string]any
}

// UpdateTagInput carries the mutable fields of a tag. Nil pointers leave
// the current value unchanged.
type UpdateTagInput struct {
	Description *string
	Color       *string
	Meta        map[string]any
}

// TagService defines the use cases for scope-local tags.
type TagService interface {
	// Create registers a new tag in a scope. Names are unique per scope.
	Create(ctx context.Context, scopeID string, in CreateTagInput) (*model.Tag, error)

	// Get returns a tag by ID within a scope.
	Get(ctx context.Context, scopeID, id string) (*model.Tag, error)

	// List returns all of a scope's tags.
	List(ctx context.Context, scopeID string) ([]model.Tag, error)

	// Update changes a tag's mutable fields.
	Update(ctx context.Context, scopeID, id string, in UpdateTagInput) (*model.Tag, error)

	// Delete removes a tag; its document associations cascade away.
	Delete(ctx context.Context, scopeID, id string) error
}

type tagService struct {
	tags   repository.TagRepository
	scopes repository.ScopeRepository
}

// NewTagService constructs a new TagService.
func NewTagService(tags repository.TagRepository, scopes repository.ScopeRepository) TagService {
	return &tagService{tags: tags, scopes: scopes}
}

func (s *tagService) Create(ctx context.Context, scopeID string, in CreateTagInput) (*model.Tag, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.requireScope(ctx, scopeID); err != nil {
		return nil, err
	}

	if existing, err := s.tags.FindByName(ctx, scopeID, name); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	} else if existing != nil {
		return nil, &ConflictError{
			Message:    fmt.Sprintf("tag %q already exists in this scope", name),
			ExistingID: existing.ID,
		}
	}

	now := time.Now().UTC()
	tag := &model.Tag{
		ID:          uuid.New().String(),
		ScopeID:     scopeID,
		Name:        name,
		Description: in.Description,
		Color:       in.Color,
		Meta:        in.Meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.tags.Create(ctx, tag)
}

func (s *tagService) Get(ctx context.Context, scopeID, id string) (*model.Tag, error) {
	if scopeID == "" || id == "" {
		return nil, ErrIDRequired
	}
	tag, err := s.tags.FindByID(ctx, scopeID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("tag", id)
		}
		return nil, err
	}
	return tag, nil
}

func (s *tagService) List(ctx context.Context, scopeID string) ([]model.Tag, error) {
	if err := s.requireScope(ctx, scopeID); err != nil {
		return nil, err
	}
	return s.tags.ListByScope(ctx, scopeID)
}

func (s *tagService) Update(ctx context.Context, scopeID, id string, in UpdateTagInput) (*model.Tag, error) {
	tag, err := s.Get(ctx, scopeID, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		tag.Description = *in.Description
	}
	if in.Color != nil {
		tag.Color = *in.Color
	}
	if in.Meta != nil {
		tag.Meta = in.Meta
	}
	tag.UpdatedAt = time.Now().UTC()
	return s.tags.Update(ctx, tag)
}

func (s *tagService) Delete(ctx context.Context, scopeID, id string) error {
	if _, err := s.Get(ctx, scopeID, id); err != nil {
		return err
	}
	return s.tags.Delete(ctx, scopeID, id)
}

func (s *tagService) requireScope(ctx context.Context, scopeID string) error {
	if scopeID == "" {
		return ErrIDRequired
	}
	if _, err := s.scopes.FindByID(ctx, scopeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("scope", scopeID)
		}
		return err
	}
	return nil
}
