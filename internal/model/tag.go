package model

import "time"

// Tag is a scope-local label attachable to documents, many-to-many.
// Name is unique within its scope.
type Tag struct {
	ID          string         `json:"id"`
	ScopeID     string         `json:"scope_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Color       string         `json:"color,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
