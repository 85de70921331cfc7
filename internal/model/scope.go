package model

import "time"

// Scope is a named collection of documents governed by its own extension
// allow-list and storage backend choice. Identity is immutable; policy
// fields (extensions, active flag) are mutable.
type Scope struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	AllowedExtensions []string       `json:"allowed_extensions"`
	StorageBackend    StorageBackend `json:"storage_backend"`
	IsActive          bool           `json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// AllowsExtension reports whether ext (lowercase, no leading dot) is a
// member of the scope's allow-list.
func (s *Scope) AllowsExtension(ext string) bool {
	for _, e := range s.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ScopeStatistics aggregates document counts and sizes for a scope.
type ScopeStatistics struct {
	DocumentCount   int            `json:"document_count"`
	TotalSize       int64          `json:"total_size"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
}
