package model

// Package model contains domain models/data structures.
// These are pure structs shared across layers (HTTP, service, storage)
// with no database-specific dependencies or tags.

// StorageBackend identifies which storage driver holds a document's bytes.
type StorageBackend string

const (
	BackendLocal  StorageBackend = "local"
	BackendS3     StorageBackend = "s3"
	BackendAzure  StorageBackend = "azure"
	BackendMemory StorageBackend = "memory"
)

// DocumentStatus tracks a document through its processing lifecycle.
type DocumentStatus string

const (
	StatusAdded      DocumentStatus = "added"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// ValidStatus reports whether s is one of the known document statuses.
func ValidStatus(s DocumentStatus) bool {
	switch s {
	case StatusAdded, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	}
	return false
}
