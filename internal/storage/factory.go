package storage

import (
	"fmt"

	"kbrain/internal/config"
	"kbrain/internal/model"
)

// New constructs the FileStorage selected by cfg.Backend. The azure value
// is accepted by the scope model but has no driver here.
func New(cfg config.StorageConfig) (FileStorage, error) {
	switch model.StorageBackend(cfg.Backend) {
	case model.BackendLocal:
		return NewLocal(cfg.Root)
	case model.BackendS3:
		return NewS3(cfg.MinIO)
	case model.BackendMemory:
		return NewMemory(), nil
	case model.BackendAzure:
		return nil, fmt.Errorf("azure storage backend is not supported")
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
