package storage

import (
	"context"
	"errors"
)

// Package storage contains the file storage abstraction and its backends
// (local filesystem, in-memory, S3-compatible). All paths are relative to a
// backend-internal root; passing an absolute path or one that resolves
// outside the root is a caller error and fails closed.
//
// "Not found" is a normal control-flow value, not an error: Read and Size
// report absence through a found flag, Delete through its deleted flag.
// The error channel is reserved for genuine storage faults (permission
// denial, disk or network failure), which are never downgraded to absence.

// ErrPathTraversal is returned when a path is absolute or would resolve
// outside the storage root.
var ErrPathTraversal = errors.New("path escapes storage root")

// FileStorage is the contract every storage backend must satisfy.
// Implementations must be safe for concurrent use by independent operations.
type FileStorage interface {
	// Save writes content at path, creating intermediate directories as
	// needed. If overwrite is false and an object already exists at path,
	// it returns (false, nil) without writing. The existence check is
	// best-effort, not linearizable: two racing writers without a shared
	// lock can both observe "not present" (see the local backend for the
	// single-filesystem exception).
	Save(ctx context.Context, path string, content []byte, overwrite bool) (bool, error)

	// Read returns the full content at path, or found=false if no object
	// exists there.
	Read(ctx context.Context, path string) (content []byte, found bool, err error)

	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the files under path, root-relative and
	// lexicographically sorted. Directory entries are not returned. When
	// recursive is false only immediate children are listed.
	List(ctx context.Context, path string, recursive bool) ([]string, error)

	// Delete removes the file at path, returning deleted=false if nothing
	// existed there.
	Delete(ctx context.Context, path string) (deleted bool, err error)

	// Size returns the file size in bytes, or found=false if no file
	// exists at path.
	Size(ctx context.Context, path string) (size int64, found bool, err error)

	// CreateDirectory creates a directory at path. Backends without real
	// directories implement this as a no-op returning true.
	CreateDirectory(ctx context.Context, path string) (bool, error)

	// Copy duplicates src to dst, overwriting dst.
	Copy(ctx context.Context, src, dst string) (bool, error)

	// Move copies src to dst then deletes src. Not transactional: a crash
	// between the two steps leaves both copies present.
	Move(ctx context.Context, src, dst string) (bool, error)
}
