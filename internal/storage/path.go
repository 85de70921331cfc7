package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// pathResolver maps caller-supplied relative paths to absolute locations
// strictly inside a root directory. It is the sole defense against
// directory traversal via ".." segments, absolute-path injection, or
// symlinks pointing outside the root, and must run before every
// filesystem read or mutation.
type pathResolver struct {
	// root is canonical: absolute with symlinks resolved, computed once
	// at construction.
	root string
}

// newPathResolver canonicalizes root, which must already exist.
func newPathResolver(root string) (*pathResolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("canonicalize storage root: %w", err)
	}
	return &pathResolver{root: canonical}, nil
}

// Resolve returns the absolute location of rel inside the root, or
// ErrPathTraversal. The empty string resolves to the root itself (for
// root-level listing). No filesystem is touched on the violation path
// beyond symlink inspection of already-existing ancestors.
func (p *pathResolver) Resolve(rel string) (string, error) {
	if rel == "" {
		return p.root, nil
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%q: absolute path not allowed: %w", rel, ErrPathTraversal)
	}

	full := filepath.Join(p.root, filepath.FromSlash(rel))
	if !p.contains(full) {
		return "", fmt.Errorf("%q: %w", rel, ErrPathTraversal)
	}

	// A symlink inside the root may still point outside it, so re-check
	// containment against the canonical form of the deepest existing
	// ancestor.
	canonical, err := canonicalizeExisting(full)
	if err != nil {
		return "", fmt.Errorf("canonicalize %q: %w", rel, err)
	}
	if !p.contains(canonical) {
		return "", fmt.Errorf("%q: %w", rel, ErrPathTraversal)
	}
	return canonical, nil
}

// contains reports whether candidate equals the root or is a descendant of
// it, using a component-wise check rather than a naive string prefix so a
// sibling such as /root2 never passes for root /root.
func (p *pathResolver) contains(candidate string) bool {
	rel, err := filepath.Rel(p.root, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// canonicalizeExisting resolves symlinks over the portion of path that
// exists, rejoining the non-existent remainder untouched.
func canonicalizeExisting(path string) (string, error) {
	remainder := ""
	for {
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil {
			return filepath.Join(resolved, remainder), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", err
		}
		remainder = filepath.Join(filepath.Base(path), remainder)
		path = parent
	}
}
