package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// localStorage persists bytes under a root directory on local disk. Every
// operation resolves its path through pathResolver before touching the
// filesystem.
type localStorage struct {
	root     string
	resolver *pathResolver
}

// NewLocal creates a filesystem-backed FileStorage rooted at root,
// creating the directory if it does not exist.
func NewLocal(root string) (FileStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	resolver, err := newPathResolver(root)
	if err != nil {
		return nil, err
	}
	return &localStorage{root: resolver.root, resolver: resolver}, nil
}

func (l *localStorage) Save(ctx context.Context, path string, content []byte, overwrite bool) (bool, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return false, fmt.Errorf("create parent directories: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		// O_EXCL makes the exists check and the create a single syscall,
		// so concurrent overwrite=false writers on the same filesystem
		// cannot both win.
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(full, flags, 0o644)
	if err != nil {
		if !overwrite && errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", path, err)
	}
	return true, nil
}

func (l *localStorage) Read(ctx context.Context, path string) ([]byte, bool, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, false, nil
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return content, true, nil
}

func (l *localStorage) Exists(ctx context.Context, path string) (bool, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

// List returns root-relative, slash-separated file paths in sorted order.
// Directories themselves are not listed. A missing or non-directory path
// yields an empty result.
func (l *localStorage) List(ctx context.Context, path string, recursive bool) ([]string, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	files := make([]string, 0)
	if recursive {
		err = filepath.WalkDir(full, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.Type().IsRegular() {
				rel, relErr := filepath.Rel(l.root, p)
				if relErr != nil {
					return relErr
				}
				files = append(files, filepath.ToSlash(rel))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	} else {
		entries, err := os.ReadDir(full)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			rel, relErr := filepath.Rel(l.root, filepath.Join(full, e.Name()))
			if relErr != nil {
				return nil, relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
	}

	sort.Strings(files)
	return files, nil
}

func (l *localStorage) Delete(ctx context.Context, path string) (bool, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, nil
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}

func (l *localStorage) Size(ctx context.Context, path string) (int64, bool, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return 0, false, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, false, nil
	}
	return info.Size(), true, nil
}

func (l *localStorage) CreateDirectory(ctx context.Context, path string) (bool, error) {
	full, err := l.resolver.Resolve(path)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return false, fmt.Errorf("mkdir %s: %w", path, err)
	}
	return true, nil
}

func (l *localStorage) Copy(ctx context.Context, src, dst string) (bool, error) {
	content, found, err := l.Read(ctx, src)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return l.Save(ctx, dst, content, true)
}

func (l *localStorage) Move(ctx context.Context, src, dst string) (bool, error) {
	ok, err := l.Copy(ctx, src, dst)
	if err != nil || !ok {
		return false, err
	}
	return l.Delete(ctx, src)
}
