package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// memoryStorage is a volatile FileStorage keeping everything in a map.
// Useful for tests and local development; all data is lost on restart.
// A single mutex guards the map; it is never held across a call to
// another collaborator.
type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]struct{}
}

// NewMemory creates an empty in-memory FileStorage.
func NewMemory() FileStorage {
	return &memoryStorage{
		files: make(map[string][]byte),
		dirs:  make(map[string]struct{}),
	}
}

// normalize cleans a slash-separated key and rejects root escapes, mirroring
// the filesystem resolver's contract without a real filesystem.
func normalize(p string) (string, error) {
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%q: absolute path not allowed: %w", p, ErrPathTraversal)
	}
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%q: %w", p, ErrPathTraversal)
	}
	if cleaned == "." {
		cleaned = ""
	}
	return cleaned, nil
}

func (m *memoryStorage) Save(ctx context.Context, p string, content []byte, overwrite bool) (bool, error) {
	key, err := normalize(p)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, fmt.Errorf("%q: %w", p, ErrPathTraversal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.files[key]; exists && !overwrite {
		return false, nil
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	m.files[key] = buf
	return true, nil
}

func (m *memoryStorage) Read(ctx context.Context, p string) ([]byte, bool, error) {
	key, err := normalize(p)
	if err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[key]
	if !ok {
		return nil, false, nil
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	return buf, true, nil
}

func (m *memoryStorage) Exists(ctx context.Context, p string) (bool, error) {
	key, err := normalize(p)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == "" {
		return true, nil
	}
	if _, ok := m.files[key]; ok {
		return true, nil
	}
	if _, ok := m.dirs[key]; ok {
		return true, nil
	}
	// Implicit directories exist once they hold a file.
	prefix := key + "/"
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStorage) List(ctx context.Context, p string, recursive bool) ([]string, error) {
	key, err := normalize(p)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if key != "" {
		prefix = key + "/"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	files := make([]string, 0)
	for k := range m.files {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if !recursive && strings.Contains(k[len(prefix):], "/") {
			continue
		}
		files = append(files, k)
	}
	sort.Strings(files)
	return files, nil
}

func (m *memoryStorage) Delete(ctx context.Context, p string) (bool, error) {
	key, err := normalize(p)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return false, nil
	}
	delete(m.files, key)
	return true, nil
}

func (m *memoryStorage) Size(ctx context.Context, p string) (int64, bool, error) {
	key, err := normalize(p)
	if err != nil {
		return 0, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[key]
	if !ok {
		return 0, false, nil
	}
	return int64(len(content)), true, nil
}

func (m *memoryStorage) CreateDirectory(ctx context.Context, p string) (bool, error) {
	key, err := normalize(p)
	if err != nil {
		return false, err
	}
	if key == "" {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[key] = struct{}{}
	return true, nil
}

func (m *memoryStorage) Copy(ctx context.Context, src, dst string) (bool, error) {
	content, found, err := m.Read(ctx, src)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return m.Save(ctx, dst, content, true)
}

func (m *memoryStorage) Move(ctx context.Context, src, dst string) (bool, error) {
	ok, err := m.Copy(ctx, src, dst)
	if err != nil || !ok {
		return false, err
	}
	return m.Delete(ctx, src)
}
