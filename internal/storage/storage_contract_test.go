package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runFileStorageContract exercises the behavior every backend must share.
// Backend-specific tests live next to their implementations.
func runFileStorageContract(t *testing.T, newStore func(t *testing.T) FileStorage) {
	ctx := context.Background()

	t.Run("save then read round-trips content", func(t *testing.T) {
		s := newStore(t)
		content := []byte("hello world")

		ok, err := s.Save(ctx, "docs/a.txt", content, true)
		require.NoError(t, err)
		assert.True(t, ok)

		got, found, err := s.Read(ctx, "docs/a.txt")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, content, got)
	})

	t.Run("read missing file reports absent", func(t *testing.T) {
		s := newStore(t)

		got, found, err := s.Read(ctx, "nope.txt")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("overwrite false preserves first write", func(t *testing.T) {
		s := newStore(t)

		ok, err := s.Save(ctx, "p.txt", []byte("first"), false)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Save(ctx, "p.txt", []byte("second"), false)
		require.NoError(t, err)
		assert.False(t, ok)

		got, found, err := s.Read(ctx, "p.txt")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte("first"), got)
	})

	t.Run("overwrite true replaces content", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Save(ctx, "p.txt", []byte("first"), true)
		require.NoError(t, err)
		ok, err := s.Save(ctx, "p.txt", []byte("second"), true)
		require.NoError(t, err)
		assert.True(t, ok)

		got, _, err := s.Read(ctx, "p.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("save rejects traversal", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Save(ctx, "../escape.txt", []byte("x"), true)
		assert.ErrorIs(t, err, ErrPathTraversal)

		_, err = s.Save(ctx, "/etc/passwd", []byte("x"), true)
		assert.ErrorIs(t, err, ErrPathTraversal)
	})

	t.Run("exists", func(t *testing.T) {
		s := newStore(t)

		found, err := s.Exists(ctx, "e.txt")
		require.NoError(t, err)
		assert.False(t, found)

		_, err = s.Save(ctx, "e.txt", []byte("x"), true)
		require.NoError(t, err)

		found, err = s.Exists(ctx, "e.txt")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("list returns root-relative sorted files only", func(t *testing.T) {
		s := newStore(t)
		for _, p := range []string{"a.txt", "dir/b.txt", "dir/sub/c.txt"} {
			_, err := s.Save(ctx, p, []byte("x"), true)
			require.NoError(t, err)
		}

		flat, err := s.List(ctx, "", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, flat)

		all, err := s.List(ctx, "", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "dir/b.txt", "dir/sub/c.txt"}, all)

		// Paths stay root-relative even when listing a subdirectory.
		sub, err := s.List(ctx, "dir", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"dir/b.txt"}, sub)

		subAll, err := s.List(ctx, "dir", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"dir/b.txt", "dir/sub/c.txt"}, subAll)
	})

	t.Run("list missing directory is empty", func(t *testing.T) {
		s := newStore(t)

		files, err := s.List(ctx, "missing", true)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)

		deleted, err := s.Delete(ctx, "d.txt")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = s.Save(ctx, "d.txt", []byte("x"), true)
		require.NoError(t, err)

		deleted, err = s.Delete(ctx, "d.txt")
		require.NoError(t, err)
		assert.True(t, deleted)

		_, found, err := s.Read(ctx, "d.txt")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("size", func(t *testing.T) {
		s := newStore(t)

		_, found, err := s.Size(ctx, "s.txt")
		require.NoError(t, err)
		assert.False(t, found)

		_, err = s.Save(ctx, "s.txt", []byte("12345"), true)
		require.NoError(t, err)

		size, found, err := s.Size(ctx, "s.txt")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(5), size)
	})

	t.Run("create directory", func(t *testing.T) {
		s := newStore(t)

		ok, err := s.CreateDirectory(ctx, "newdir/nested")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("copy and move", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Save(ctx, "src.txt", []byte("payload"), true)
		require.NoError(t, err)

		ok, err := s.Copy(ctx, "src.txt", "cp.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		got, found, _ := s.Read(ctx, "cp.txt")
		assert.True(t, found)
		assert.Equal(t, []byte("payload"), got)

		ok, err = s.Move(ctx, "src.txt", "mv.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		_, found, _ = s.Read(ctx, "src.txt")
		assert.False(t, found)
		got, found, _ = s.Read(ctx, "mv.txt")
		assert.True(t, found)
		assert.Equal(t, []byte("payload"), got)

		// Copying a missing source is a no-op, not a fault.
		ok, err = s.Copy(ctx, "missing.txt", "x.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
