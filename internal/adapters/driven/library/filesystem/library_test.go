package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func ids(videos []domain.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func TestLibrary_Discover(t *testing.T) {
	t.Run("finds videos sorted by id", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "b.mp4")
		writeFile(t, root, "a/clip.MKV")
		writeFile(t, root, "a.mov")
		writeFile(t, root, "notes.txt")

		videos, err := NewLibrary(nil).Discover(context.Background(), root)

		require.NoError(t, err)
		assert.Equal(t, []string{"a.mov", "a/clip.MKV", "b.mp4"}, ids(videos))
		assert.Equal(t, filepath.Join(root, "a", "clip.MKV"), videos[1].Path)
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, ".cache/x.mp4")
		writeFile(t, root, ".partial.mp4")
		writeFile(t, root, "keep.mp4")

		videos, err := NewLibrary(nil).Discover(context.Background(), root)

		require.NoError(t, err)
		assert.Equal(t, []string{"keep.mp4"}, ids(videos))
	})

	t.Run("honours configured extensions", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.webm")
		writeFile(t, root, "b.mp4")

		videos, err := NewLibrary([]string{"WEBM"}).Discover(context.Background(), root)

		require.NoError(t, err)
		assert.Equal(t, []string{"a.webm"}, ids(videos))
	})

	t.Run("empty library", func(t *testing.T) {
		videos, err := NewLibrary(nil).Discover(context.Background(), t.TempDir())

		require.NoError(t, err)
		assert.Empty(t, videos)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := NewLibrary(nil).Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("root is a file", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.mp4")

		_, err := NewLibrary(nil).Discover(context.Background(), filepath.Join(root, "a.mp4"))

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "a.mp4")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLibrary(nil).Discover(ctx, root)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLibrary_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/clip.mp4")
	lib := NewLibrary(nil)

	path, err := lib.Resolve(root, "a/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "clip.mp4"), path)

	_, err = lib.Resolve(root, "missing.mp4")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = lib.Resolve(root, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = lib.Resolve(root, "../escape.mp4")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = lib.Resolve(root, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLibrary_IsVideo(t *testing.T) {
	lib := NewLibrary(nil)

	assert.True(t, lib.IsVideo("/lib/a.MP4"))
	assert.False(t, lib.IsVideo("/lib/.a.mp4"))
	assert.False(t, lib.IsVideo("/lib/a.txt"))
}
