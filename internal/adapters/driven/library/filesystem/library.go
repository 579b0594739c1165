package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.VideoLibrary = (*Library)(nil)

// Library implements driven.VideoLibrary over a directory tree.
type Library struct {
	extensions map[string]struct{}
}

// NewLibrary creates a library that discovers files with the given extensions.
// Extensions are matched case-insensitively; a missing leading dot is added.
func NewLibrary(extensions []string) *Library {
	if len(extensions) == 0 {
		extensions = domain.DefaultVideoExtensions()
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Library{extensions: set}
}

// Discover walks root and returns every video file, sorted by id.
// Hidden files and directories are skipped.
func (l *Library) Discover(ctx context.Context, root string) ([]domain.Video, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("library %s: %w", root, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("library %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library %s is not a directory: %w", root, domain.ErrInvalidInput)
	}

	var videos []domain.Video
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !l.matches(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		videos = append(videos, domain.Video{ID: filepath.ToSlash(rel), Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover videos: %w", err)
	}

	slices.SortFunc(videos, func(a, b domain.Video) int {
		return strings.Compare(a.ID, b.ID)
	})
	return videos, nil
}

// Resolve maps id back to a file under root.
func (l *Library) Resolve(root, id string) (string, error) {
	rel := filepath.FromSlash(id)
	if id == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("video id %q: %w", id, domain.ErrInvalidInput)
	}
	path := filepath.Join(root, rel)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("video %q: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("video %q: %w", id, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("video %q: %w", id, domain.ErrNotFound)
	}
	return path, nil
}

// IsVideo reports whether name has one of the library's extensions.
func (l *Library) IsVideo(name string) bool {
	return !isHidden(filepath.Base(name)) && l.matches(name)
}

func (l *Library) matches(name string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
