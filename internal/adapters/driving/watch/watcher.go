// Package watch triggers incremental indexing when videos appear in the library.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driving"
	"github.com/custodia-labs/sceneseek/internal/logger"
)

// DefaultDebounce is the quiet period after the last change before indexing.
const DefaultDebounce = 5 * time.Second

// Config configures a Watcher.
type Config struct {
	// Root is the library directory, watched recursively.
	Root string

	// Debounce is the quiet period before a run starts. Zero uses DefaultDebounce.
	Debounce time.Duration

	// IsVideo reports whether a changed file should trigger indexing.
	// Nil treats every non-hidden file as a video.
	IsVideo func(path string) bool

	// IndexOnStart runs one catch-up pass before watching.
	IndexOnStart bool

	// OnReport receives the outcome of every run. Optional.
	OnReport func(report *domain.IndexReport, err error)
}

// Watcher runs the indexer after library changes settle.
type Watcher struct {
	config  Config
	indexer driving.Indexer
}

// New creates a watcher.
func New(config Config, indexer driving.Indexer) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.IsVideo == nil {
		config.IsVideo = func(string) bool { return true }
	}
	return &Watcher{config: config, indexer: indexer}
}

// Run watches the library until ctx is cancelled.
//
//nolint:gocyclo // Event loop with debounce and run bookkeeping
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := addTree(fw, w.config.Root); err != nil {
		return fmt.Errorf("watching %s: %w", w.config.Root, err)
	}
	logger.Info("Watching %s", w.config.Root)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		done    = make(chan error, 1)
		running bool
		pending bool
	)
	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.config.Debounce)
		} else {
			timer.Stop()
			timer.Reset(w.config.Debounce)
		}
		timerC = timer.C
	}
	start := func() {
		running = true
		go func() { done <- w.index(ctx) }()
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	if w.config.IndexOnStart {
		start()
	}

	for {
		select {
		case <-ctx.Done():
			if running {
				<-done
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fw, event) {
				arm()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timerC:
			timerC = nil
			if running {
				pending = true
				continue
			}
			start()

		case err := <-done:
			running = false
			if errors.Is(err, domain.ErrIndexingInProgress) {
				pending = true
			}
			if pending {
				pending = false
				arm()
			}
		}
	}
}

func (w *Watcher) index(ctx context.Context) error {
	report, err := w.indexer.Index(ctx, w.config.Root)
	if w.config.OnReport != nil && !errors.Is(err, domain.ErrIndexingInProgress) {
		w.config.OnReport(report, err)
	}
	if err != nil && !errors.Is(err, domain.ErrIndexingInProgress) && ctx.Err() == nil {
		logger.Warn("indexing after change failed: %v", err)
	}
	return err
}

// handleEvent reports whether event should schedule a run.
// New directories are added to the watch set.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if !event.Has(fsnotify.Create) {
			return false
		}
		if fw != nil {
			if err := addTree(fw, event.Name); err != nil {
				logger.Warn("watching %s: %v", event.Name, err)
			}
		}
		return true
	}

	if !w.config.IsVideo(event.Name) {
		return false
	}
	logger.Debug("library change: %s %s", event.Op, event.Name)
	return true
}

// addTree watches root and every non-hidden directory below it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
