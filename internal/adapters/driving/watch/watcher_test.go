package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

type fakeIndexer struct {
	mu    sync.Mutex
	errs  []error
	calls chan string
}

func newFakeIndexer(errs ...error) *fakeIndexer {
	return &fakeIndexer{errs: errs, calls: make(chan string, 16)}
}

func (f *fakeIndexer) Index(_ context.Context, libraryPath string) (*domain.IndexReport, error) {
	f.mu.Lock()
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	f.mu.Unlock()
	f.calls <- libraryPath
	if err != nil {
		return nil, err
	}
	return &domain.IndexReport{RunID: "run"}, nil
}

func (f *fakeIndexer) Status() domain.IndexStatus { return domain.IndexStatus{} }

func (f *fakeIndexer) History(context.Context, int) ([]domain.IndexReport, error) { return nil, nil }

func waitCall(t *testing.T, calls <-chan string) string {
	t.Helper()
	select {
	case path := <-calls:
		return path
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for indexing run")
		return ""
	}
}

func isMP4(path string) bool {
	return strings.HasSuffix(path, ".mp4")
}

func startWatcher(t *testing.T, cfg Config, indexer *fakeIndexer) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	w := New(cfg, indexer)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return func() {
		cancelCtx()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Error("watcher did not stop")
		}
	}
}

func TestWatcher_Run(t *testing.T) {
	t.Run("indexes after a video appears", func(t *testing.T) {
		root := t.TempDir()
		indexer := newFakeIndexer()
		stop := startWatcher(t, Config{
			Root:         root,
			Debounce:     50 * time.Millisecond,
			IsVideo:      isMP4,
			IndexOnStart: true,
		}, indexer)
		defer stop()

		assert.Equal(t, root, waitCall(t, indexer.calls))

		for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
			require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("v"), 0o600))
		}

		assert.Equal(t, root, waitCall(t, indexer.calls))
		select {
		case <-indexer.calls:
			t.Fatal("changes inside one debounce window should trigger one run")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("ignores other files", func(t *testing.T) {
		root := t.TempDir()
		indexer := newFakeIndexer()
		stop := startWatcher(t, Config{
			Root:         root,
			Debounce:     20 * time.Millisecond,
			IsVideo:      isMP4,
			IndexOnStart: true,
		}, indexer)
		defer stop()
		waitCall(t, indexer.calls)

		require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.mp4"), []byte("x"), 0o600))

		select {
		case <-indexer.calls:
			t.Fatal("unexpected run")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("retries when a run is already active", func(t *testing.T) {
		root := t.TempDir()
		indexer := newFakeIndexer(domain.ErrIndexingInProgress)
		var mu sync.Mutex
		var reports int
		stop := startWatcher(t, Config{
			Root:         root,
			Debounce:     20 * time.Millisecond,
			IndexOnStart: true,
			OnReport: func(_ *domain.IndexReport, err error) {
				assert.NoError(t, err)
				mu.Lock()
				reports++
				mu.Unlock()
			},
		}, indexer)
		defer stop()

		waitCall(t, indexer.calls)
		waitCall(t, indexer.calls)
		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, reports)
	})

	t.Run("missing root", func(t *testing.T) {
		w := New(Config{Root: filepath.Join(t.TempDir(), "missing")}, newFakeIndexer())
		err := w.Run(context.Background())
		assert.Error(t, err)
	})
}

func TestWatcher_handleEvent(t *testing.T) {
	root := t.TempDir()
	video := filepath.Join(root, "a.mp4")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o600))
	text := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(text, []byte("t"), 0o600))
	dir := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(dir, 0o755))
	hidden := filepath.Join(root, ".a.mp4")
	require.NoError(t, os.WriteFile(hidden, []byte("v"), 0o600))

	w := New(Config{Root: root, IsVideo: isMP4}, newFakeIndexer())

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{name: "video created", path: video, op: fsnotify.Create, want: true},
		{name: "video written", path: video, op: fsnotify.Write, want: true},
		{name: "write with chmod", path: video, op: fsnotify.Write | fsnotify.Chmod, want: true},
		{name: "chmod only", path: video, op: fsnotify.Chmod},
		{name: "non video", path: text, op: fsnotify.Create},
		{name: "hidden video", path: hidden, op: fsnotify.Create},
		{name: "directory created", path: dir, op: fsnotify.Create, want: true},
		{name: "renamed away", path: filepath.Join(root, "gone.mp4"), op: fsnotify.Rename},
		{name: "removed", path: filepath.Join(root, "gone.mp4"), op: fsnotify.Remove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.handleEvent(nil, fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	w := New(Config{Root: "/lib"}, newFakeIndexer())
	assert.Equal(t, DefaultDebounce, w.config.Debounce)
	assert.True(t, w.config.IsVideo("/lib/anything"))
}
