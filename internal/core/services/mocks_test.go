package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"sync"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/catalog/jsonfile"
	"github.com/custodia-labs/sceneseek/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// --- Test images ---
//
// Frames are solid colour images. The red channel carries an identifier so
// mocks can tell frames apart after they pass through the pipeline.

func solidFrame(id uint8, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: id, G: 0, B: 0, A: 255})
		}
	}
	return img
}

func frameID(img image.Image) uint8 {
	b := img.Bounds()
	r, _, _, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	return uint8(r >> 8)
}

// --- Mock implementations ---

// mockRepository implements driven.IndexRepository in memory, using the
// real index and catalog types so clone semantics match production.
type mockRepository struct {
	mu      sync.Mutex
	index   *flat.Index
	catalog *jsonfile.Catalog
	loadErr error
	saveErr error
	saves   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{}
}

func (m *mockRepository) Load(_ context.Context) (driven.VectorIndex, driven.SceneCatalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, nil, m.loadErr
	}
	if m.index == nil && m.catalog == nil {
		return nil, nil, domain.ErrNotFound
	}
	var idx driven.VectorIndex = flat.New(0)
	var cat driven.SceneCatalog = jsonfile.New()
	if m.index != nil {
		idx = m.index.Clone()
	}
	if m.catalog != nil {
		cat = m.catalog.Clone()
	}
	return idx, cat, nil
}

func (m *mockRepository) Empty() (driven.VectorIndex, driven.SceneCatalog) {
	return flat.New(0), jsonfile.New()
}

func (m *mockRepository) Save(_ context.Context, idx driven.VectorIndex, cat driven.SceneCatalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.index = idx.Clone().(*flat.Index)
	m.catalog = cat.Clone().(*jsonfile.Catalog)
	return nil
}

func (m *mockRepository) IndexPath() string   { return "" }
func (m *mockRepository) CatalogPath() string { return "" }

func (m *mockRepository) persisted() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, cat := 0, 0
	if m.index != nil {
		idx = m.index.Count()
	}
	if m.catalog != nil {
		cat = m.catalog.Len()
	}
	return idx, cat
}

// mockLibrary implements driven.VideoLibrary over a fixed list of ids.
// Paths are the ids themselves.
type mockLibrary struct {
	mu     sync.Mutex
	ids    []string
	err    error
	broken map[string]bool
}

func (m *mockLibrary) add(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, ids...)
}

func (m *mockLibrary) Discover(_ context.Context, _ string) ([]domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	videos := make([]domain.Video, 0, len(m.ids))
	for _, id := range m.ids {
		videos = append(videos, domain.Video{ID: id, Path: id})
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos, nil
}

func (m *mockLibrary) Resolve(_, id string) (string, error) {
	if m.broken[id] {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return id, nil
}

// mockDetector implements driven.SceneDetector from a per-video table.
type mockDetector struct {
	segments map[string][]domain.Segment
	errs     map[string]error
}

func (m *mockDetector) Detect(_ context.Context, path string) ([]domain.Segment, error) {
	if err := m.errs[path]; err != nil {
		return nil, err
	}
	return m.segments[path], nil
}

// frameKey identifies one frame.
type frameKey struct {
	path string
	ts   float64
}

// mockFrames implements driven.FrameSource. Every frame is a solid image
// whose identifier is looked up in ids; unknown frames use id 1.
type mockFrames struct {
	mu    sync.Mutex
	ids   map[frameKey]uint8
	errs  map[frameKey]error
	size  int
	calls int
}

func (m *mockFrames) FrameAt(ctx context.Context, path string, ts float64) (image.Image, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := frameKey{path, ts}
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	id, ok := m.ids[key]
	if !ok {
		id = 1
	}
	size := m.size
	if size == 0 {
		size = 8
	}
	return solidFrame(id, size, size), nil
}

// mockEmbedder implements driven.EmbeddingProvider. The embedding of a frame
// is looked up by frame id; unknown ids embed to {id, 0}.
type mockEmbedder struct {
	mu        sync.Mutex
	vectors   map[uint8][]float32
	errs      map[uint8]error
	err       error
	sizes     []image.Rectangle
	dimension int
}

func (m *mockEmbedder) Embed(_ context.Context, img image.Image) ([]float32, error) {
	m.mu.Lock()
	m.sizes = append(m.sizes, img.Bounds())
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	id := frameID(img)
	if err := m.errs[id]; err != nil {
		return nil, err
	}
	if v, ok := m.vectors[id]; ok {
		return v, nil
	}
	dim := m.dimension
	if dim == 0 {
		dim = 2
	}
	v := make([]float32, dim)
	v[0] = float32(id)
	return v, nil
}

// mockFeatures implements driven.LocalFeatureProvider. Each frame id maps to
// a descriptor set holding just that id; Match looks the pair up in scores.
type mockFeatures struct {
	empty      map[uint8]bool
	extractErr map[uint8]error
	scores     map[[2]uint8]int
}

func (m *mockFeatures) Extract(_ context.Context, img image.Image) (domain.DescriptorSet, error) {
	id := frameID(img)
	if err := m.extractErr[id]; err != nil {
		return domain.DescriptorSet{}, err
	}
	if m.empty[id] {
		return domain.DescriptorSet{Size: 1}, nil
	}
	return domain.DescriptorSet{Size: 1, Data: []byte{id}}, nil
}

func (m *mockFeatures) Match(a, b domain.DescriptorSet) int {
	if a.Empty() || b.Empty() {
		return 0
	}
	return m.scores[[2]uint8{a.Data[0], b.Data[0]}]
}

// mockRunStore implements driven.IndexRunStore.
type mockRunStore struct {
	mu   sync.Mutex
	runs []domain.IndexReport
	err  error
}

func (m *mockRunStore) RecordRun(_ context.Context, report *domain.IndexReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, *report)
	return nil
}

func (m *mockRunStore) ListRuns(_ context.Context, limit int) ([]domain.IndexReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.IndexReport, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// mockRenderer implements driven.FrameRenderer.
type mockRenderer struct{}

func (mockRenderer) Render(img image.Image) (string, error) {
	return fmt.Sprintf("frame:%d", frameID(img)), nil
}

var errBoom = errors.New("boom")

// Ensure mocks implement interfaces
var (
	_ driven.IndexRepository      = (*mockRepository)(nil)
	_ driven.VideoLibrary         = (*mockLibrary)(nil)
	_ driven.SceneDetector        = (*mockDetector)(nil)
	_ driven.FrameSource          = (*mockFrames)(nil)
	_ driven.EmbeddingProvider    = (*mockEmbedder)(nil)
	_ driven.LocalFeatureProvider = (*mockFeatures)(nil)
	_ driven.IndexRunStore        = (*mockRunStore)(nil)
	_ driven.FrameRenderer        = mockRenderer{}
)
