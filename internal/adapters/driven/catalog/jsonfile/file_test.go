package jsonfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func TestEncodeDecode(t *testing.T) {
	records := append(scenes("video1.mp4", 0, 1, 5), scenes("trips/video2.mp4", 2, 12.346)...)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, records))
	assert.Contains(t, buf.String(), `"sequence_index": 2`)

	c, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	r, _ := c.Get(2)
	assert.Equal(t, "trips/video2.mp4", r.VideoID)
	assert.InDelta(t, 12.35, r.Timestamp, 1e-9)
}

func TestDecode_EmptyArray(t *testing.T) {
	c, err := Decode(strings.NewReader("[]"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestDecode_LegacyRecords(t *testing.T) {
	doc := `[
		{"id": "video1.mp4", "timestamp": "1.00"},
		{"id": "video1.mp4", "timestamp": "00:00:05.50"},
		{"id": "video2.mp4", "timestamp": 7}
	]`

	c, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	r, _ := c.Get(1)
	assert.Equal(t, domain.SceneRecord{VideoID: "video1.mp4", Timestamp: 5.5, SequenceIndex: 1}, r)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{{{`},
		{"object not array", `{"id": "a"}`},
		{"missing id", `[{"timestamp": 1, "sequence_index": 0}]`},
		{"missing timestamp", `[{"id": "a", "sequence_index": 0}]`},
		{"negative timestamp", `[{"id": "a", "timestamp": -1, "sequence_index": 0}]`},
		{"bad string timestamp", `[{"id": "a", "timestamp": "soon", "sequence_index": 0}]`},
		{"gap", `[{"id": "a", "timestamp": 1, "sequence_index": 0}, {"id": "a", "timestamp": 2, "sequence_index": 2}]`},
		{"not from zero", `[{"id": "a", "timestamp": 1, "sequence_index": 1}]`},
		{"reordered", `[{"id": "a", "timestamp": 1, "sequence_index": 1}, {"id": "a", "timestamp": 2, "sequence_index": 0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	c := New()
	require.NoError(t, c.Append(scenes("video1.mp4", 0, 1, 5)))

	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Records(), loaded.Records())
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "catalog.json"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSave_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	c := New()
	require.NoError(t, c.Append(scenes("video1.mp4", 0, 1)))

	require.NoError(t, Save(path, c))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Save(path, c))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
