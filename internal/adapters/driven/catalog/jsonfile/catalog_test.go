package jsonfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func scenes(videoID string, first uint64, timestamps ...float64) []domain.SceneRecord {
	out := make([]domain.SceneRecord, len(timestamps))
	for i, ts := range timestamps {
		out[i] = domain.SceneRecord{VideoID: videoID, Timestamp: ts, SequenceIndex: first + uint64(i)}
	}
	return out
}

func TestCatalog_AppendAndGet(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(scenes("video1.mp4", 0, 1, 5)))
	require.NoError(t, c.Append(scenes("video2.mp4", 2, 3)))

	assert.Equal(t, 3, c.Len())

	r, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, domain.SceneRecord{VideoID: "video1.mp4", Timestamp: 5, SequenceIndex: 1}, r)

	_, err = c.Get(3)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestCatalog_AppendRejectsGap(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(scenes("a.mp4", 0, 1)))

	err := c.Append(scenes("b.mp4", 2, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_AppendRejectsEmptyVideoID(t *testing.T) {
	err := New().Append([]domain.SceneRecord{{SequenceIndex: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalog_VideoIDs(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(scenes("a.mp4", 0, 1, 2)))
	require.NoError(t, c.Append(scenes("b.mp4", 2, 1)))

	assert.Equal(t, map[string]struct{}{"a.mp4": {}, "b.mp4": {}}, c.VideoIDs())
}

func TestCatalog_Truncate(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(scenes("a.mp4", 0, 1)))
	require.NoError(t, c.Append(scenes("b.mp4", 1, 1, 2)))

	require.NoError(t, c.Truncate(1))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, map[string]struct{}{"a.mp4": {}}, c.VideoIDs())

	assert.ErrorIs(t, c.Truncate(2), domain.ErrOutOfRange)

	require.NoError(t, c.Append(scenes("c.mp4", 1, 4)))
	assert.Equal(t, 2, c.Len())
}

func TestCatalog_CloneIndependent(t *testing.T) {
	c := New()
	require.NoError(t, c.Append(scenes("a.mp4", 0, 1)))

	clone := c.Clone()
	require.NoError(t, clone.Append(scenes("b.mp4", 1, 1)))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, clone.Len())
	assert.NotContains(t, c.VideoIDs(), "b.mp4")
}
