package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))
	return path
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_HasFlags(t *testing.T) {
	for name, def := range map[string]string{
		"top":         "5",
		"candidates":  "50",
		"min-matches": "10",
		"json":        "false",
		"render":      "false",
	} {
		flag := queryCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestQueryCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	path := writeImage(t)

	out, err := execute(t, "query", path)

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), ts.query.gotData)
	assert.Contains(t, out, "Found 1 matching scenes")
	assert.Contains(t, out, "[1] beach.mp4 @ 00:01:15.50")
	assert.Contains(t, out, "matches: 15  distance: 0.1250")
}

func TestQueryCmd_OptionsFromSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, ts.settings.Set("query.top_n", "3"))
	require.NoError(t, ts.settings.Set("query.min_match_count", "20"))

	_, err := execute(t, "query", writeImage(t))

	require.NoError(t, err)
	assert.Equal(t, domain.QueryOptions{TopN: 3, CandidateCount: 50, MinMatchCount: 20}, ts.query.gotOpts)
}

func TestQueryCmd_FlagsOverrideSettings(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	require.NoError(t, ts.settings.Set("query.top_n", "3"))

	_, err := execute(t, "query", "--top", "7", "--candidates", "9", "--min-matches", "0", writeImage(t))

	require.NoError(t, err)
	assert.Equal(t, domain.QueryOptions{TopN: 7, CandidateCount: 9, MinMatchCount: -1}, ts.query.gotOpts)
}

func TestQueryCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.result.Matches[0].Rendering = "data:image/jpeg;base64,AA=="

	out, err := execute(t, "query", "--json", "--render", writeImage(t))

	require.NoError(t, err)
	assert.True(t, ts.query.gotOpts.Render)

	var got queryResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ranked", got.Outcome)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, queryMatchJSON{
		Rank:      1,
		VideoID:   "beach.mp4",
		Timestamp: 75.5,
		Timecode:  "00:01:15.50",
		Score:     15,
		Distance:  0.125,
		Frame:     "data:image/jpeg;base64,AA==",
	}, got.Matches[0])
}

func TestQueryCmd_RenderNeedsJSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "query", "--render", writeImage(t))

	require.NoError(t, err)
	assert.False(t, ts.query.gotOpts.Render)
}

func TestQueryCmd_NegativeAnswer(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.result = &domain.QueryResult{Outcome: domain.OutcomeNoSurvivors}

	out, err := execute(t, "query", writeImage(t))

	require.NoError(t, err)
	assert.Contains(t, out, "No similar scene found.")
}

func TestQueryCmd_NegativeAnswerJSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.result = &domain.QueryResult{Outcome: domain.OutcomeNoMatch}

	out, err := execute(t, "query", "--json", writeImage(t))

	require.NoError(t, err)
	var got queryResultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "no_match", got.Outcome)
	assert.NotNil(t, got.Matches)
	assert.Empty(t, got.Matches)
}

func TestQueryCmd_Stdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput(t, bytes.NewBufferString("stdin-image"), "query", "-")

	require.NoError(t, err)
	assert.Equal(t, []byte("stdin-image"), ts.query.gotData)
}

func TestQueryCmd_Errors(t *testing.T) {
	t.Run("missing image file", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "query", filepath.Join(t.TempDir(), "missing.png"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("index not ready suggests indexing", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.query.err = domain.ErrIndexNotReady

		_, err := execute(t, "query", writeImage(t))

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIndexNotReady)
		assert.Contains(t, err.Error(), "sceneseek index")
	})

	t.Run("undecodable image", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.query.err = domain.ErrDecode

		_, err := execute(t, "query", writeImage(t))

		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("not configured", func(t *testing.T) {
		SetServices(Services{})

		_, err := execute(t, "query", writeImage(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "query service not configured")
	})
}

func TestSentence(t *testing.T) {
	assert.Equal(t, "No match.", sentence("no match"))
	assert.Equal(t, "", sentence(""))
	assert.Equal(t, "Done.", sentence("Done"))
}
