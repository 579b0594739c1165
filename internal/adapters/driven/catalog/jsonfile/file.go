package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/storage/atomicfile"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
	"github.com/custodia-labs/sceneseek/internal/core/ports/driven"
)

// record is the on-disk form of a scene.
type record struct {
	ID            string  `json:"id"`
	Timestamp     float64 `json:"timestamp"`
	SequenceIndex uint64  `json:"sequence_index"`
}

// legacyRecord accepts every historical variant of a record.
type legacyRecord struct {
	ID            string          `json:"id"`
	Timestamp     json.RawMessage `json:"timestamp"`
	SequenceIndex *uint64         `json:"sequence_index"`
}

// Encode writes records as a JSON array.
func Encode(w io.Writer, records []domain.SceneRecord) error {
	out := make([]record, len(records))
	for i, r := range records {
		out[i] = record{
			ID:            r.VideoID,
			Timestamp:     domain.RoundTimestamp(r.Timestamp),
			SequenceIndex: r.SequenceIndex,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Decode reads a catalog and validates that sequence indexes are contiguous
// from zero. Validation failures wrap domain.ErrIndexCorrupt.
func Decode(r io.Reader) (*Catalog, error) {
	var raw []legacyRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", domain.ErrIndexCorrupt, err)
	}

	records := make([]domain.SceneRecord, len(raw))
	for i, lr := range raw {
		if lr.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", domain.ErrIndexCorrupt, i)
		}
		ts, err := parseTimestamp(lr.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", domain.ErrIndexCorrupt, i, err)
		}
		seq := uint64(i)
		if lr.SequenceIndex != nil {
			seq = *lr.SequenceIndex
		}
		if seq != uint64(i) {
			return nil, fmt.Errorf("%w: record %d has sequence index %d", domain.ErrIndexCorrupt, i, seq)
		}
		records[i] = domain.SceneRecord{VideoID: lr.ID, Timestamp: ts, SequenceIndex: seq}
	}

	c := New()
	if err := c.Append(records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	return c, nil
}

func parseTimestamp(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("missing timestamp")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return domain.ParseTimestamp(s)
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %s: %w", raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative timestamp %v", v)
	}
	return v, nil
}

// Save atomically writes the catalog to path.
func Save(path string, catalog driven.SceneCatalog) error {
	records := catalog.Records()
	return atomicfile.WriteFile(path, 0600, func(w io.Writer) error {
		return Encode(w, records)
	})
}

// Load reads the catalog at path.
// Returns domain.ErrNotFound if the file does not exist.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("scene catalog %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open scene catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
