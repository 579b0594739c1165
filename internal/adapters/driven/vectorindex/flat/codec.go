package flat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/custodia-labs/sceneseek/internal/adapters/driven/storage/atomicfile"
	"github.com/custodia-labs/sceneseek/internal/core/domain"
)

const (
	formatVersion = 1

	// maxPayloadBytes bounds allocation when reading a header.
	maxPayloadBytes = 16 << 30
)

var magic = [4]byte{'S', 'S', 'V', 'I'}

// header is the fixed little-endian file header.
type header struct {
	Magic     [4]byte
	Version   uint16
	Flags     uint16
	Dimension uint32
	Count     uint64
	Checksum  uint32
}

// Encode writes the index to w.
func (x *Index) Encode(w io.Writer) error {
	payload := make([]byte, len(x.data)*4)
	for i, f := range x.data {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(f))
	}

	h := header{
		Magic:     magic,
		Version:   formatVersion,
		Dimension: uint32(x.dim),
		Count:     uint64(x.Count()),
		Checksum:  crc32.ChecksumIEEE(payload),
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		_ = enc.Close()
		return fmt.Errorf("write payload: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish payload: %w", err)
	}
	return nil
}

// Decode reads an index written by Encode.
// Validation failures wrap domain.ErrIndexCorrupt.
func Decode(r io.Reader) (*Index, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", domain.ErrIndexCorrupt, err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("%w: bad magic %q", domain.ErrIndexCorrupt, h.Magic[:])
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrIndexCorrupt, h.Version)
	}
	if h.Dimension == 0 && h.Count > 0 {
		return nil, fmt.Errorf("%w: %d vectors without a dimension", domain.ErrIndexCorrupt, h.Count)
	}

	size := h.Count * uint64(h.Dimension) * 4
	if h.Dimension > 0 && (size/4/uint64(h.Dimension) != h.Count || size > maxPayloadBytes) {
		return nil, fmt.Errorf("%w: payload of %d vectors x %d too large",
			domain.ErrIndexCorrupt, h.Count, h.Dimension)
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("%w: open payload: %v", domain.ErrIndexCorrupt, err)
	}
	defer dec.Close()

	payload := make([]byte, size)
	if _, err := io.ReadFull(dec, payload); err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", domain.ErrIndexCorrupt, err)
	}
	extra, err := io.Copy(io.Discard, dec)
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %v", domain.ErrIndexCorrupt, err)
	}
	if extra != 0 {
		return nil, fmt.Errorf("%w: trailing payload data", domain.ErrIndexCorrupt)
	}
	if crc32.ChecksumIEEE(payload) != h.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", domain.ErrIndexCorrupt)
	}

	data := make([]float32, size/4)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return &Index{dim: int(h.Dimension), data: data}, nil
}

// Save atomically writes the index to path.
func (x *Index) Save(path string) error {
	return atomicfile.WriteFile(path, 0600, x.Encode)
}

// Load reads the index at path.
// Returns domain.ErrNotFound if the file does not exist.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vector index %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read vector index: %w", err)
	}
	return Decode(bytes.NewReader(data))
}
