// Package snapshot stores the whole simulation in one compressed file.
//
// File layout: zstd stream containing a JSON header line followed by the
// JSON encoded Snapshot. The header can be read without decoding the body.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/walkersim/internal/spawn"
	"github.com/udisondev/walkersim/internal/walker"
)

// Version is the current file format version.
const Version = 1

const bufferSize = 256 * 1024

var (
	// ErrVersion is returned for files written by an unknown format version.
	ErrVersion = errors.New("unsupported snapshot version")
	// ErrNotFound is returned by stores that hold no snapshot yet.
	ErrNotFound = errors.New("snapshot not found")
)

// Header describes a snapshot without its body.
type Header struct {
	Version int       `json:"version"`
	Tick    uint64    `json:"tick"`
	SavedAt time.Time `json:"saved_at"`
	Walkers int       `json:"walkers"`
}

// Snapshot is the persisted simulation state.
type Snapshot struct {
	Header Header `json:"-"`

	Seed uint64 `json:"seed"`
	// Rand is the marshaled state of the roam random source.
	Rand []byte `json:"rand,omitempty"`

	Spawners []spawn.Record  `json:"spawners"`
	Walkers  []walker.Record `json:"walkers"`
}

// Write stores snap at path. The file is replaced atomically.
func Write(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after rename

	if err := Encode(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", path, err)
	}
	return nil
}

// Read loads the snapshot at path.
func Read(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// ReadHeader loads only the header of the snapshot at path.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	return readHeader(bufio.NewReader(dec))
}

// Encode writes snap to w.
func Encode(w io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}

	bw := bufio.NewWriterSize(enc, bufferSize)

	header := snap.Header
	header.Version = Version
	header.Walkers = len(snap.Walkers)
	if header.SavedAt.IsZero() {
		header.SavedAt = time.Now().UTC()
	}

	hb, err := json.Marshal(header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("encoding header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return fmt.Errorf("writing header: %w", err)
	}

	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing zstd stream: %w", err)
	}
	return nil
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot

	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, bufferSize)

	header, err := readHeader(br)
	if err != nil {
		return snap, err
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("decoding snapshot: %w", err)
	}
	snap.Header = header
	return snap, nil
}

func readHeader(br *bufio.Reader) (Header, error) {
	var header Header

	line, err := br.ReadBytes('\n')
	if err != nil {
		return header, fmt.Errorf("reading header: %w", err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return header, fmt.Errorf("decoding header: %w", err)
	}
	if header.Version != Version {
		return header, fmt.Errorf("%w: %d", ErrVersion, header.Version)
	}
	return header, nil
}
