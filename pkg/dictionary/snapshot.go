package dictionary

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is bumped whenever Entry changes incompatibly.
const SnapshotVersion = 1

type snapshot struct {
	Version int       `msgpack:"v"`
	Created time.Time `msgpack:"created"`
	Source  *Source   `msgpack:"src"`
}

// SaveSnapshot writes src as a compiled snapshot. The file is replaced
// atomically so a watching server never reads a half-written snapshot.
func SaveSnapshot(src *Source, path string) error {
	if src == nil || len(src.Patterns) == 0 {
		return ErrEmptyDictionary
	}
	var buf bytes.Buffer
	buf.Write(snapshotMagic)
	enc := msgpack.NewEncoder(&buf)
	enc.SetOmitEmpty(true)
	if err := enc.Encode(snapshot{Version: SnapshotVersion, Created: time.Now().UTC(), Source: src}); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, snapshotMagic) {
		return nil, fmt.Errorf("%w: %s has no snapshot header", ErrUnknownFormat, path)
	}
	var snap snapshot
	if err := msgpack.Unmarshal(data[len(snapshotMagic):], &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, want %d", path, snap.Version, SnapshotVersion)
	}
	if snap.Source == nil {
		return &Source{}, nil
	}
	return snap.Source, nil
}
