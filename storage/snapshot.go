package storage

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pierrec/lz4"
	"github.com/rs/zerolog/log"

	"realmatlas/editor"
	"realmatlas/typedef"
)

// AutosaveFile is the snapshot written periodically and loaded on launch.
const AutosaveFile = "autosave.atlas"

// Snapshot is the on-disk session state: every category's points in display
// order, LZ4-compressed JSON.
type Snapshot struct {
	Categories map[typedef.Category][]typedef.Point `json:"categories"`
	Saved      string                               `json:"saved"`
}

// TakeSnapshot captures the store's current contents.
func TakeSnapshot(s *editor.Store, now time.Time) Snapshot {
	snap := Snapshot{
		Categories: make(map[typedef.Category][]typedef.Point),
		Saved:      now.Format(time.RFC3339),
	}
	for _, cat := range s.Categories() {
		snap.Categories[cat] = s.Points(cat)
	}
	return snap
}

// Restore clears the store and re-adds every snapshot point in order.
func (snap Snapshot) Restore(s *editor.Store) int {
	s.ClearAll()
	total := 0
	for cat, points := range snap.Categories {
		for _, p := range points {
			s.Add(cat, p.X, p.Y)
		}
		total += len(points)
	}
	return total
}

// EncodeSnapshot serializes and LZ4-compresses a snapshot.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return compressLZ4(data)
}

// DecodeSnapshot decompresses and parses snapshot bytes.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	raw, err := decompressLZ4(data)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// SaveSnapshot writes the store state to a file under the data directory.
func SaveSnapshot(name string, s *editor.Store, now time.Time) error {
	data, err := EncodeSnapshot(TakeSnapshot(s, now))
	if err != nil {
		return err
	}
	if err := WriteDataFile(name, data, 0o644); err != nil {
		return err
	}
	log.Debug().Str("file", name).Int("points", s.TotalCount()).Msg("snapshot saved")
	return nil
}

// LoadSnapshot reads a snapshot file from the data directory into the
// store. A missing file is not an error; the store is left empty.
func LoadSnapshot(name string, s *editor.Store) (int, error) {
	data, err := ReadDataFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return 0, err
	}
	n := snap.Restore(s)
	log.Info().Str("file", name).Int("points", n).Str("saved", snap.Saved).Msg("snapshot restored")
	return n, nil
}

// LoadSnapshotPath reads a snapshot from an arbitrary path, for the -f
// launch flag.
func LoadSnapshotPath(path string, s *editor.Store) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return 0, err
	}
	return snap.Restore(s), nil
}

// compressLZ4 compresses data using LZ4
func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	_, err := writer.Write(data)
	if err != nil {
		writer.Close()
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decompressLZ4 decompresses LZ4 data
func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	_, err := io.Copy(&buf, reader)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
