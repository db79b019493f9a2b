package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File reads and writes the snapshot document at a path. The encoding follows
// the extension: .yaml/.yml use YAML, anything else JSON.
type File struct {
	path string
	yaml bool
}

// NewFile creates a snapshot file handle
func NewFile(path string) *File {
	ext := strings.ToLower(filepath.Ext(path))
	return &File{path: path, yaml: ext == ".yaml" || ext == ".yml"}
}

// Path returns the snapshot location
func (f *File) Path() string {
	return f.path
}

// Save replaces the snapshot with rooms. The file is written to a temporary
// sibling and renamed into place so a crash mid-write keeps the old snapshot.
func (f *File) Save(rooms []RoomRecord) error {
	doc := Document{Version: Version, SavedAt: time.Now().UTC(), Rooms: rooms}
	if doc.Rooms == nil {
		doc.Rooms = []RoomRecord{}
	}

	data, err := f.encode(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file yields no rooms and no error.
// Rooms idle since before now-staleAfter, and records that cannot be
// restored, are left out; dropped counts them.
func (f *File) Load(now time.Time, staleAfter time.Duration) (rooms []RoomRecord, dropped int, err error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read snapshot: %w", err)
	}

	var doc Document
	if err := f.decode(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}
	if doc.Version != Version {
		return nil, 0, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}

	cutoff := now.Add(-staleAfter)
	for _, rec := range doc.Rooms {
		if !rec.valid() || rec.LastActivity.Before(cutoff) {
			dropped++
			continue
		}
		rooms = append(rooms, rec)
	}
	return rooms, dropped, nil
}

func (f *File) encode(doc Document) ([]byte, error) {
	if f.yaml {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (f *File) decode(data []byte, doc *Document) error {
	if f.yaml {
		return yaml.Unmarshal(data, doc)
	}
	return json.Unmarshal(data, doc)
}
