package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/eringen/atlas/pin"
)

const (
	pinsFile   = "pins.json"
	coversFile = "cover-positions.json"
)

// JSONStore keeps pins and cover positions as JSON documents in a directory.
// Writes go to a temporary file that is renamed over the old document.
type JSONStore struct {
	mu  sync.Mutex
	dir string
}

type coverDocument struct {
	Positions []CoverPosition `json:"positions"`
}

// NewJSONStore opens (or creates) a JSON store in dir.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("atlas: create store dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

// Close is a no-op; the JSON store holds no open handles.
func (s *JSONStore) Close() error { return nil }

// PinsPath returns the pin document path.
func (s *JSONStore) PinsPath() string { return filepath.Join(s.dir, pinsFile) }

// LoadPins reads the pin document. A missing document is an empty list.
func (s *JSONStore) LoadPins() ([]pin.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.PinsPath())
	if errors.Is(err, os.ErrNotExist) {
		return []pin.Pin{}, nil
	}
	if err != nil {
		return nil, err
	}
	pins, err := pin.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("atlas: %s: %w", s.PinsPath(), err)
	}
	return pins, nil
}

// SavePins replaces the pin document.
func (s *JSONStore) SavePins(pins []pin.Pin) error {
	data, err := pin.Encode(pins)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.PinsPath(), data)
}

func (s *JSONStore) loadCovers() (map[string]CoverPosition, error) {
	out := make(map[string]CoverPosition)
	data, err := os.ReadFile(filepath.Join(s.dir, coversFile))
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	var doc coverDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("atlas: %s: %w", coversFile, err)
	}
	for _, p := range doc.Positions {
		out[coverKey(p.Category, p.Slug)] = p
	}
	return out, nil
}

// CoverPosition returns the stored position, or the default when unset.
func (s *JSONStore) CoverPosition(category, slug string) (CoverPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	covers, err := s.loadCovers()
	if err != nil {
		return CoverPosition{}, err
	}
	if p, ok := covers[coverKey(category, slug)]; ok {
		return p, nil
	}
	return defaultCover(category, slug), nil
}

// CoverPositions returns every stored position ordered by key.
func (s *JSONStore) CoverPositions() ([]CoverPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	covers, err := s.loadCovers()
	if err != nil {
		return nil, err
	}
	return sortedCovers(covers), nil
}

// SaveCoverPosition upserts one position.
func (s *JSONStore) SaveCoverPosition(p CoverPosition) error {
	p = ClampCover(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	covers, err := s.loadCovers()
	if err != nil {
		return err
	}
	covers[coverKey(p.Category, p.Slug)] = p
	data, err := json.MarshalIndent(coverDocument{Positions: sortedCovers(covers)}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, coversFile), data)
}

func coverKey(category, slug string) string {
	return category + "/" + slug
}

func sortedCovers(m map[string]CoverPosition) []CoverPosition {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]CoverPosition, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
