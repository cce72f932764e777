package atlas

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/eringen/atlas/pin"
)

// Store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// DefaultCoverPercent is the cover focal point used when none is stored.
const DefaultCoverPercent = 50.0

// ErrUnknownBackend is returned by OpenStore for an unsupported backend name.
var ErrUnknownBackend = errors.New("atlas: unknown store backend")

// Store persists the pin collection and cover positions. SavePins replaces
// the whole collection atomically; readers never observe a partial list.
type Store interface {
	LoadPins() ([]pin.Pin, error)
	SavePins(pins []pin.Pin) error
	CoverPosition(category, slug string) (CoverPosition, error)
	CoverPositions() ([]CoverPosition, error)
	SaveCoverPosition(p CoverPosition) error
	Close() error
}

// OpenStore opens the store backend at path.
func OpenStore(backend, path string) (Store, error) {
	if path == "" {
		path = DefaultStorePath(backend)
	}
	switch strings.ToLower(backend) {
	case BackendJSON, "":
		return NewJSONStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendBolt:
		return NewBoltStore(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// DefaultStorePath returns where a backend keeps its data by default.
// The JSON backend uses a directory; the others a single database file.
func DefaultStorePath(backend string) string {
	switch strings.ToLower(backend) {
	case BackendSQLite:
		return filepath.Join("data", "atlas.db")
	case BackendBolt:
		return filepath.Join("data", "atlas.bolt")
	}
	return "data"
}

// ParseStoreURL splits "backend:path" as accepted by the CLI. A bare path
// selects the JSON backend.
func ParseStoreURL(s string) (backend, path string) {
	if b, p, ok := strings.Cut(s, ":"); ok {
		switch strings.ToLower(b) {
		case BackendJSON, BackendSQLite, BackendBolt:
			return strings.ToLower(b), p
		}
	}
	return BackendJSON, s
}

// ClampCover clamps a cover position into [0,100] percent.
func ClampCover(p CoverPosition) CoverPosition {
	p.X = clampPercent(p.X)
	p.Y = clampPercent(p.Y)
	return p
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultCoverPercent
	}
	return math.Max(0, math.Min(100, v))
}

func defaultCover(category, slug string) CoverPosition {
	return CoverPosition{Category: category, Slug: slug, X: DefaultCoverPercent, Y: DefaultCoverPercent}
}

// CopyStore copies every pin and cover position from src into dst.
func CopyStore(dst, src Store) error {
	pins, err := src.LoadPins()
	if err != nil {
		return fmt.Errorf("atlas: load pins: %w", err)
	}
	if err := dst.SavePins(pins); err != nil {
		return fmt.Errorf("atlas: save pins: %w", err)
	}
	covers, err := src.CoverPositions()
	if err != nil {
		return fmt.Errorf("atlas: load cover positions: %w", err)
	}
	for _, c := range covers {
		if err := dst.SaveCoverPosition(c); err != nil {
			return fmt.Errorf("atlas: save cover position: %w", err)
		}
	}
	return nil
}
