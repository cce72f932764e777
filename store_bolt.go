package atlas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/eringen/atlas/pin"
)

var (
	bucketPins   = []byte("pins")
	bucketCovers = []byte("covers")
	keyDocument  = []byte("document")
)

// BoltStore keeps pins and cover positions in a bbolt database. The pin
// collection is a single JSON document, so a save is one Put in one
// transaction.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketPins); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCovers)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// LoadPins returns the stored pin document, or an empty list.
func (s *BoltStore) LoadPins() ([]pin.Pin, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPins).Get(keyDocument); v != nil {
			// Values are only valid inside the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []pin.Pin{}, nil
	}
	return pin.Decode(data)
}

// SavePins replaces the pin document.
func (s *BoltStore) SavePins(pins []pin.Pin) error {
	data, err := pin.Encode(pins)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPins).Put(keyDocument, data)
	})
}

// CoverPosition returns the stored position, or the default when unset.
func (s *BoltStore) CoverPosition(category, slug string) (CoverPosition, error) {
	p := defaultCover(category, slug)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCovers).Get([]byte(coverKey(category, slug)))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &p)
	})
	return p, err
}

// CoverPositions returns every stored position in key order.
func (s *BoltStore) CoverPositions() ([]CoverPosition, error) {
	var out []CoverPosition
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCovers).ForEach(func(_, v []byte) error {
			var p CoverPosition
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

// SaveCoverPosition upserts one position.
func (s *BoltStore) SaveCoverPosition(p CoverPosition) error {
	p = ClampCover(p)
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCovers).Put([]byte(coverKey(p.Category, p.Slug)), data)
	})
}
