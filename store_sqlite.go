package atlas

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/eringen/atlas/pin"
)

// SQLiteStore keeps pins and cover positions in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the map page read while a save is being written; writers wait
	// on the busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS pins (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    title TEXT NOT NULL,
    subtitle TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    linked_category TEXT NOT NULL DEFAULT '',
    linked_slug TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS cover_positions (
    category TEXT NOT NULL,
    slug TEXT NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    PRIMARY KEY (category, slug)
);
`)
	return err
}

// LoadPins returns the stored pins in their saved order.
func (s *SQLiteStore) LoadPins() ([]pin.Pin, error) {
	rows, err := s.db.Query(`SELECT id, x, y, title, subtitle, description, linked_category, linked_slug FROM pins ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pins := []pin.Pin{}
	for rows.Next() {
		var p pin.Pin
		if err := rows.Scan(&p.ID, &p.X, &p.Y, &p.Title, &p.Subtitle, &p.Description, &p.LinkedCategory, &p.LinkedSlug); err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

// SavePins replaces every stored pin in one transaction.
func (s *SQLiteStore) SavePins(pins []pin.Pin) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pins`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO pins (id, position, x, y, title, subtitle, description, linked_category, linked_slug) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, p := range pins {
		if _, err := stmt.Exec(p.ID, i, p.X, p.Y, p.Title, p.Subtitle, p.Description, p.LinkedCategory, p.LinkedSlug); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CoverPosition returns the stored position, or the default when unset.
func (s *SQLiteStore) CoverPosition(category, slug string) (CoverPosition, error) {
	p := CoverPosition{Category: category, Slug: slug}
	err := s.db.QueryRow(`SELECT x, y FROM cover_positions WHERE category = ? AND slug = ?`, category, slug).
		Scan(&p.X, &p.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultCover(category, slug), nil
	}
	if err != nil {
		return CoverPosition{}, err
	}
	return p, nil
}

// CoverPositions returns every stored position.
func (s *SQLiteStore) CoverPositions() ([]CoverPosition, error) {
	rows, err := s.db.Query(`SELECT category, slug, x, y FROM cover_positions ORDER BY category, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CoverPosition
	for rows.Next() {
		var p CoverPosition
		if err := rows.Scan(&p.Category, &p.Slug, &p.X, &p.Y); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveCoverPosition upserts one position.
func (s *SQLiteStore) SaveCoverPosition(p CoverPosition) error {
	p = ClampCover(p)
	_, err := s.db.Exec(`INSERT OR REPLACE INTO cover_positions (category, slug, x, y) VALUES (?, ?, ?, ?)`,
		p.Category, p.Slug, p.X, p.Y)
	return err
}
