// Package store persists Madeup sketches in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("madeup.store")

// ErrSketchNotFound indicates the requested sketch doesn't exist.
var ErrSketchNotFound = errors.New("sketch not found")

// ErrInvalidName is returned for names that are empty or only whitespace.
var ErrInvalidName = errors.New("sketch name must not be empty")

// Sketch is a named program.
type Sketch struct {
	Name     string
	Source   string
	Modified time.Time
}

// Store is a sketch database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sketches (
		name TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		modified INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened sketch store %s", path)
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save creates or replaces a sketch and returns it with its new
// modification time.
func (s *Store) Save(name, source string) (*Sketch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sk := &Sketch{Name: name, Source: source, Modified: time.Now().UTC()}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO sketches (name, source, modified) VALUES (?, ?, ?)",
		sk.Name, sk.Source, sk.Modified.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("saving sketch %s: %w", name, err)
	}
	return sk, nil
}

// Load retrieves a sketch by name.
func (s *Store) Load(name string) (*Sketch, error) {
	var (
		source   string
		modified int64
	)
	err := s.db.QueryRow("SELECT source, modified FROM sketches WHERE name = ?", name).Scan(&source, &modified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSketchNotFound
		}
		return nil, fmt.Errorf("querying sketch %s: %w", name, err)
	}
	return &Sketch{Name: name, Source: source, Modified: time.Unix(0, modified).UTC()}, nil
}

// List returns every sketch without its source, most recently modified
// first.
func (s *Store) List() ([]Sketch, error) {
	rows, err := s.db.Query("SELECT name, modified FROM sketches ORDER BY modified DESC, name")
	if err != nil {
		return nil, fmt.Errorf("listing sketches: %w", err)
	}
	defer rows.Close()

	var out []Sketch
	for rows.Next() {
		var (
			sk       Sketch
			modified int64
		)
		if err := rows.Scan(&sk.Name, &modified); err != nil {
			return nil, fmt.Errorf("scanning sketch: %w", err)
		}
		sk.Modified = time.Unix(0, modified).UTC()
		out = append(out, sk)
	}
	return out, rows.Err()
}

// Delete removes a sketch.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM sketches WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting sketch %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting sketch %s: %w", name, err)
	}
	if n == 0 {
		return ErrSketchNotFound
	}
	return nil
}
