package state

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps the state in an SQLite database. Save replaces the
// whole snapshot inside one transaction.
type SQLiteStore struct {
	path string
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Load() (*State, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}

	db, err := openDB(s.path)
	if err != nil {
		slog.Warn("State database could not be opened", "path", s.path, "error", err)
		return NewState(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	defer db.Close()

	st, err := s.readState(db)
	if err != nil {
		slog.Warn("State database could not be read", "path", s.path, "error", err)
		return NewState(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	slog.Debug("State loaded", "path", s.path, "feeds", len(st.Feeds), "read_items", st.ReadItems.Len())
	return st, nil
}

func (s *SQLiteStore) Save(st *State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := openDB(s.path)
	if err != nil {
		slog.Warn("State database unusable, replacing it", "path", s.path, "error", err)
		return s.replace(st)
	}
	defer db.Close()

	if err := writeSnapshot(db, st); err != nil {
		return err
	}

	slog.Debug("State saved", "path", s.path, "feeds", len(st.Feeds), "read_items", st.ReadItems.Len())
	return nil
}

// replace builds the snapshot in a fresh database next to the unusable one
// and renames it over the original path.
func (s *SQLiteStore) replace(st *State) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary state database: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	db, err := openDB(tmpPath)
	if err != nil {
		return err
	}
	if err := writeSnapshot(db, st); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close state database: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace state database %s: %w", s.path, err)
	}
	committed = true

	syncDir(dir)

	slog.Debug("State database replaced", "path", s.path, "feeds", len(st.Feeds), "read_items", st.ReadItems.Len())
	return nil
}

func writeSnapshot(db *sql.DB, st *State) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM feeds`); err != nil {
		return fmt.Errorf("failed to clear feeds: %w", err)
	}
	for i, f := range st.Feeds {
		_, err := tx.Exec(`
			INSERT INTO feeds (url, name, added, position)
			VALUES (?, ?, ?, ?)
		`, f.URL, f.Name, f.Added.String(), i)
		if err != nil {
			return fmt.Errorf("failed to store feed %s: %w", f.URL, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM read_items`); err != nil {
		return fmt.Errorf("failed to clear read items: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO read_items (identity, position) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare read item insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range st.ReadItems.Items() {
		if _, err := stmt.Exec(id, i); err != nil {
			return fmt.Errorf("failed to store read item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure state database: %w", err)
	}

	version, dirty, err := runMigrations(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if dirty {
		db.Close()
		return nil, fmt.Errorf("state database schema version %d is dirty", version)
	}

	return db, nil
}

func (s *SQLiteStore) readState(db *sql.DB) (*State, error) {
	st := NewState()

	feeds, err := s.readFeeds(db)
	if err != nil {
		return nil, err
	}
	st.Feeds = feeds

	ids, err := s.readItems(db)
	if err != nil {
		return nil, err
	}
	st.ReadItems.Merge(ids)

	return st, nil
}

func (s *SQLiteStore) readFeeds(db *sql.DB) ([]Feed, error) {
	rows, err := db.Query(`SELECT url, name, added FROM feeds ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	feeds := []Feed{}
	for rows.Next() {
		var f Feed
		var added string
		if err := rows.Scan(&f.URL, &f.Name, &added); err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		ts, err := ParseTimestamp(added)
		if err != nil {
			return nil, err
		}
		f.Added = ts
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (s *SQLiteStore) readItems(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT identity FROM read_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query read items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan read item row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating read item rows: %w", err)
	}

	return ids, nil
}
