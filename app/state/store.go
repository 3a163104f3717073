package state

import (
	"path/filepath"
	"strings"
)

// Store persists State. Load on a missing record returns an empty state;
// a record that cannot be decoded yields an empty state together with an
// error wrapping ErrCorrupt.
type Store interface {
	Load() (*State, error)
	Save(st *State) error
	Path() string
}

// Open picks the backend from the file extension: SQLite for .db, .sqlite
// and .sqlite3, JSON otherwise.
func Open(path string) Store {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path)
	}
}
