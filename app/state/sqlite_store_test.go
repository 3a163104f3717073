package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStoreLoadMissingFile(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db")).Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(st.Feeds) != 0 || st.ReadItems.Len() != 0 {
		t.Error("Expected empty default state")
	}
}

func TestSQLiteStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.db")
	store := NewSQLiteStore(path)

	st := NewState()
	added := Timestamp{Time: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)}
	st.AddFeed(Feed{Name: "zeta", URL: "https://z.example/feed", Added: added})
	st.AddFeed(Feed{Name: "alpha", URL: "https://a.example/feed", Added: added})
	st.ReadItems.Merge([]string{"https://z.example/feed:3", "https://z.example/feed:1"})

	if err := store.Save(st); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(loaded.Feeds) != 2 {
		t.Fatalf("Expected 2 feeds, got %d", len(loaded.Feeds))
	}
	if loaded.Feeds[0].Name != "zeta" || loaded.Feeds[1].Name != "alpha" {
		t.Errorf("Expected insertion order to survive, got %+v", loaded.Feeds)
	}
	if !loaded.Feeds[0].Added.Equal(added.Time) {
		t.Errorf("Expected added %v, got %v", added.Time, loaded.Feeds[0].Added.Time)
	}

	ids := loaded.ReadItems.Items()
	if len(ids) != 2 || ids[0] != "https://z.example/feed:3" {
		t.Errorf("Unexpected read items: %v", ids)
	}
}

func TestSQLiteStoreSaveReplacesSnapshot(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "state.sqlite"))

	st := NewState()
	st.AddFeed(Feed{Name: "a", URL: "https://a.example"})
	st.ReadItems.Merge([]string{"one", "two"})
	if err := store.Save(st); err != nil {
		t.Fatal(err)
	}

	st.RemoveFeed("a")
	st.ClearHistory()
	st.ReadItems.Add("three")
	if err := store.Save(st); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Feeds) != 0 {
		t.Errorf("Expected no feeds, got %+v", loaded.Feeds)
	}
	if loaded.ReadItems.Len() != 1 || !loaded.ReadItems.Contains("three") {
		t.Errorf("Unexpected read items: %v", loaded.ReadItems.Items())
	}
}

func TestSQLiteStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	if err := os.WriteFile(path, []byte("this is not a database, just some plain text padding it out"), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := NewSQLiteStore(path).Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Expected ErrCorrupt, got %v", err)
	}
	if st == nil || len(st.Feeds) != 0 {
		t.Error("Expected empty default state alongside corruption error")
	}
}

func TestSQLiteStoreSaveReplacesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")
	if err := os.WriteFile(path, []byte("this is not a database, just some plain text padding it out"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewSQLiteStore(path)

	st, err := store.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Expected ErrCorrupt, got %v", err)
	}

	st.AddFeed(Feed{Name: "a", URL: "https://a.example"})
	st.ReadItems.Add("https://a.example:1")
	if err := store.Save(st); err != nil {
		t.Fatalf("Save after corrupt load returned error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load after recovery returned error: %v", err)
	}
	if len(loaded.Feeds) != 1 || loaded.Feeds[0].Name != "a" {
		t.Errorf("Expected recovered feed, got %+v", loaded.Feeds)
	}
	if !loaded.ReadItems.Contains("https://a.example:1") {
		t.Errorf("Expected recovered read item, got %v", loaded.ReadItems.Items())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the state database to remain, got %d entries", len(entries))
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	tests := []struct {
		path   string
		sqlite bool
	}{
		{"state.json", false},
		{".rss_reader.json", false},
		{"state", false},
		{"state.db", true},
		{"state.SQLITE", true},
		{"state.sqlite3", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			store := Open(tt.path)
			_, isSQLite := store.(*SQLiteStore)
			if isSQLite != tt.sqlite {
				t.Errorf("Open(%q): expected sqlite=%v, got %T", tt.path, tt.sqlite, store)
			}
			if store.Path() != tt.path {
				t.Errorf("Expected path %q, got %q", tt.path, store.Path())
			}
		})
	}
}
