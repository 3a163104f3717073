package state

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestAddFeedPreservesInsertionOrder(t *testing.T) {
	st := NewState()
	urls := []string{"https://a.example/feed", "https://b.example/feed", "https://c.example/feed"}

	for i, url := range urls {
		if err := st.AddFeed(Feed{Name: string(rune('a' + i)), URL: url}); err != nil {
			t.Fatalf("AddFeed(%s) returned error: %v", url, err)
		}
	}

	if len(st.Feeds) != len(urls) {
		t.Fatalf("Expected %d feeds, got %d", len(urls), len(st.Feeds))
	}
	for i, url := range urls {
		if st.Feeds[i].URL != url {
			t.Errorf("Feed %d: expected %s, got %s", i, url, st.Feeds[i].URL)
		}
	}
}

func TestAddFeedDuplicateURL(t *testing.T) {
	st := NewState()
	st.AddFeed(Feed{Name: "first", URL: "https://example.com/feed"})

	err := st.AddFeed(Feed{Name: "second", URL: "https://example.com/feed"})
	if !errors.Is(err, ErrDuplicateFeed) {
		t.Fatalf("Expected ErrDuplicateFeed, got %v", err)
	}
	if len(st.Feeds) != 1 || st.Feeds[0].Name != "first" {
		t.Errorf("Expected state to be unchanged, got %+v", st.Feeds)
	}
}

func TestRemoveFeedRemovesFirstMatch(t *testing.T) {
	st := NewState()
	st.AddFeed(Feed{Name: "dup", URL: "https://one.example"})
	st.AddFeed(Feed{Name: "other", URL: "https://two.example"})
	st.AddFeed(Feed{Name: "dup", URL: "https://three.example"})

	removed, err := st.RemoveFeed("dup")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed.URL != "https://one.example" {
		t.Errorf("Expected first match to be removed, got %s", removed.URL)
	}
	if len(st.Feeds) != 2 || st.Feeds[0].Name != "other" || st.Feeds[1].URL != "https://three.example" {
		t.Errorf("Unexpected remaining feeds: %+v", st.Feeds)
	}
}

func TestRemoveFeedNotFound(t *testing.T) {
	st := NewState()
	st.AddFeed(Feed{Name: "only", URL: "https://one.example"})

	if _, err := st.RemoveFeed("Only"); !errors.Is(err, ErrFeedNotFound) {
		t.Errorf("Expected ErrFeedNotFound for case-mismatched name, got %v", err)
	}
	if len(st.Feeds) != 1 {
		t.Error("Expected state to be unchanged")
	}
}

func TestFindFeedReturnsFirstMatch(t *testing.T) {
	st := NewState()
	st.AddFeed(Feed{Name: "news", URL: "https://one.example"})
	st.AddFeed(Feed{Name: "news", URL: "https://two.example"})

	f, ok := st.FindFeed("news")
	if !ok || f.URL != "https://one.example" {
		t.Errorf("Expected first feed named news, got %+v (found=%v)", f, ok)
	}
	if _, ok := st.FindFeed("missing"); ok {
		t.Error("Expected missing feed not to be found")
	}
}

func TestClearHistory(t *testing.T) {
	st := NewState()
	st.ReadItems.Merge([]string{"a", "b", "c"})

	if n := st.ClearHistory(); n != 3 {
		t.Errorf("Expected prior count 3, got %d", n)
	}
	if st.ReadItems.Len() != 0 {
		t.Error("Expected empty history")
	}
	if n := st.ClearHistory(); n != 0 {
		t.Errorf("Expected 0 on empty history, got %d", n)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st := NewState()
	st.AddFeed(Feed{Name: "a", URL: "https://a.example"})
	st.ReadItems.Add("x")

	clone := st.Clone()
	clone.AddFeed(Feed{Name: "b", URL: "https://b.example"})
	clone.ReadItems.Add("y")

	if len(st.Feeds) != 1 || st.ReadItems.Len() != 1 {
		t.Error("Expected original state to be untouched by clone mutation")
	}
}

func TestTimestampAcceptsNaiveISO(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2024-03-05T14:30:15.123456"`), &ts); err != nil {
		t.Fatalf("Expected naive ISO timestamp to parse, got %v", err)
	}

	want := time.Date(2024, 3, 5, 14, 30, 15, 123456000, time.Local)
	if !ts.Equal(want) {
		t.Errorf("Expected %v, got %v", want, ts.Time)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-03-05T14:30:15Z"` {
		t.Errorf("Unexpected encoding: %s", data)
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(ts.Time) {
		t.Errorf("Expected %v, got %v", ts.Time, back.Time)
	}
}

func TestTimestampRejectsNonString(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`12`), &ts); err == nil {
		t.Error("Expected error for numeric timestamp")
	}
	if err := json.Unmarshal([]byte(`""`), &ts); err != nil || !ts.IsZero() {
		t.Errorf("Expected empty string to decode to zero time, got %v / %v", ts, err)
	}
}
