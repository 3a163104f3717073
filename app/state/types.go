package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

var (
	ErrCorrupt       = errors.New("state file is corrupted")
	ErrDuplicateFeed = errors.New("feed already exists")
	ErrFeedNotFound  = errors.New("feed not found")
)

// Feed is a subscribed feed. URL is the primary key; Name is how the user
// addresses it and is not required to be unique.
type Feed struct {
	Name  string    `json:"name"`
	URL   string    `json:"url"`
	Added Timestamp `json:"added"`
}

// Timestamp marshals as RFC 3339 and accepts any common date layout on
// input, including naive ISO-8601 with microseconds.
type Timestamp struct {
	time.Time
}

func Now() Timestamp {
	return Timestamp{Time: time.Now().Truncate(time.Second)}
}

func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Timestamp{Time: t}, nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// State is the single durable record: the ordered subscriptions and the
// history of item identities already seen.
type State struct {
	Feeds     []Feed
	ReadItems *ReadSet
}

func NewState() *State {
	return &State{
		Feeds:     []Feed{},
		ReadItems: NewReadSet(),
	}
}

// FindFeed returns the first feed with the given name.
func (s *State) FindFeed(name string) (Feed, bool) {
	for _, f := range s.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return Feed{}, false
}

func (s *State) FeedByURL(url string) (Feed, bool) {
	for _, f := range s.Feeds {
		if f.URL == url {
			return f, true
		}
	}
	return Feed{}, false
}

func (s *State) AddFeed(f Feed) error {
	if f.URL == "" {
		return errors.New("feed URL is required")
	}
	if existing, ok := s.FeedByURL(f.URL); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFeed, existing.Name)
	}
	s.Feeds = append(s.Feeds, f)
	return nil
}

// RemoveFeed removes the first feed whose name matches exactly.
func (s *State) RemoveFeed(name string) (Feed, error) {
	for i, f := range s.Feeds {
		if f.Name == name {
			s.Feeds = append(s.Feeds[:i:i], s.Feeds[i+1:]...)
			return f, nil
		}
	}
	return Feed{}, fmt.Errorf("%w: %s", ErrFeedNotFound, name)
}

// ClearHistory empties the read history and returns how many entries it held.
func (s *State) ClearHistory() int {
	return s.ReadItems.Clear()
}

func (s *State) Clone() *State {
	feeds := make([]Feed, len(s.Feeds))
	copy(feeds, s.Feeds)
	return &State{
		Feeds:     feeds,
		ReadItems: NewReadSet(s.ReadItems.Items()...),
	}
}
