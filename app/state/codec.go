package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

type document struct {
	Feeds     []Feed   `json:"feeds"`
	ReadItems []string `json:"read_items"`
}

// Decode validates a JSON state record. Duplicate read items are collapsed
// and a feed repeating an earlier URL is dropped.
func Decode(data []byte) (*State, error) {
	var doc *document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("state record is null")
	}
	return fromDocument(doc)
}

func Encode(st *State) ([]byte, error) {
	doc := document{
		Feeds:     st.Feeds,
		ReadItems: st.ReadItems.Items(),
	}
	if doc.Feeds == nil {
		doc.Feeds = []Feed{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return append(data, '\n'), nil
}

func fromDocument(doc *document) (*State, error) {
	st := NewState()
	for i, f := range doc.Feeds {
		if f.URL == "" {
			return nil, fmt.Errorf("feed at index %d has no url", i)
		}
		if err := st.AddFeed(f); err != nil {
			slog.Warn("Dropping duplicate feed from state", "name", f.Name, "url", f.URL)
		}
	}
	st.ReadItems.Merge(doc.ReadItems)
	return st, nil
}
