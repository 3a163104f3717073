package feed

import (
	"context"
	"time"
)

// Source is the external fetch/parse capability: given a URL it returns the
// feed-level metadata and the items in the order the feed declares them.
type Source interface {
	Fetch(ctx context.Context, url string) (*Metadata, []Item, error)
}

type Metadata struct {
	Title           string
	Link            string
	Description     string
	ImageURL        string
	Language        string
	FeedPublishedAt *time.Time
}

type Item struct {
	GUID        string // declared id, empty when the feed gives none
	Title       string
	Link        string
	Description string
	Content     string
	Published   string // raw date text as found in the feed
	Updated     string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
	Authors     []string // "email (name)" or "name"
	Categories  []string
}

// Summary returns the item's description, falling back to its content.
func (i Item) Summary() string {
	if i.Description != "" {
		return i.Description
	}
	return i.Content
}

// DateText returns the raw published date, falling back to the updated date.
func (i Item) DateText() string {
	if i.Published != "" {
		return i.Published
	}
	return i.Updated
}

type Filter struct {
	Field    string   `yaml:"field" json:"field"`
	Includes []string `yaml:"includes" json:"includes,omitempty"`
	Excludes []string `yaml:"excludes" json:"excludes,omitempty"`
}
