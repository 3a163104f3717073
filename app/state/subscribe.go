package state

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lysyi3m/rss-reader/app/feed"
)

// Subscribe validates url with one fetch through source and appends the
// feed to st. The name defaults to the feed title, then to the URL. A URL
// that is already subscribed fails with ErrDuplicateFeed before any fetch.
func Subscribe(ctx context.Context, st *State, source feed.Source, url, name string) (Feed, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Feed{}, errors.New("feed URL is required")
	}

	if existing, ok := st.FeedByURL(url); ok {
		return existing, fmt.Errorf("%w: %s", ErrDuplicateFeed, existing.Name)
	}

	metadata, _, err := source.Fetch(ctx, url)
	if err != nil {
		return Feed{}, fmt.Errorf("failed to fetch feed %s: %w", url, err)
	}

	title := ""
	if metadata != nil {
		title = metadata.Title
	}

	f := Feed{
		Name:  cmp.Or(strings.TrimSpace(name), title, url),
		URL:   url,
		Added: Now(),
	}
	if err := st.AddFeed(f); err != nil {
		return Feed{}, err
	}

	return f, nil
}
