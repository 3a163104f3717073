package tasks

import (
	"fmt"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/reconcile"
	"github.com/lysyi3m/rss-reader/app/state"
)

type ReadOptions struct {
	MaxItems int
	ShowRead bool
	MarkRead bool
	Filters  []feed.Filter
}

// FeedError is a fetch or parse failure confined to one feed.
type FeedError struct {
	Feed string
	URL  string
	Err  error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %s (%s): %v", e.Feed, e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

type FeedResult struct {
	Feed      state.Feed
	Title     string
	Items     []reconcile.DisplayItem
	NewlyRead []string
	Fetched   int
	Filtered  int
	Err       error
}

// RunResult holds one FeedResult per selected feed, in configured order.
// Marked counts identities that were new to the history; Saved reports
// whether the store was written.
type RunResult struct {
	Feeds  []FeedResult
	Marked int
	Saved  bool
}

func (r *RunResult) Failed() int {
	n := 0
	for _, f := range r.Feeds {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// AllFailed reports whether at least one feed ran and none succeeded.
func (r *RunResult) AllFailed() bool {
	return len(r.Feeds) > 0 && r.Failed() == len(r.Feeds)
}
