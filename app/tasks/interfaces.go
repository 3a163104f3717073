package tasks

import (
	"context"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/state"
)

// FeedRunner fetches the selected feeds of a state and folds what was read
// back into it. An empty selector means every configured feed.
// Example usage:
//
//	runner := NewOrchestrator(fetcher, store, workers, timeout, retries)
//	result, err := runner.Read(ctx, st, "", ReadOptions{MaxItems: 10, MarkRead: true})
type FeedRunner interface {
	Read(ctx context.Context, st *state.State, selector string, opts ReadOptions) (*RunResult, error)
	MarkAllRead(ctx context.Context, st *state.State, selector string, filters []feed.Filter) (*RunResult, error)
}
