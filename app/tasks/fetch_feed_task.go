package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/reconcile"
	"github.com/lysyi3m/rss-reader/app/state"
)

var _ TaskInterface = (*FetchFeedTask)(nil)

// FetchFeedTask fetches one feed and reconciles it against a read-only view
// of the history. The outcome is left in Result for the orchestrator to
// merge; the task never writes shared state.
type FetchFeedTask struct {
	Task
	Feed     state.Feed
	Result   FeedResult
	source   feed.Source
	filterer *feed.Filterer
	read     reconcile.Lookup
	options  ReadOptions
	index    int
}

func NewFetchFeedTask(taskType TaskType, f state.Feed, source feed.Source, filterer *feed.Filterer, read reconcile.Lookup, options ReadOptions, maxRetries int) *FetchFeedTask {
	return &FetchFeedTask{
		Task:     NewTask(taskType, f.Name, maxRetries),
		Feed:     f,
		Result:   FeedResult{Feed: f},
		source:   source,
		filterer: filterer,
		read:     read,
		options:  options,
	}
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	metadata, items, err := t.source.Fetch(ctx, t.Feed.URL)
	if err != nil {
		return err
	}

	result := FeedResult{Feed: t.Feed, Fetched: len(items)}
	if metadata != nil {
		result.Title = metadata.Title
	}

	if len(t.options.Filters) > 0 {
		items, result.Filtered = t.filterer.Run(items, t.options.Filters)
	}

	switch t.Type {
	case TaskTypeReadFeed:
		r := reconcile.Reconcile(t.read, t.Feed.URL, items, reconcile.Options{
			MaxItems: t.options.MaxItems,
			ShowRead: t.options.ShowRead,
			MarkRead: t.options.MarkRead,
		})
		result.Items = r.Items
		result.NewlyRead = r.NewlyRead
	case TaskTypeMarkFeedRead:
		result.NewlyRead = reconcile.MarkAll(t.read, t.Feed.URL, items)
	default:
		return fmt.Errorf("unknown task type: %s", t.Type)
	}

	t.Result = result

	slog.Debug("Feed reconciled",
		"feed", t.FeedName,
		"type", string(t.Type),
		"fetched", result.Fetched,
		"filtered", result.Filtered,
		"displayed", len(result.Items),
		"newly_read", len(result.NewlyRead),
		"duration", t.GetDuration().String())

	return nil
}

func (t *FetchFeedTask) fail(err error) {
	t.Result = FeedResult{
		Feed: t.Feed,
		Err:  &FeedError{Feed: t.Feed.Name, URL: t.Feed.URL, Err: err},
	}
}
