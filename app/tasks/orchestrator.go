package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/state"
)

const (
	DefaultWorkerCount = 4
	DefaultTimeout     = 30 * time.Second
	maxRetryDelay      = 30 * time.Second
)

var _ FeedRunner = (*Orchestrator)(nil)

// Orchestrator runs one FetchFeedTask per selected feed on a bounded worker
// pool. Workers read a snapshot of the history taken before dispatch; the
// calling goroutine merges every feed's delta into the live state once the
// pool has drained and saves it at most once.
type Orchestrator struct {
	source      feed.Source
	store       state.Store
	filterer    *feed.Filterer
	workerCount int
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
}

// NewOrchestrator builds an orchestrator. A timeout of zero disables the
// per-feed deadline.
func NewOrchestrator(source feed.Source, store state.Store, workerCount int, timeout time.Duration, maxRetries int) *Orchestrator {
	if workerCount < 1 {
		workerCount = DefaultWorkerCount
	}

	return &Orchestrator{
		source:      source,
		store:       store,
		filterer:    feed.NewFilterer(),
		workerCount: workerCount,
		timeout:     timeout,
		maxRetries:  max(maxRetries, 0),
		retryDelay:  time.Second,
	}
}

func (o *Orchestrator) Read(ctx context.Context, st *state.State, selector string, opts ReadOptions) (*RunResult, error) {
	return o.run(ctx, st, selector, TaskTypeReadFeed, opts)
}

func (o *Orchestrator) MarkAllRead(ctx context.Context, st *state.State, selector string, filters []feed.Filter) (*RunResult, error) {
	return o.run(ctx, st, selector, TaskTypeMarkFeedRead, ReadOptions{Filters: filters})
}

func (o *Orchestrator) run(ctx context.Context, st *state.State, selector string, taskType TaskType, opts ReadOptions) (*RunResult, error) {
	snapshot := st.Clone()

	feeds, err := selectFeeds(snapshot, selector)
	if err != nil {
		return nil, err
	}

	pending := make([]*FetchFeedTask, len(feeds))
	for i, f := range feeds {
		task := NewFetchFeedTask(taskType, f, o.source, o.filterer, snapshot.ReadItems, opts, o.maxRetries)
		task.index = i
		pending[i] = task
	}

	done := o.dispatch(ctx, pending)

	result := &RunResult{Feeds: make([]FeedResult, len(pending))}
	for i, task := range pending {
		if !done[i] {
			task.fail(cancellationCause(ctx))
		}
		result.Feeds[i] = task.Result
	}

	for _, fr := range result.Feeds {
		result.Marked += st.ReadItems.Merge(fr.NewlyRead)
	}

	slog.Debug("Run finished",
		"type", string(taskType),
		"feeds", len(result.Feeds),
		"failed", result.Failed(),
		"marked", result.Marked)

	if result.Marked == 0 {
		return result, nil
	}

	if err := o.store.Save(st); err != nil {
		return result, fmt.Errorf("failed to save state to %s: %w", o.store.Path(), err)
	}
	result.Saved = true

	return result, nil
}

// dispatch feeds the tasks to the worker pool and reports which of them
// ran to completion. Tasks left in the queue after ctx is cancelled are
// reported as not done.
func (o *Orchestrator) dispatch(ctx context.Context, pending []*FetchFeedTask) []bool {
	done := make([]bool, len(pending))
	if len(pending) == 0 {
		return done
	}

	taskQueue := make(chan *FetchFeedTask)
	results := make(chan *FetchFeedTask, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < min(o.workerCount, len(pending)); i++ {
		wg.Add(1)
		go o.worker(ctx, i, taskQueue, results, &wg)
	}

	go func() {
		defer close(taskQueue)
		for _, task := range pending {
			select {
			case taskQueue <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for task := range results {
		done[task.index] = true
	}

	return done
}

func (o *Orchestrator) worker(ctx context.Context, id int, taskQueue <-chan *FetchFeedTask, results chan<- *FetchFeedTask, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range taskQueue {
		if err := o.executeTask(ctx, id, task); err != nil {
			task.fail(err)
		}
		results <- task
	}
}

func (o *Orchestrator) executeTask(ctx context.Context, workerID int, task TaskInterface) error {
	for {
		task.Start()

		taskCtx, cancel := o.taskContext(ctx)
		err := task.Execute(taskCtx)
		cancel()

		if err == nil {
			return nil
		}

		if ctx.Err() != nil || !task.CanRetry() {
			slog.Warn("Feed task failed",
				"worker_id", workerID,
				"type", string(task.GetType()),
				"id", task.GetID(),
				"feed", task.GetFeedName(),
				"retry_count", task.GetRetryCount(),
				"error", err)
			return err
		}

		task.IncrementRetryCount()
		delay := o.backoff(task.GetRetryCount())

		slog.Warn("Task retry scheduled",
			"type", string(task.GetType()),
			"feed", task.GetFeedName(),
			"retry_count", task.GetRetryCount(),
			"max_retries", task.GetMaxRetries(),
			"delay", delay.String(),
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

func (o *Orchestrator) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) backoff(retry int) time.Duration {
	delay := o.retryDelay << uint(retry-1)
	if delay <= 0 || delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

func selectFeeds(st *state.State, selector string) ([]state.Feed, error) {
	if selector == "" {
		return st.Feeds, nil
	}

	f, ok := st.FindFeed(selector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", state.ErrFeedNotFound, selector)
	}
	return []state.Feed{f}, nil
}

func cancellationCause(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return context.Canceled
	}
	return err
}
