package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/state"
	"github.com/lysyi3m/rss-reader/app/tasks"
)

type addCommand struct {
	Name string `short:"n" long:"name" description:"Name for the feed (default: feed title)"`
	Args struct {
		URL string `positional-arg-name:"url" description:"URL of the RSS feed"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *addCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	if _, err := state.Subscribe(a.ctx, st, a.source(), c.Args.URL, c.Name); err != nil {
		if errors.Is(err, state.ErrDuplicateFeed) {
			existing, _ := st.FeedByURL(c.Args.URL)
			fmt.Fprintf(a.stdout, "Feed already exists: %s\n", existing.Name)
		} else {
			fmt.Fprintf(a.stdout, "Error parsing feed: %v\n", err)
		}
		return errReported
	}

	if err := a.saveState(st); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Feed added successfully")
	return nil
}

type removeCommand struct {
	Args struct {
		Name string `positional-arg-name:"name" description:"Name of the feed to remove"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *removeCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	if _, err := st.RemoveFeed(c.Args.Name); err != nil {
		fmt.Fprintf(a.stdout, "Feed not found: %s\n", c.Args.Name)
		return errReported
	}

	if err := a.saveState(st); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Feed removed: %s\n", c.Args.Name)
	return nil
}

type listCommand struct {
	app *App
}

func (c *listCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	renderFeedList(a.stdout, st.Feeds)
	return nil
}

// FilterOptions restricts read and mark-read to items matching keywords.
type FilterOptions struct {
	Include     []string `long:"include" value-name:"KEYWORD" description:"Only keep items containing the keyword (repeatable)"`
	Exclude     []string `long:"exclude" value-name:"KEYWORD" description:"Drop items containing the keyword (repeatable)"`
	FilterField string   `long:"filter-field" default:"title" choice:"title" choice:"description" choice:"content" choice:"authors" choice:"link" choice:"categories" description:"Item field the keywords are matched against"`
}

func (o FilterOptions) filters() ([]feed.Filter, error) {
	if len(o.Include) == 0 && len(o.Exclude) == 0 {
		return nil, nil
	}

	filters := []feed.Filter{{Field: o.FilterField, Includes: o.Include, Excludes: o.Exclude}}
	if err := feed.ValidateFilters(filters); err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	return filters, nil
}

type readCommand struct {
	Max      int  `short:"m" long:"max" default:"10" description:"Maximum number of items to show"`
	All      bool `short:"a" long:"all" description:"Show already read items"`
	MarkRead bool `short:"r" long:"mark-read" description:"Mark displayed items as read"`
	FilterOptions
	Args struct {
		Feed string `positional-arg-name:"feed" description:"Name of the feed to read (default: all feeds)"`
	} `positional-args:"yes"`

	app *App
}

func (c *readCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}
	if c.Max < 1 {
		return &usageError{msg: fmt.Sprintf("invalid --max %d: must be at least 1", c.Max)}
	}

	filters, err := c.filters()
	if err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	if len(st.Feeds) == 0 {
		fmt.Fprintln(a.stdout, "No feeds configured")
		return nil
	}

	result, err := a.orchestrator().Read(a.ctx, st, c.Args.Feed, tasks.ReadOptions{
		MaxItems: c.Max,
		ShowRead: c.All,
		MarkRead: c.MarkRead,
		Filters:  filters,
	})
	if errors.Is(err, state.ErrFeedNotFound) {
		fmt.Fprintf(a.stdout, "Feed not found: %s\n", c.Args.Feed)
		return errReported
	}
	if result == nil {
		return err
	}

	for _, fr := range result.Feeds {
		renderFeedResult(a.stdout, fr)
	}

	if err != nil {
		fmt.Fprintf(a.stdout, "Error saving configuration: %v\n", err)
		return errReported
	}
	if result.AllFailed() {
		return errReported
	}
	return nil
}

type markReadCommand struct {
	FilterOptions
	Args struct {
		Feed string `positional-arg-name:"feed" description:"Name of the feed to mark (default: all feeds)"`
	} `positional-args:"yes"`

	app *App
}

func (c *markReadCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	filters, err := c.filters()
	if err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	if len(st.Feeds) == 0 {
		fmt.Fprintln(a.stdout, "No feeds configured")
		return nil
	}

	result, err := a.orchestrator().MarkAllRead(a.ctx, st, c.Args.Feed, filters)
	if errors.Is(err, state.ErrFeedNotFound) {
		fmt.Fprintf(a.stdout, "Feed not found: %s\n", c.Args.Feed)
		return errReported
	}
	if result == nil {
		return err
	}

	for _, fr := range result.Feeds {
		if fr.Err != nil {
			fmt.Fprintf(a.stdout, "Error marking feed %s: %v\n", fr.Feed.Name, feedCause(fr.Err))
		}
	}

	if err != nil {
		fmt.Fprintf(a.stdout, "Error saving configuration: %v\n", err)
		return errReported
	}

	if result.Marked > 0 {
		fmt.Fprintf(a.stdout, "Marked %d items as read\n", result.Marked)
	} else {
		fmt.Fprintln(a.stdout, "No new items to mark as read")
	}

	if result.AllFailed() {
		return errReported
	}
	return nil
}

type clearHistoryCommand struct {
	app *App
}

func (c *clearHistoryCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	if st.ReadItems.Len() == 0 {
		fmt.Fprintln(a.stdout, "Read history is already empty")
		return nil
	}

	count := st.ClearHistory()
	if err := a.saveState(st); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Cleared %d items from read history\n", count)
	return nil
}

type exportCommand struct {
	Output string `short:"o" long:"output" description:"Write to a file instead of stdout"`

	app *App
}

func (c *exportCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	if c.Output == "" {
		return state.ExportSubscriptions(a.stdout, st.Feeds)
	}

	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := state.ExportSubscriptions(f, st.Feeds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}

	fmt.Fprintf(a.stdout, "Exported %d feeds to %s\n", len(st.Feeds), c.Output)
	return nil
}

type importCommand struct {
	Args struct {
		File string `positional-arg-name:"file" description:"YAML subscription list"`
	} `positional-args:"yes" required:"yes"`

	app *App
}

func (c *importCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	f, err := os.Open(c.Args.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.Args.File, err)
	}
	defer f.Close()

	subs, err := state.ImportSubscriptions(f)
	if err != nil {
		return err
	}

	a := c.app
	st, err := a.loadState()
	if err != nil {
		return err
	}

	added := 0
	for _, sub := range subs {
		newFeed := state.Feed{Name: sub.Name, URL: sub.URL, Added: state.Now()}
		if newFeed.Name == "" {
			newFeed.Name = sub.URL
		}
		if err := st.AddFeed(newFeed); err != nil {
			if errors.Is(err, state.ErrDuplicateFeed) {
				existing, _ := st.FeedByURL(sub.URL)
				fmt.Fprintf(a.stdout, "Feed already exists: %s\n", existing.Name)
			} else {
				fmt.Fprintf(a.stdout, "Error importing feed %s: %v\n", sub.URL, err)
			}
			continue
		}
		added++
	}

	if added > 0 {
		if err := a.saveState(st); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.stdout, "Imported %d of %d feeds\n", added, len(subs))
	return nil
}

// feedCause strips the feed prefix from a per-feed error.
func feedCause(err error) error {
	var feedErr *tasks.FeedError
	if errors.As(err, &feedErr) {
		return feedErr.Err
	}
	return err
}
