package cli

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/reconcile"
	"github.com/lysyi3m/rss-reader/app/state"
	"github.com/lysyi3m/rss-reader/app/tasks"
)

var separator = strings.Repeat("-", 50)

func renderFeedList(w io.Writer, feeds []state.Feed) {
	if len(feeds) == 0 {
		fmt.Fprintln(w, "No feeds configured")
		return
	}

	fmt.Fprintln(w, "\nConfigured Feeds:")
	fmt.Fprintln(w, separator)
	for i, f := range feeds {
		fmt.Fprintf(w, "%d. %s\n", i+1, f.Name)
		fmt.Fprintf(w, "   URL: %s\n", f.URL)
		fmt.Fprintf(w, "   Added: %s\n", formatAdded(f.Added))
	}
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Total: %d feeds\n", len(feeds))
}

func formatAdded(ts state.Timestamp) string {
	if ts.IsZero() {
		return "unknown"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

func renderFeedResult(w io.Writer, fr tasks.FeedResult) {
	fmt.Fprintf(w, "\n=== %s ===\n\n", fr.Feed.Name)

	switch {
	case fr.Err != nil:
		fmt.Fprintf(w, "Error reading feed %s: %v\n", fr.Feed.Name, feedCause(fr.Err))
		return
	case fr.Fetched == 0:
		fmt.Fprintln(w, "No items found in feed")
		return
	}

	for _, item := range fr.Items {
		renderItem(w, item)
	}
}

func renderItem(w io.Writer, item reconcile.DisplayItem) {
	status := "[New]"
	if item.Read {
		status = "[Read]"
	}

	fmt.Fprintf(w, "%d. %s %s\n", item.Position, status, cmp.Or(item.Title, "No title"))
	fmt.Fprintf(w, "   Date: %s\n", item.DateText())
	fmt.Fprintf(w, "   Link: %s\n", cmp.Or(item.Link, "No link"))

	if summary := feed.Summarize(item.Summary()); summary != "" {
		fmt.Fprintf(w, "   Summary: %s\n", summary)
	}

	fmt.Fprintln(w)
}
