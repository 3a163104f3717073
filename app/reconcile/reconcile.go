package reconcile

import (
	"cmp"
	"slices"
	"time"

	"github.com/lysyi3m/rss-reader/app/feed"
)

// Lookup is the read-only view of the read history.
type Lookup interface {
	Contains(id string) bool
}

type Options struct {
	MaxItems int
	ShowRead bool
	MarkRead bool
}

type DisplayItem struct {
	feed.Item
	Identity string
	Position int // 1-based position in the date-sorted feed
	Read     bool
}

type Result struct {
	Items     []DisplayItem
	NewlyRead []string
	Scanned   int
}

// Identity derives the key an item is remembered by. Items carrying neither
// a GUID nor a link share the key "<feedURL>:".
func Identity(feedURL string, item feed.Item) string {
	return feedURL + ":" + cmp.Or(item.GUID, item.Link)
}

// Reconcile orders items newest first and partitions them against read.
// Seen items are skipped unless ShowRead is set, and the MaxItems limit
// counts displayed items only. With MarkRead every displayed item not
// already in read is returned in NewlyRead. read is never modified.
func Reconcile(read Lookup, feedURL string, items []feed.Item, opts Options) Result {
	var result Result
	if opts.MaxItems <= 0 {
		return result
	}

	marked := make(map[string]struct{})
	for i, item := range sortByDate(items) {
		if len(result.Items) >= opts.MaxItems {
			break
		}
		result.Scanned++

		id := Identity(feedURL, item)
		seen := read.Contains(id)
		if seen && !opts.ShowRead {
			continue
		}

		result.Items = append(result.Items, DisplayItem{
			Item:     item,
			Identity: id,
			Position: i + 1,
			Read:     seen,
		})

		if opts.MarkRead && !seen {
			if _, ok := marked[id]; !ok {
				marked[id] = struct{}{}
				result.NewlyRead = append(result.NewlyRead, id)
			}
		}
	}

	return result
}

// MarkAll returns the identity of every item not yet in read, in feed order
// and without limit.
func MarkAll(read Lookup, feedURL string, items []feed.Item) []string {
	var ids []string
	marked := make(map[string]struct{})
	for _, item := range items {
		id := Identity(feedURL, item)
		if read.Contains(id) {
			continue
		}
		if _, ok := marked[id]; ok {
			continue
		}
		marked[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func sortKey(item feed.Item) *time.Time {
	if item.PublishedAt != nil {
		return item.PublishedAt
	}
	return item.UpdatedAt
}

// sortByDate returns a copy of items, most recent first. Undated items
// sort last and keep their fetch order.
func sortByDate(items []feed.Item) []feed.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b feed.Item) int {
		ka, kb := sortKey(a), sortKey(b)
		switch {
		case ka == nil && kb == nil:
			return 0
		case ka == nil:
			return 1
		case kb == nil:
			return -1
		default:
			return kb.Compare(*ka)
		}
	})
	return sorted
}
