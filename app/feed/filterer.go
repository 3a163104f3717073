package feed

import (
	"fmt"
	"log/slog"
	"strings"
)

var filterFields = map[string]bool{
	"title":       true,
	"description": true,
	"content":     true,
	"authors":     true,
	"link":        true,
	"categories":  true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the items that pass every filter, in their original order,
// and the number of items that were dropped.
func (f *Filterer) Run(items []Item, filters []Filter) ([]Item, int) {
	if len(filters) == 0 {
		return items, 0
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if reason := f.Reason(item, filters); reason != "" {
			slog.Debug("Item filtered", "title", item.Title, "link", item.Link, "reason", reason)
			continue
		}
		kept = append(kept, item)
	}

	return kept, len(items) - len(kept)
}

// Reason explains why the item is excluded, or returns "" when it passes.
func (f *Filterer) Reason(item Item, filters []Filter) string {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "description":
		return item.Description
	case "content":
		return item.Content
	case "authors":
		return strings.Join(item.Authors, " ")
	case "link":
		return item.Link
	case "categories":
		return strings.Join(item.Categories, " ")
	default:
		return ""
	}
}

// ValidateFilters rejects unknown fields and filters without any rule.
func ValidateFilters(filters []Filter) error {
	for i, filter := range filters {
		if !filterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}
	return nil
}
