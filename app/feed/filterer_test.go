package feed

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Test Item 1", Description: "Test description"},
		{Title: "Test Item 2", Description: "Another description"},
	}

	result, dropped := filterer.Run(items, nil)

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}
	if dropped != 0 {
		t.Errorf("Expected nothing dropped, got %d", dropped)
	}
}

func TestFilterer_TitleIncludeFilter(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Breaking News: Important Update"},
		{Title: "Sports Update"},
		{Title: "Weather Report"},
	}

	filters := []Filter{
		{Field: "title", Includes: []string{"news", "update"}},
	}

	result, dropped := filterer.Run(items, filters)

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if dropped != 1 {
		t.Errorf("Expected 1 dropped item, got %d", dropped)
	}
	if result[0].Title != "Breaking News: Important Update" || result[1].Title != "Sports Update" {
		t.Errorf("Expected original order to be kept, got %q, %q", result[0].Title, result[1].Title)
	}
}

func TestFilterer_TitleExcludeFilter(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Breaking News"},
		{Title: "Sports Update"},
		{Title: "Advertisement: Buy Now!"},
	}

	filters := []Filter{
		{Field: "title", Excludes: []string{"advertisement"}},
	}

	result, _ := filterer.Run(items, filters)

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	for _, item := range result {
		if item.Title == "Advertisement: Buy Now!" {
			t.Error("Expected advertisement to be excluded")
		}
	}
}

func TestFilterer_ExcludeWinsOverInclude(t *testing.T) {
	filterer := NewFilterer()

	item := Item{Title: "Go release notes (sponsored)"}
	filters := []Filter{
		{Field: "title", Includes: []string{"go"}, Excludes: []string{"sponsored"}},
	}

	reason := filterer.Reason(item, filters)
	if reason == "" {
		t.Fatal("Expected item to be excluded")
	}
	if reason != "Excluded by title filter: contains 'sponsored'" {
		t.Errorf("Unexpected reason: %s", reason)
	}
}

func TestFilterer_LogsReasonForDroppedItems(t *testing.T) {
	var buf bytes.Buffer
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(original) })

	items := []Item{{Title: "Weekly deals (sponsored)"}, {Title: "Go 1.24"}}
	filters := []Filter{{Field: "title", Excludes: []string{"sponsored"}}}

	result, dropped := NewFilterer().Run(items, filters)
	if len(result) != 1 || dropped != 1 {
		t.Fatalf("Expected 1 kept and 1 dropped, got %d / %d", len(result), dropped)
	}

	out := buf.String()
	if !strings.Contains(out, "Item filtered") || !strings.Contains(out, "contains 'sponsored'") {
		t.Errorf("Expected debug line with filter reason, got %q", out)
	}
	if strings.Contains(out, "Go 1.24") {
		t.Errorf("Expected kept item not to be logged, got %q", out)
	}
}

func TestFilterer_AuthorsAndCategories(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "a", Authors: []string{"alice@example.com (Alice)"}, Categories: []string{"Go"}},
		{Title: "b", Authors: []string{"Bob"}, Categories: []string{"Rust"}},
	}

	result, _ := filterer.Run(items, []Filter{{Field: "authors", Includes: []string{"alice"}}})
	if len(result) != 1 || result[0].Title != "a" {
		t.Errorf("Expected only Alice's item, got %+v", result)
	}

	result, _ = filterer.Run(items, []Filter{{Field: "categories", Excludes: []string{"go"}}})
	if len(result) != 1 || result[0].Title != "b" {
		t.Errorf("Expected only the Rust item, got %+v", result)
	}
}

func TestValidateFilters(t *testing.T) {
	if err := ValidateFilters([]Filter{{Field: "title", Includes: []string{"x"}}}); err != nil {
		t.Errorf("Expected valid filter, got: %v", err)
	}
	if err := ValidateFilters([]Filter{{Field: "body", Includes: []string{"x"}}}); err == nil {
		t.Error("Expected error for unknown field")
	}
	if err := ValidateFilters([]Filter{{Field: "title"}}); err == nil {
		t.Error("Expected error for filter without rules")
	}
}
