package state

import (
	"bytes"
	"strings"
	"testing"
)

func TestExportImportSubscriptions(t *testing.T) {
	feeds := []Feed{
		{Name: "Go Blog", URL: "https://go.dev/blog/feed.atom"},
		{Name: "News", URL: "https://news.example/rss"},
	}

	var buf bytes.Buffer
	if err := ExportSubscriptions(&buf, feeds); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "feeds:\n") {
		t.Errorf("Expected top-level feeds key, got:\n%s", out)
	}
	if !strings.Contains(out, "url: https://go.dev/blog/feed.atom") {
		t.Errorf("Expected feed url in output, got:\n%s", out)
	}

	subs, err := ImportSubscriptions(&buf)
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 subscriptions, got %d", len(subs))
	}
	if subs[0].Name != "Go Blog" || subs[1].URL != "https://news.example/rss" {
		t.Errorf("Unexpected subscriptions: %+v", subs)
	}
}

func TestImportSubscriptionsWithoutNames(t *testing.T) {
	input := `feeds:
  - url: https://a.example/feed
  - url: https://b.example/feed
    name: B
`
	subs, err := ImportSubscriptions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(subs) != 2 || subs[0].Name != "" || subs[1].Name != "B" {
		t.Errorf("Unexpected subscriptions: %+v", subs)
	}
}

func TestImportSubscriptionsEmpty(t *testing.T) {
	subs, err := ImportSubscriptions(strings.NewReader(""))
	if err != nil || len(subs) != 0 {
		t.Errorf("Expected empty result, got %+v / %v", subs, err)
	}
}

func TestImportSubscriptionsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing url": "feeds:\n  - name: nameless\n",
		"bad yaml":    "feeds: [unclosed\n",
		"blank url":   "feeds:\n  - name: blank\n    url: \"   \"\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ImportSubscriptions(strings.NewReader(input)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
