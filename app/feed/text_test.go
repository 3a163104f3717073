package feed

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello world", "hello world"},
		{"tags", "<p>Hello <b>bold</b> world</p>", "Hello bold world"},
		{"entities", "Fish &amp; chips &lt;3", "Fish & chips <3"},
		{"script dropped", "<p>keep</p><script>var x = 1;</script><style>p{}</style>", "keep"},
		{"unclosed", "<div>broken <span>markup", "broken markup"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.expected {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPlainTextCollapsesWhitespace(t *testing.T) {
	got := PlainText("<p>one\n\n   two</p>\t<p>three</p>")
	if got != "one two three" {
		t.Errorf("Expected collapsed whitespace, got %q", got)
	}
}

func TestPlainTextNormalizesUnicode(t *testing.T) {
	decomposed := "Cafe\u0301"
	if got := PlainText(decomposed); got != "Caf\u00e9" {
		t.Errorf("Expected NFC form, got %q", got)
	}
}

func TestSummarizeWrapsAndTruncates(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 200) + "</p>"
	got := Summarize(long)

	if utf8.RuneCountInString(got) != SummaryLimit {
		t.Errorf("Expected %d runes, got %d", SummaryLimit, utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated summary to end with ellipsis")
	}
	for _, line := range strings.Split(got, "\n") {
		if len(line) > SummaryWidth {
			t.Errorf("Line exceeds wrap width: %q", line)
		}
	}
}

func TestSummarizeShortText(t *testing.T) {
	if got := Summarize("<em>short</em>"); got != "short" {
		t.Errorf("Expected 'short', got %q", got)
	}
	if got := Summarize("<br/>"); got != "" {
		t.Errorf("Expected empty summary, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 10); got != "héllo" {
		t.Errorf("Expected untouched string, got %q", got)
	}
	if got := Truncate("héllo wörld", 8); got != "héllo..." {
		t.Errorf("Expected rune-aware truncation, got %q", got)
	}
	if got := Truncate("abcdef", 2); got != "..." {
		t.Errorf("Expected bare ellipsis, got %q", got)
	}
}
