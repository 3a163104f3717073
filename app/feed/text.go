package feed

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const (
	SummaryWidth = 70
	SummaryLimit = 300
)

// StripHTML returns the text content of an HTML fragment with entities
// decoded. Script and style bodies are dropped.
func StripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// PlainText strips markup, collapses whitespace and normalizes to NFC.
func PlainText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(StripHTML(s)), " "))
}

// Summarize renders an HTML summary as wrapped plain text of at most
// SummaryLimit runes.
func Summarize(s string) string {
	text := PlainText(s)
	if text == "" {
		return ""
	}
	return Truncate(wordwrap.WrapString(text, SummaryWidth), SummaryLimit)
}

// Truncate shortens s to maxLen runes, ending with "..." when cut.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
