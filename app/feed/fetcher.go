package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
)

const MaxFeedSize = 10 << 20

var _ Source = (*Fetcher)(nil)

// Fetcher retrieves feed documents over HTTP(S) or from the local
// filesystem and hands them to the Parser.
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	maxBytes   int64
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if parser == nil {
		parser = NewParser()
	}
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		maxBytes:   MaxFeedSize,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*Metadata, []Item, error) {
	data, err := f.fetch(ctx, feedURL)
	if err != nil {
		return nil, nil, err
	}

	metadata, items, err := f.parser.Run(data)
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("Feed fetched", "url", feedURL, "title", metadata.Title, "items", len(items))
	return metadata, items, nil
}

func (f *Fetcher) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, feedURL)
	case "file":
		return f.readFile(ctx, u.Path)
	case "":
		return f.readFile(ctx, feedURL)
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("feed exceeds %d bytes", f.maxBytes)
	}

	return data, nil
}

func (f *Fetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}
	return data, nil
}
