package api

import (
	"sync"

	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/state"
	"github.com/lysyi3m/rss-reader/app/tasks"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, items []feed.Item) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

// Handler serves the HTTP surface. Every request loads the state, operates
// on it and saves it under mu, so there is a single writer per process.
type Handler struct {
	mu        sync.Mutex
	store     state.Store
	runner    tasks.FeedRunner
	generator GeneratorInterface
	baseURL   string
	version   string
}

type FeedResponse struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Added string `json:"added"`
}

type ItemResponse struct {
	Position int      `json:"position"`
	Identity string   `json:"identity"`
	Title    string   `json:"title"`
	Link     string   `json:"link"`
	Date     string   `json:"date,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Authors  []string `json:"authors,omitempty"`
	Read     bool     `json:"read"`
}
