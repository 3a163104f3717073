package state

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subscription is one entry of a portable subscription list.
type Subscription struct {
	Name string `yaml:"name,omitempty"`
	URL  string `yaml:"url"`
}

type subscriptionList struct {
	Feeds []Subscription `yaml:"feeds"`
}

func ExportSubscriptions(w io.Writer, feeds []Feed) error {
	list := subscriptionList{Feeds: make([]Subscription, 0, len(feeds))}
	for _, f := range feeds {
		list.Feeds = append(list.Feeds, Subscription{Name: f.Name, URL: f.URL})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}
	return enc.Close()
}

func ImportSubscriptions(r io.Reader) ([]Subscription, error) {
	var list subscriptionList
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse subscriptions: %w", err)
	}

	for i := range list.Feeds {
		list.Feeds[i].Name = strings.TrimSpace(list.Feeds[i].Name)
		list.Feeds[i].URL = strings.TrimSpace(list.Feeds[i].URL)
		if list.Feeds[i].URL == "" {
			return nil, fmt.Errorf("subscription at index %d has no url", i)
		}
	}

	return list.Feeds, nil
}
