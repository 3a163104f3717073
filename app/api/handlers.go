package api

import (
	"cmp"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/reconcile"
	"github.com/lysyi3m/rss-reader/app/state"
	"github.com/lysyi3m/rss-reader/app/tasks"
)

const (
	defaultMaxItems = 10
	feedMaxItems    = 50
)

func NewHandler(store state.Store, runner tasks.FeedRunner, baseURL, version string) *Handler {
	return &Handler{
		store:     store,
		runner:    runner,
		generator: feed.NewGenerator(),
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		version:   version,
	}
}

// loadState returns the current state. A corrupted record is replaced by an
// empty state, as on the command line.
func (h *Handler) loadState() (*state.State, error) {
	st, err := h.store.Load()
	if errors.Is(err, state.ErrCorrupt) {
		slog.Warn("Continuing with empty state", "path", h.store.Path(), "error", err)
		return st, nil
	}
	return st, err
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.loadState()
	if err != nil {
		slog.Error("State error", "operation", "load", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	result, err := h.runner.Read(c.Request.Context(), st, name, tasks.ReadOptions{MaxItems: feedMaxItems})
	if errors.Is(err, state.ErrFeedNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Feed read error", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	fr := result.Feeds[0]
	if fr.Err != nil {
		slog.Error("Feed fetch error", "feed", name, "error", fr.Err)
		c.Status(http.StatusBadGateway)
		return
	}

	items := make([]feed.Item, len(fr.Items))
	for i, item := range fr.Items {
		items[i] = item.Item
	}

	rss, err := h.generator.Run(feed.Channel{
		Title:     cmp.Or(fr.Title, fr.Feed.Name),
		Link:      fr.Feed.URL,
		SelfLink:  h.baseURL + "/feeds/" + name,
		Generator: "RSS Reader/" + h.version,
	}, items)
	if err != nil {
		slog.Error("RSS generation error", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Header("X-Feed-Name", name)

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	h.mu.Lock()
	st, err := h.loadState()
	h.mu.Unlock()

	if err != nil {
		health["status"] = "error"
		health["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	health["feeds"] = len(st.Feeds)
	health["read_items"] = st.ReadItems.Len()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	h.mu.Lock()
	st, err := h.loadState()
	h.mu.Unlock()

	if err != nil {
		slog.Error("State error", "operation", "load", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load state"})
		return
	}

	feeds := make([]FeedResponse, 0, len(st.Feeds))
	for _, f := range st.Feeds {
		feeds = append(feeds, FeedResponse{Name: f.Name, URL: f.URL, Added: f.Added.String()})
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIGetFeedItems(c *gin.Context) {
	name := c.Param("name")

	maxItems := defaultMaxItems
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		maxItems = n
	}

	opts := tasks.ReadOptions{
		MaxItems: maxItems,
		ShowRead: queryBool(c, "all"),
		MarkRead: queryBool(c, "mark"),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.loadState()
	if err != nil {
		slog.Error("State error", "operation", "load", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load state"})
		return
	}

	result, err := h.runner.Read(c.Request.Context(), st, name, opts)
	if errors.Is(err, state.ErrFeedNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}
	if err != nil && result == nil {
		slog.Error("Feed read error", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read feed"})
		return
	}

	fr := result.Feeds[0]
	if fr.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch feed",
			"details": fr.Err.Error(),
		})
		return
	}
	if err != nil {
		slog.Error("State error", "operation", "save", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save state"})
		return
	}

	items := make([]ItemResponse, 0, len(fr.Items))
	for _, item := range fr.Items {
		items = append(items, toItemResponse(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    FeedResponse{Name: fr.Feed.Name, URL: fr.Feed.URL, Added: fr.Feed.Added.String()},
		"title":   fr.Title,
		"fetched": fr.Fetched,
		"items":   items,
		"marked":  result.Marked,
	})
}

func (h *Handler) APIMarkFeedRead(c *gin.Context) {
	name := c.Param("name")

	h.mu.Lock()
	defer h.mu.Unlock()

	st, err := h.loadState()
	if err != nil {
		slog.Error("State error", "operation", "load", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load state"})
		return
	}

	result, err := h.runner.MarkAllRead(c.Request.Context(), st, name, nil)
	if errors.Is(err, state.ErrFeedNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}
	if err != nil {
		slog.Error("Mark read error", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to mark feed as read",
			"details": err.Error(),
		})
		return
	}

	if fr := result.Feeds[0]; fr.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to fetch feed",
			"details": fr.Err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"feed":    name,
		"marked":  result.Marked,
	})
}

func toItemResponse(item reconcile.DisplayItem) ItemResponse {
	return ItemResponse{
		Position: item.Position,
		Identity: item.Identity,
		Title:    item.Title,
		Link:     item.Link,
		Date:     item.DateText(),
		Summary:  feed.Truncate(feed.PlainText(item.Summary()), feed.SummaryLimit),
		Authors:  item.Authors,
		Read:     item.Read,
	}
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
