package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-reader/app/api"
)

type serveCommand struct {
	Port    string `short:"p" long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseURL string `long:"base-url" env:"BASE_URL" description:"Public base URL used in feed self links (default: http://localhost:<port>)"`
	APIKey  string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for /api endpoints (optional)"`

	app *App
}

func (c *serveCommand) Execute(args []string) error {
	if err := noExtraArgs(args); err != nil {
		return err
	}

	a := c.app
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + c.Port
	}

	handler := api.NewHandler(a.store, a.orchestrator(), baseURL, a.cfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, c.APIKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port, "state", a.store.Path())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	fmt.Fprintf(a.stdout, "Serving feeds on %s/feeds/<name> (Ctrl+C to stop)\n", baseURL)

	select {
	case <-a.ctx.Done():
		slog.Info("Shutdown requested")
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
