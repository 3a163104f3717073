package cfg

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultConfigName = ".rss_reader.json"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// New validates the parsed options and resolves them into a Cfg.
func New(opts Options) (*Cfg, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("invalid worker count %d: must be at least 1", opts.Workers)
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %d: must not be negative", opts.Timeout)
	}
	if opts.Retries < 0 {
		return nil, fmt.Errorf("invalid retries %d: must not be negative", opts.Retries)
	}

	path, err := resolveConfigPath(opts.Config)
	if err != nil {
		return nil, err
	}

	cfg := &Cfg{
		ConfigPath:   path,
		WorkerCount:  opts.Workers,
		FetchTimeout: time.Duration(opts.Timeout) * time.Second,
		MaxRetries:   opts.Retries,
		UserAgent:    opts.UserAgent,
		Timezone:     opts.Timezone,
		Debug:        opts.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// SetupLogger installs the default slog logger writing text records to w.
func SetupLogger(w io.Writer, debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigName), nil
}

func resolveConfigPath(path string) (string, error) {
	if path == "" {
		return DefaultConfigPath()
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}

	return path, nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	slog.Debug("Timezone configured", "timezone", timezone)
	return nil
}
