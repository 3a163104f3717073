package cfg

import "time"

// Options are the global flags shared by every command. Each can also be
// set through its environment variable.
type Options struct {
	Config    string `short:"c" long:"config" env:"RSS_READER_CONFIG" description:"Path to the state file (default: ~/.rss_reader.json; .db/.sqlite selects SQLite)"`
	Workers   int    `long:"workers" env:"RSS_READER_WORKERS" default:"4" description:"Number of feeds fetched concurrently"`
	Timeout   int    `long:"timeout" env:"RSS_READER_TIMEOUT" default:"30" description:"Per-feed fetch timeout in seconds (0 disables)"`
	Retries   int    `long:"retries" env:"RSS_READER_RETRIES" default:"0" description:"Retries for a failed feed fetch"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Reader/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" description:"Timezone for displayed timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

type Cfg struct {
	ConfigPath   string
	WorkerCount  int
	FetchTimeout time.Duration
	MaxRetries   int
	UserAgent    string
	Timezone     string
	Debug        bool
	Version      string
}
