package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/rss-reader/app/cfg"
	"github.com/lysyi3m/rss-reader/app/feed"
	"github.com/lysyi3m/rss-reader/app/state"
	"github.com/lysyi3m/rss-reader/app/tasks"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// errReported marks a failure whose message was already written to stdout.
var errReported = errors.New("failure reported")

type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

// SourceFactory builds the fetch capability for a resolved configuration.
type SourceFactory func(c *cfg.Cfg) feed.Source

// App holds what every command shares: the global options, the output
// streams and the state store resolved before the command runs.
type App struct {
	Options cfg.Options

	ctx       context.Context
	stdout    io.Writer
	stderr    io.Writer
	newSource SourceFactory
	cfg       *cfg.Cfg
	store     state.Store
}

type Option func(*App)

// WithSourceFactory replaces the HTTP fetcher used by add, read and mark-read.
func WithSourceFactory(f SourceFactory) Option {
	return func(a *App) {
		a.newSource = f
	}
}

func defaultSource(c *cfg.Cfg) feed.Source {
	return feed.NewFetcher(&http.Client{}, feed.NewParser(), c.UserAgent)
}

// Run parses args, executes the selected command and returns the process
// exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...Option) int {
	app := &App{
		ctx:       ctx,
		stdout:    stdout,
		stderr:    stderr,
		newSource: defaultSource,
	}
	for _, opt := range opts {
		opt(app)
	}

	parser, err := app.newParser()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFailure
	}

	_, err = parser.ParseArgs(args)
	if err == nil {
		if parser.Active == nil {
			parser.WriteHelp(stdout)
		}
		return ExitOK
	}

	var flagsErr *flags.Error
	var usageErr *usageError
	switch {
	case errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp:
		fmt.Fprintln(stdout, flagsErr.Message)
		return ExitOK
	case errors.As(err, &flagsErr), errors.As(err, &usageErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", parser.Name)
		return ExitUsage
	case errors.Is(err, errReported):
		return ExitFailure
	default:
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return ExitFailure
	}
}

func (a *App) newParser() (*flags.Parser, error) {
	parser := flags.NewParser(&a.Options, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "rss-reader"
	parser.ShortDescription = "Simple RSS Feed Reader"
	parser.SubcommandsOptional = true
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return noExtraArgs(args)
		}
		if err := a.setup(); err != nil {
			return err
		}
		return command.Execute(args)
	}

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"add", "Add a new RSS feed", "Fetch the feed once to validate it, then append it to the subscriptions.", &addCommand{app: a}},
		{"remove", "Remove an RSS feed", "Remove the first feed with the given name.", &removeCommand{app: a}},
		{"list", "List all configured feeds", "List the subscriptions in the order they were added.", &listCommand{app: a}},
		{"read", "Read items from feeds", "Show unread items, newest first, from one feed or all feeds.", &readCommand{app: a}},
		{"mark-read", "Mark all items in feeds as read", "Add every currently published item to the read history.", &markReadCommand{app: a}},
		{"clear-history", "Clear read items history", "Forget every item in the read history.", &clearHistoryCommand{app: a}},
		{"export", "Export subscriptions as YAML", "Write the subscription list as YAML to stdout or a file.", &exportCommand{app: a}},
		{"import", "Import subscriptions from YAML", "Add feeds from a YAML subscription list. Known URLs are skipped.", &importCommand{app: a}},
		{"serve", "Serve feeds over HTTP", "Serve unread items as RSS and a JSON API over the same state.", &serveCommand{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			return nil, fmt.Errorf("failed to register command %s: %w", c.name, err)
		}
	}

	return parser, nil
}

func (a *App) setup() error {
	c, err := cfg.New(a.Options)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	cfg.SetupLogger(a.stderr, c.Debug)

	a.cfg = c
	a.store = state.Open(c.ConfigPath)
	return nil
}

// loadState reads the store. A corrupted record is reported and replaced
// by an empty state; any other failure aborts the command.
func (a *App) loadState() (*state.State, error) {
	st, err := a.store.Load()
	if errors.Is(err, state.ErrCorrupt) {
		fmt.Fprintf(a.stdout, "Warning: %s is corrupted, starting with an empty state\n", a.store.Path())
		return st, nil
	}
	return st, err
}

func (a *App) saveState(st *state.State) error {
	if err := a.store.Save(st); err != nil {
		fmt.Fprintf(a.stdout, "Error saving configuration: %v\n", err)
		return errReported
	}
	return nil
}

func (a *App) source() feed.Source {
	return a.newSource(a.cfg)
}

func (a *App) orchestrator() *tasks.Orchestrator {
	return tasks.NewOrchestrator(a.source(), a.store, a.cfg.WorkerCount, a.cfg.FetchTimeout, a.cfg.MaxRetries)
}

func noExtraArgs(args []string) error {
	if len(args) > 0 {
		return &usageError{msg: fmt.Sprintf("unexpected arguments: %v", args)}
	}
	return nil
}
