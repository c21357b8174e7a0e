// Command pood tracks podcast feeds in local record files.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/tesso57/pood/internal/application/usecase"
	"github.com/tesso57/pood/internal/infrastructure/config"
	"github.com/tesso57/pood/internal/infrastructure/feed"
	"github.com/tesso57/pood/internal/infrastructure/journal"
	"github.com/tesso57/pood/internal/infrastructure/record"
	"github.com/tesso57/pood/internal/logging"
	"github.com/tesso57/pood/internal/presentation/cli"
)

var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config  string           `help:"Config file path." type:"path" placeholder:"PATH"`
	Dir     string           `help:"Directory holding podcast directories or the record to sync." default:"." type:"path"`
	Verbose bool             `help:"Log debug output to stderr." short:"v"`
	Version kong.VersionFlag `help:"Print version and exit."`
}

// CLI is the command grammar.
type CLI struct {
	Globals

	Info InfoCmd `cmd:"" help:"Print a feed's podcast and episodes without saving anything."`
	Add  AddCmd  `cmd:"" help:"Start tracking a podcast in a directory named after its title."`
	Sync SyncCmd `cmd:"" help:"Append episodes the record has not seen yet."`
	Log  LogCmd  `cmd:"" help:"Show recent add and sync runs."`
}

// InfoCmd prints a live feed.
type InfoCmd struct {
	URL string `arg:"" name:"feed-url" help:"Feed address."`
}

// Run executes the command.
func (c *InfoCmd) Run(ctx context.Context, a *app) error {
	pod, err := a.service.Info(ctx, c.URL)
	if err != nil {
		return err
	}
	a.out.Info(pod)
	return nil
}

// AddCmd creates a podcast directory and its record.
type AddCmd struct {
	URL        string `arg:"" name:"feed-url" help:"Feed address."`
	HeaderOnly bool   `help:"Write only the header so the first sync reports every episode."`
}

// Run executes the command.
func (c *AddCmd) Run(ctx context.Context, a *app) error {
	res, err := a.service.Add(ctx, c.URL, usecase.AddOptions{Root: a.dir, HeaderOnly: c.HeaderOnly})
	if err != nil {
		return err
	}
	a.out.Added(res)
	return nil
}

// SyncCmd reconciles the record in --dir against its feed.
type SyncCmd struct{}

// Run executes the command.
func (c *SyncCmd) Run(ctx context.Context, a *app) error {
	res, err := a.service.Sync(ctx, a.dir)
	if err != nil {
		return err
	}
	a.out.Synced(res)
	return nil
}

// LogCmd prints the run journal.
type LogCmd struct {
	Limit int `help:"Number of entries to show (0 for all)." default:"20" short:"n"`
}

// Run executes the command.
func (c *LogCmd) Run(ctx context.Context, a *app) error {
	entries, err := a.service.History(ctx, c.Limit)
	if err != nil {
		return err
	}
	a.out.History(entries, a.now())
	return nil
}

type app struct {
	service usecase.PodcastService
	out     *cli.Printer
	errOut  *cli.Printer
	logger  *slog.Logger
	dir     string
	now     func() time.Time
	close   func()
}

func newApp(g Globals, stdout, stderr io.Writer) (*app, error) {
	store, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	cfg := store.Settings

	level := cfg.LogLevel
	if g.Verbose {
		level = "debug"
	}
	logger, err := logging.New(stderr, logging.Options{Level: level, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "path", store.Path())

	key, err := cfg.KeyFunc()
	if err != nil {
		return nil, err
	}

	a := &app{
		out:    cli.NewPrinter(stdout, cfg.Theme),
		errOut: cli.NewPrinter(stderr, cfg.Theme),
		logger: logger,
		dir:    g.Dir,
		now:    time.Now,
		close:  func() {},
	}

	var runs usecase.Journal
	if j, err := journal.Open(cfg.JournalFile); err != nil {
		logger.Warn("journal unavailable", "path", cfg.JournalFile, "err", err)
	} else {
		runs = j
		a.close = func() { _ = j.Close() }
	}

	fetcher := feed.NewFetcher(cfg.UserAgent, cfg.Timeout(), logger)
	records := func(dir string) usecase.RecordStore {
		return record.NewStore(dir, cfg.RecordFile)
	}
	a.service = usecase.NewPodcastService(fetcher, records, runs, key, logger)
	return a, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var grammar CLI
	parser, err := kong.New(&grammar,
		kong.Name("pood"),
		kong.Description("Track podcast feeds and record the episodes you have seen."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	a, err := newApp(grammar.Globals, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "pood: %v\n", err)
		return 1
	}
	defer a.close()

	if err := kctx.Run(a); err != nil {
		a.logger.Debug("command failed", "command", kctx.Command(), "err", err)
		a.errOut.Error(err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
