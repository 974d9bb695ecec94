// QuestRouX is a campus-orientation quest board.
// Usage: questroux [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--db <path>] [catalog_dir]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nathoo/questroux/cli"
	"github.com/nathoo/questroux/config"
	"github.com/nathoo/questroux/engine"
	"github.com/nathoo/questroux/geo"
	"github.com/nathoo/questroux/loader"
	"github.com/nathoo/questroux/media"
	"github.com/nathoo/questroux/notify"
	"github.com/nathoo/questroux/storage/file"
	"github.com/nathoo/questroux/storage/sqlite"
	"github.com/nathoo/questroux/tui"
)

const msgLoadFailed = "Saved progress could not be loaded. Starting fresh."

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run wires config, storage, and the engine, then hands off to the
// script runner, the plain CLI, or the TUI.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("questroux", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		dbPath     string
		scriptFile string
		plain      bool
		trace      bool
		showVer    bool
	)
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&dbPath, "db", "", "path to the progress store")
	fs.StringVar(&scriptFile, "script", "", "run commands from a file and exit")
	fs.BoolVar(&plain, "plain", false, "use the line-based CLI instead of the TUI")
	fs.BoolVar(&trace, "trace", false, "print events and errors after each command")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "questroux %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := loadConfig(configPath, dbPath, fs.Arg(0))
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(stderr, "questroux", cfg.Logging)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Close()
	}()

	// Load and compile Lua quest content.
	cat, warnings, err := loader.Load(cfg.Catalog.Dir)
	for _, w := range warnings {
		logger.Warn("catalog", "warning", w)
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Debug("catalog loaded", "dir", cfg.Catalog.Dir, "quests", cat.Len())

	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeStore()
	}()

	scanDelay, err := cfg.ScanDelay()
	if err != nil {
		return err
	}
	locator, err := newLocator(cfg.Location)
	if err != nil {
		return err
	}

	toasts := &notify.Buffer{}
	eng := engine.New(cat,
		engine.WithStore(store),
		engine.WithIngestor(media.NewDataURI(cfg.Media.MaxBytes)),
		engine.WithLocator(locator),
		engine.WithNotifier(notify.Multi{toasts, notify.Log{Logger: logger}}),
		engine.WithLogger(logger),
		engine.WithScanDelay(scanDelay),
		engine.WithActivityCapacity(cfg.Engine.ActivityCapacity),
		engine.WithRecentActivity(cfg.Engine.RecentActivity),
	)
	if err := eng.Load(ctx); err != nil {
		// Keep going on fresh progress; the next save overwrites the bad snapshot.
		logger.Error("load progress, starting fresh", "err", err)
		toasts.Notify(msgLoadFailed)
	}

	// Script mode: read the file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		c := newCLI(eng, toasts, f, stdout, trace)
		c.EchoInput = true
		c.Run(ctx)
		return nil
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal(stdout) {
		newCLI(eng, toasts, stdin, stdout, trace).Run(ctx)
		return nil
	}

	// The alt screen owns the terminal; keep logs in the file sink only.
	logger.SetConsoleEnabled(false)
	if err := tui.Run(ctx, eng, toasts); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newCLI(eng *engine.Engine, toasts *notify.Buffer, in io.Reader, out io.Writer, trace bool) *cli.CLI {
	c := cli.New(eng, toasts)
	c.In = in
	c.Out = out
	c.Trace = trace
	return c
}

// loadConfig resolves the config file and applies flag and env overrides.
func loadConfig(configPath, dbPath, catalogDir string) (config.Config, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	appDir := filepath.Join(base, "questroux")

	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("QUESTROUX_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = filepath.Join(appDir, "config.toml")
		}
	}

	cfg, err := config.Load(configPath, config.Default(filepath.Join(appDir, "questroux.db")))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", configPath, err)
	}
	cfg = cfg.ApplyEnv(os.Getenv)
	if strings.TrimSpace(dbPath) != "" {
		cfg.Storage.Path = dbPath
	}
	if strings.TrimSpace(catalogDir) != "" {
		cfg.Catalog.Dir = catalogDir
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the configured progress store.
func openStore(cfg config.StorageConfig) (engine.Store, func() error, error) {
	if err := config.EnsureConfigDir(cfg.Path); err != nil {
		return nil, nil, fmt.Errorf("create storage dir: %w", err)
	}
	switch cfg.Backend {
	case config.BackendFile:
		s, err := file.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		s, err := sqlite.Open(cfg.Path, sqlite.WithKey(cfg.Key))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, s.Close, nil
	}
}

func newLocator(cfg config.LocationConfig) (engine.Locator, error) {
	if !cfg.Enabled {
		return geo.Disabled{Reason: "location is turned off"}, nil
	}
	return geo.NewFixed(cfg.Latitude, cfg.Longitude)
}

// isTerminal reports whether w is a terminal (not piped/redirected).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
