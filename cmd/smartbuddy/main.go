package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/germanamz/smartbuddy/pkg/mcpserver"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

// options are the flags shared by every command.
type options struct {
	configPath string
	envFile    string
	logFile    string
	verbose    bool
}

func main() {
	args := os.Args[1:]
	command := ""
	if len(args) > 0 && isCommand(args[0]) {
		command, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("smartbuddy", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: smartbuddy [flags] [command]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n"+
			"  tui     Interactive terminal assistant (default)\n"+
			"  serve   HTTP API and web page\n"+
			"  mcp     MCP server over stdio\n")
	}

	var opts options
	fs.StringVar(&opts.configPath, "config", engine.DefaultConfigFile, "path to configuration file (ignored if missing)")
	fs.StringVar(&opts.envFile, "env", ".env", "path to .env file (ignored if missing)")
	fs.StringVar(&opts.logFile, "log", "", "write logs to this file (tui discards logs when unset)")
	fs.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	_ = fs.Parse(args)

	if command == "" {
		command = "tui"
		if fs.NArg() > 0 {
			command = fs.Arg(0)
		}
	}
	if !isCommand(command) {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		fs.Usage()
		os.Exit(2)
	}

	if err := loadDotEnv(opts.envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(command, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func isCommand(s string) bool {
	switch s {
	case "tui", "serve", "mcp":
		return true
	}
	return false
}

func run(command string, opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log, closeLog, err := newLogger(command, opts)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)

	cfg, err := engine.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}

	if !eng.Available() {
		log.Warn("provider has no API key; requests will fail until one is configured",
			"provider", cfg.Provider.Kind)
	}

	switch command {
	case "serve":
		return runServe(ctx, eng, log)
	case "mcp":
		return mcpserver.NewFeatureServer("smartbuddy", version, eng).ServeStdio(ctx)
	default:
		return runTUI(ctx, eng)
	}
}

// newLogger builds the process logger. The TUI owns the terminal, so it only
// logs when a file is given; the other commands log to stderr.
func newLogger(command string, opts options) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)

	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case command == "tui":
		w = io.Discard
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
