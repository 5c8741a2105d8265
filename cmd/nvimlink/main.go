// Package main is the entry point for the nvimlink bridge.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/nvimlink/internal/bridge"
	"github.com/dshills/nvimlink/internal/config"
	"github.com/dshills/nvimlink/internal/event"
	"github.com/dshills/nvimlink/internal/host"
	"github.com/dshills/nvimlink/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg.ApplyEnv()
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Prefix: "nvimlink",
	})

	// An attached terminal sets the UI width; otherwise the bridge default
	// (a wide logical grid) applies.
	if cfg.UI.Width == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cfg.UI.Width = w
		}
	}

	bus := event.NewBus(log)

	editor := host.NewEditor(log)
	host.RegisterBuiltins(editor)
	editor.SetActiveView(host.NewView(host.NewDocument(nil)))

	ctrl := bridge.NewController(cfg, editor, bus, log)
	defer ctrl.Close()

	if err := ctrl.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start engine: %v\n", err)
		return 1
	}

	if opts.configPath != "" {
		watcher, err := config.Watch(opts.configPath, bus, log)
		if err != nil {
			log.Warn("config watch disabled: %v", err)
		} else {
			defer watcher.Close()
			bus.Subscribe(config.TopicReloaded, func(_ string, payload any) {
				if next, ok := payload.(config.Config); ok {
					log.SetLevel(logging.ParseLevel(next.Log.Level))
				}
			})
		}
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	// The session ends when the engine dies or the user interrupts.
	engineExit := make(chan int, 1)
	bus.Subscribe(bridge.TopicEngineExited, func(_ string, payload any) {
		code, ok := payload.(int)
		if !ok {
			code = 1
		}
		select {
		case engineExit <- code:
		default:
		}
	})

	select {
	case sig := <-signals:
		log.Info("received %v, shutting down", sig)
		return 0
	case code := <-engineExit:
		fmt.Fprintf(os.Stderr, "Error: engine exited with code %d\n", code)
		if code == 0 {
			return 1
		}
		return code
	}
}

type options struct {
	configPath string
	logLevel   string
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nvimlink - Neovim engine bridge\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nvimlink [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nvimlink                    Run with defaults (nvim on PATH)\n")
		fmt.Fprintf(os.Stderr, "  nvimlink -c bridge.toml     Run with a configuration file\n")
		fmt.Fprintf(os.Stderr, "  nvimlink -log-level debug   Verbose channel diagnostics\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("nvimlink %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.logLevel != "" {
		switch opts.logLevel {
		case "debug", "info", "warn", "error":
			// Valid
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
			os.Exit(1)
		}
	}

	return opts
}
