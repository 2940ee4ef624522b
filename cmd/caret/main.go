// Package main is the entry point for the caret editor.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dmorey/caret/internal/app"
	"github.com/dmorey/caret/internal/config"
	"github.com/dmorey/caret/internal/input/key"
	"github.com/dmorey/caret/internal/logging"
	"github.com/dmorey/caret/internal/message"
	"github.com/dmorey/caret/internal/persist"
	"github.com/dmorey/caret/internal/renderer"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	noPersist  bool
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	var store *persist.Store
	if !opts.noPersist {
		path, err := cfg.SessionPath()
		if err == nil {
			store, err = persist.Open(path)
		}
		if err != nil {
			log.Warn("session persistence disabled: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	state, err := app.Load(app.Options{
		Store:      store,
		Bindings:   cfg.Raw(),
		LineHeight: cfg.UI.LineHeight,
		Log:        log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	term, err := renderer.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	defer term.Fini()

	queue := message.NewQueue()
	for _, path := range flag.Args() {
		if err := state.OpenPath(path); err != nil {
			log.Warn("failed to open %s from command line: %v", path, err)
		}
	}

	width, height := term.Size()
	state.RecalcLayout(float64(width), float64(height))

	eventLoop(state, term, queue, log)
	return 0
}

// eventLoop multiplexes terminal events and queued messages into the
// editor state until a Close message arrives.
func eventLoop(state *app.State, term *renderer.Terminal, queue *message.Queue, log *logging.Logger) {
	quit := make(chan struct{})
	defer close(quit)

	events := make(chan tcell.Event, 16)
	go term.ChannelEvents(events, quit)

	term.Draw(state)
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if atom, ok := key.FromTcell(ev); ok {
					state.HandleKeyPress(atom, queue)
				}
			case *tcell.EventResize:
				w, h := ev.Size()
				state.RecalcLayout(float64(w), float64(h))
			}

		case msg := <-queue.C():
			switch m := msg.(type) {
			case message.Close:
				return
			case message.Act:
				if err := state.HandleAction(m.Action, queue); err != nil {
					log.Error("queued action failed: %v", err)
				}
			}
		}

		term.Draw(state)
	}
}

func openLogger(cfg config.Config) (*logging.Logger, func(), error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Output: f,
		Prefix: "caret",
	})
	return log, func() { f.Close() }, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&opts.noPersist, "no-persist", false, "Do not restore or save the session")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "caret - keyboard-driven text editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: caret [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("caret %s\n", version)
		os.Exit(0)
	}

	if opts.configPath == "" {
		opts.configPath = config.DefaultPath()
	}
	return opts
}
