package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"nodeboard/config"
	"nodeboard/export"
	"nodeboard/logging"
	"nodeboard/shell"
	"nodeboard/storage"
	"nodeboard/store"
	"nodeboard/terminal"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (YAML); NODEBOARD_* variables override it")
		shellMode  = flag.Bool("shell", false, "Line-oriented command shell instead of the TUI")
		list       = flag.Bool("list", false, "List stored diagrams and exit")
		format     = flag.String("export", "", "Export the active diagram and exit: "+formatList())
		outputFile = flag.String("o", "", "Output file for -export (default: stdout)")
		diagramID  = flag.String("diagram", "", "Diagram id to open instead of the first one")
		help       = flag.Bool("help", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An editor for boards of boxes and the lines between them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                               # Start the editor\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -shell                        # Command shell\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -list                         # Show stored diagrams\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -export mermaid -o board.mmd  # Export the first diagram\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEditor keys:\n")
		fmt.Fprintf(os.Stderr, "  m move  a add  c connect  d delete  p pan  esc back to move\n")
		fmt.Fprintf(os.Stderr, "  + - zoom  0 reset view  e edit label  x clear board\n")
		fmt.Fprintf(os.Stderr, "  n new diagram  [ ] previous/next diagram  q quit\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *list:
		err = withStore(cfg, *diagramID, false, func(st *store.Store, _ *zap.Logger) error {
			return runList(st, os.Stdout)
		})
	case *format != "":
		err = withStore(cfg, *diagramID, false, func(st *store.Store, _ *zap.Logger) error {
			return runExport(st, *format, *outputFile)
		})
	case *shellMode:
		err = withStore(cfg, *diagramID, false, func(st *store.Store, log *zap.Logger) error {
			return runShell(cfg, st, log)
		})
	default:
		err = withStore(cfg, *diagramID, true, func(st *store.Store, log *zap.Logger) error {
			return runInteractive(cfg, st, log)
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func formatList() string {
	var names []string
	for _, f := range export.GetAvailableFormats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// newLogger builds the process logger. The TUI owns the terminal, so it
// only logs when a log file is configured.
func newLogger(cfg *config.Config, fullscreen bool) (*zap.Logger, error) {
	if cfg.Log.File != "" {
		return logging.New(cfg.Log.Level, cfg.Log.Development, cfg.Log.File)
	}
	if fullscreen {
		return zap.NewNop(), nil
	}
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}

// withStore opens the configured storage, builds a Store over it and runs
// fn, releasing everything afterwards.
func withStore(cfg *config.Config, diagramID string, fullscreen bool, fn func(*store.Store, *zap.Logger) error) error {
	log, err := newLogger(cfg, fullscreen)
	if err != nil {
		return err
	}
	defer log.Sync()

	blob, closer, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closer.Close()

	opts := []store.Option{
		store.WithLogger(log.Named("store")),
		store.WithKey(cfg.Storage.Key),
	}
	if diagramID != "" {
		opts = append(opts, store.WithInitialDiagram(diagramID))
	}
	log.Debug("storage opened",
		zap.String("backend", cfg.Storage.Backend), zap.String("path", cfg.Storage.Path))

	return fn(store.New(blob, opts...), log)
}

func runInteractive(cfg *config.Config, st *store.Store, log *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	app := terminal.New(screen, st,
		terminal.WithLogger(log.Named("terminal")),
		terminal.WithZoomStep(cfg.View.ZoomStep),
		terminal.WithPixelRatio(cfg.View.PixelRatio),
		terminal.WithCapabilities(terminal.DetectCapabilities()),
		terminal.WithFrameInterval(cfg.View.FrameInterval),
	)
	return app.Run()
}

func runShell(cfg *config.Config, st *store.Store, log *zap.Logger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     cfg.Shell.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	sh := shell.New(st, rl.Stdout(), shell.WithLogger(log.Named("shell")))
	fmt.Fprintln(rl.Stdout(), "Type 'help' for commands.")
	return sh.Run(rl)
}

func runList(st *store.Store, w io.Writer) error {
	diagrams := st.Diagrams()
	if len(diagrams) == 0 {
		fmt.Fprintln(w, "No diagrams")
		return nil
	}
	for _, d := range diagrams {
		fmt.Fprintf(w, "%s\t%s\t%d nodes\t%d connections\t%s\n",
			d.ID, d.Name, len(d.Nodes), len(d.Connections), d.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runExport(st *store.Store, format, outputFile string) error {
	exportFormat, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	exporter, err := export.NewExporter(exportFormat)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	d, ok := st.Active()
	if !ok {
		return errors.New("no diagram to export")
	}
	out, err := exporter.Export(&d)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", d.Name, err)
	}

	if outputFile == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outputFile, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %s to %s\n", d.Name, outputFile)
	return nil
}
