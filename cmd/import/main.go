// Command import loads diagrams into the configured nodeboard storage.
// JSON input may hold one diagram (as `-export json` writes it) or an
// array of them. Mermaid flowcharts, Graphviz DOT and D2 files are
// converted, and placed on a grid when they carry no positions.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"nodeboard/config"
	"nodeboard/diagram"
	"nodeboard/importer"
	"nodeboard/logging"
	"nodeboard/storage"
	"nodeboard/store"
)

func main() {
	var (
		inputFile  = flag.String("i", "", "Input file path (- for stdin)")
		format     = flag.String("f", "", "Input format: json, "+strings.ToLower(strings.Join(importer.NewImporterRegistry().GetAvailableFormats(), ", "))+" (default: detect)")
		configPath = flag.String("config", "", "Config file (YAML)")
	)

	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: input file required (-i)\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*inputFile, *format, *configPath, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputFile, format, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var content []byte
	if inputFile == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(inputFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	diagrams, err := decode(inputFile, format, content)
	if err != nil {
		return fmt.Errorf("failed to import diagram: %w", err)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	blob, closer, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closer.Close()

	st := store.New(blob, store.WithLogger(log.Named("store")), store.WithKey(cfg.Storage.Key))
	for _, d := range diagrams {
		imported := st.ImportDiagram(d)
		log.Debug("imported diagram", zap.String("diagramID", imported.ID))
		fmt.Fprintf(out, "Imported %s  %s (%d nodes, %d connections)\n",
			imported.ID, imported.Name, len(imported.Nodes), len(imported.Connections))
	}
	if err := st.PersistError(); err != nil {
		return fmt.Errorf("failed to save imported diagrams: %w", err)
	}
	return nil
}

// decode reads JSON directly and hands every other format to the importer
// registry, chosen by -f, then by file extension, then by content.
func decode(inputFile, format string, content []byte) ([]diagram.Diagram, error) {
	if isJSON(inputFile, format, content) {
		return diagram.DecodeDiagrams(content)
	}

	registry := importer.NewImporterRegistry()
	var (
		d   *diagram.Diagram
		err error
	)
	if format != "" {
		d, err = registry.ImportWithFormat(string(content), format)
	} else if imp, ok := registry.ForFile(inputFile); ok {
		d, err = imp.Import(string(content))
	} else {
		d, err = registry.Import(string(content))
	}
	if err != nil {
		return nil, err
	}

	if d.Name == "" && inputFile != "-" {
		d.Name = strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	}
	return []diagram.Diagram{*d}, nil
}

func isJSON(inputFile, format string, content []byte) bool {
	if format != "" {
		return strings.EqualFold(format, "json")
	}
	if strings.EqualFold(filepath.Ext(inputFile), ".json") {
		return true
	}
	trimmed := strings.TrimSpace(string(content))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
