package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nodeboard/config"
	"nodeboard/diagram"
	"nodeboard/storage"
	"nodeboard/store"
)

func TestRunList(t *testing.T) {
	st := store.New(storage.NewMemory())
	st.AddNode(diagram.Node{Text: "A"})
	st.CreateDiagram("Second")

	var out bytes.Buffer
	require.NoError(t, runList(st, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "\tUntitled Diagram\t1 nodes\t0 connections\t")
	assert.Contains(t, lines[1], "\tSecond\t0 nodes\t")
}

func TestRunExport(t *testing.T) {
	st := store.New(storage.NewMemory())
	a := st.AddNode(diagram.Node{X: 0, Y: 0, Text: "A"})
	b := st.AddNode(diagram.Node{X: 200, Y: 0, Text: "B"})
	st.AddConnection(diagram.Connection{From: a.ID, To: b.ID})

	path := filepath.Join(t.TempDir(), "board.mmd")
	require.NoError(t, runExport(st, "mermaid", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flowchart LR")
	assert.Contains(t, string(data), "N1 --- N2")

	assert.Error(t, runExport(st, "svg", path))
}

func TestWithStoreUsesConfiguredBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendFile
	cfg.Storage.Path = filepath.Join(t.TempDir(), "boards")
	cfg.Log.Level = "error"

	var firstID string
	require.NoError(t, withStore(cfg, "", false, func(st *store.Store, _ *zap.Logger) error {
		firstID = st.ActiveID()
		st.AddNode(diagram.Node{Text: "kept"})
		st.CreateDiagram("Other")
		return nil
	}))

	require.NoError(t, withStore(cfg, "", false, func(st *store.Store, _ *zap.Logger) error {
		assert.Len(t, st.Diagrams(), 2)
		assert.Equal(t, firstID, st.ActiveID())
		require.Len(t, st.Nodes(), 1)
		assert.Equal(t, "kept", st.Nodes()[0].Text)
		return nil
	}))
}
