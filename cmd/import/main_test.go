package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeboard/config"
	"nodeboard/storage"
	"nodeboard/store"
)

func TestRunImportsIntoConfiguredStore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "boards.db")
	t.Setenv(config.EnvDB, dbPath)
	t.Setenv(config.EnvLogLevel, "error")

	input := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(input, []byte(`{
  "id": "imported",
  "name": "From file",
  "nodes": [
    {"id": "a", "x": 0, "y": 0, "text": "A", "color": "#fde68a"},
    {"id": "b", "x": 200, "y": 0, "text": "B", "color": "#bfdbfe"}
  ],
  "connections": [
    {"id": "c", "from": "a", "to": "b"},
    {"id": "d", "from": "a", "to": "missing"}
  ]
}`), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(input, "", "", &out))
	assert.Equal(t, "Imported imported  From file (2 nodes, 1 connections)\n", out.String())

	db, err := storage.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer db.Close()

	st := store.New(db, store.WithInitialDiagram("imported"))
	d, ok := st.Active()
	require.True(t, ok)
	assert.Equal(t, "From file", d.Name)
	assert.Len(t, d.Nodes, 2)
	assert.Len(t, d.Connections, 1)
	assert.Len(t, st.Diagrams(), 2, "seed diagram plus the import")
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvStorage, config.BackendMemory)

	input := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(input, []byte("not json"), 0o644))

	var out bytes.Buffer
	assert.Error(t, run(input, "", "", &out))
	assert.Error(t, run(filepath.Join(dir, "absent.json"), "", "", &out))
	assert.Empty(t, out.String())
}

func TestRunConvertsTextFormats(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvStorage, config.BackendFile)
	t.Setenv(config.EnvDB, filepath.Join(dir, "store"))
	t.Setenv(config.EnvLogLevel, "error")

	mmd := filepath.Join(dir, "flow.mmd")
	require.NoError(t, os.WriteFile(mmd, []byte("flowchart LR\n  a[Start] --> b[End]\n"), 0o644))
	dot := filepath.Join(dir, "deps.txt")
	require.NoError(t, os.WriteFile(dot, []byte("digraph deps { x -> y -> z }"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(mmd, "", "", &out))
	require.NoError(t, run(dot, "", "", &out), "detected from content")
	assert.Error(t, run(mmd, "visio", "", &out), "unknown explicit format")

	blob, err := storage.NewFile(filepath.Join(dir, "store"))
	require.NoError(t, err)
	st := store.New(blob)

	var names []string
	for _, d := range st.Diagrams() {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "flow")
	assert.Contains(t, names, "deps")

	for _, d := range st.Diagrams() {
		if d.Name == "deps" {
			assert.Len(t, d.Nodes, 3)
			assert.Len(t, d.Connections, 2)
		}
	}
}
