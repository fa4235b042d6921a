package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/viant/archconform/codedep"
)

// fixture mirrors codedep's aggregator fixture: a "core" component that
// "ui" is allowed to use; every file in it is bound to a diagram node.
const fixture = `
-- core/engine.h --
#ifndef ENGINE_H
#define ENGINE_H
void engine_run();
#endif
-- core/engine.cpp --
#include "engine.h"
void engine_run() {
}
-- ui/view.cpp --
#include "../core/engine.h"
void view_render() {
    engine_run();
}
`

const diagramSource = `
@startuml
package "core" as core {
  component "engine" as engine
}
package "ui" as ui {
  component "view" as view
}
view --> engine
@enduml
`

func writeTree(t *testing.T, root string) {
	t.Helper()
	archive := txtar.Parse([]byte(fixture))
	for _, f := range archive.Files {
		full := filepath.Join(root, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, f.Data, 0o644))
	}
}

func writeCompDB(t *testing.T, root string) string {
	t.Helper()
	commands := []codedep.CompileCommand{
		{Directory: root, File: "core/engine.cpp", Arguments: []string{"cc", "core/engine.cpp"}},
		{Directory: root, File: "ui/view.cpp", Arguments: []string{"cc", "ui/view.cpp"}},
	}
	data, err := json.Marshal(commands)
	require.NoError(t, err)
	compdbDirOut := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(compdbDirOut, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(compdbDirOut, "compile_commands.json"), data, 0o644))
	return compdbDirOut
}

// captureStdout redirects os.Stdout for the duration of a test and returns
// the captured bytes via the returned function.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	return func() string {
		os.Stdout = orig
		w.Close()
		var buf bytes.Buffer
		io.Copy(&buf, r)
		return buf.String()
	}
}

// TestRunCheck_PermittedEdgeReportsNoViolations wires the whole pipeline
// against a tree whose only observed dependency ("view" -> "engine") is
// exactly what the diagram permits.
func TestRunCheck_PermittedEdgeReportsNoViolations(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	compdb := writeCompDB(t, root)

	pumlFile := filepath.Join(root, "arch.puml")
	require.NoError(t, os.WriteFile(pumlFile, []byte(diagramSource), 0o644))

	configFile := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("reportDir: "+filepath.Join(root, "reports")+"\n"), 0o644))

	baseDir = root
	pumlPath = pumlFile
	compdbDir = compdb
	configPath = configFile
	heatmapPath = ""
	workers = 2
	verbose = false

	stop := captureStdout(t)
	err := runCheck(rootCmd, nil)
	out := stop()

	require.NoError(t, err)
	assert.Contains(t, out, "TOTAL VIOLATIONS = 0")
	assert.FileExists(t, filepath.Join(root, "reports", "violations_report.csv"))
}

// TestRunCheck_UnboundDiagramNodeIsFatal exercises the Unbound exit path:
// a component naming a directory absent from the scanned tree.
func TestRunCheck_UnboundDiagramNodeIsFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	compdb := writeCompDB(t, root)

	pumlFile := filepath.Join(root, "arch.puml")
	require.NoError(t, os.WriteFile(pumlFile, []byte(`
@startuml
component "ghost" as ghost
@enduml
`), 0o644))

	baseDir = root
	pumlPath = pumlFile
	compdbDir = compdb
	configPath = ""
	heatmapPath = ""
	workers = 2

	err := runCheck(rootCmd, nil)
	require.Error(t, err)

	var se *stageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, exitUnbound, se.ExitCode())
}

// TestRunCheck_SyntaxErrorIsTUDiagnostic exercises the TUDiagnostic exit
// path end to end: a translation unit with a parse error must abort the
// run with exitTUDiagnostic, distinct from exitCompdbLoad.
func TestRunCheck_SyntaxErrorIsTUDiagnostic(t *testing.T) {
	root := t.TempDir()
	archive := txtar.Parse([]byte(`
-- core/engine.cpp --
void engine_run() {
}
-- ui/view.cpp --
void view_render( {
    return 0
}
`))
	for _, f := range archive.Files {
		full := filepath.Join(root, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, f.Data, 0o644))
	}
	commands := []codedep.CompileCommand{
		{Directory: root, File: "core/engine.cpp", Arguments: []string{"cc", "core/engine.cpp"}},
		{Directory: root, File: "ui/view.cpp", Arguments: []string{"cc", "ui/view.cpp"}},
	}
	data, err := json.Marshal(commands)
	require.NoError(t, err)
	compdbDirOut := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(compdbDirOut, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(compdbDirOut, "compile_commands.json"), data, 0o644))

	pumlFile := filepath.Join(root, "arch.puml")
	require.NoError(t, os.WriteFile(pumlFile, []byte(diagramSource), 0o644))

	baseDir = root
	pumlPath = pumlFile
	compdbDir = compdbDirOut
	configPath = ""
	heatmapPath = ""
	workers = 2

	err = runCheck(rootCmd, nil)
	require.Error(t, err)

	var se *stageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, exitTUDiagnostic, se.ExitCode())
}
