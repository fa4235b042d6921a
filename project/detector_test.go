package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_CMakeProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "CMakeLists.txt"), []byte("project(widgets)\n"), 0o644))
	sub := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	info, err := New().Detect(sub)
	require.NoError(t, err)
	assert.Equal(t, "cmake", info.Kind)
	assert.Equal(t, "widgets", info.Name)
	assert.Equal(t, root, info.RootPath)
}

func TestDetect_UnknownFallsBackToDirName(t *testing.T) {
	root := t.TempDir()
	info, err := New().Detect(root)
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.Kind)
	assert.Equal(t, filepath.Base(root), info.Name)
}

func TestDetect_GoModule(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/tooling\n\ngo 1.23\n"), 0o644))

	info, err := New().Detect(root)
	require.NoError(t, err)
	assert.Equal(t, "go", info.Kind)
	assert.Equal(t, "example.com/tooling", info.Name)
}
