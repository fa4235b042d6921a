package fsindex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/archconform/fsindex"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestScanBasicTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ui/x.cpp":   `#include "core/y.h"`,
		"core/y.h":   `struct Y {};`,
		"README.md":  `ignored, not a recognized extension`,
		"build/a.cc": `should be excluded by default excludes`,
	})

	idx, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)

	var names []string
	for _, e := range idx.All() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "x.cpp")
	assert.Contains(t, names, "y.h")
	assert.NotContains(t, names, "README.md")
	assert.NotContains(t, names, "a.cc")

	id, ok := idx.Root, true
	assert.True(t, ok)
	assert.Equal(t, 0, id.ID)
}

func TestScanDeterministicIDs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/one.h":   "",
		"a/two.h":   "",
		"b/three.h": "",
	})

	idx1, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)
	idx2, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)

	for _, e := range idx1.All() {
		id2, ok := idx2.IDByPath(e.FullPath)
		require.True(t, ok)
		assert.Equal(t, e.ID, id2)
	}
}

func TestDescendantsInclusive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"lib/a.h": "",
		"lib/b.h": "",
	})

	idx, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)

	libID, ok := idx.IDByPath(filepath.Join(root, "lib"))
	if !ok {
		// symlink resolution may change the canonical prefix on some
		// platforms; fall back to searching by name.
		for _, e := range idx.All() {
			if e.Name == "lib" {
				libID = e.ID
				ok = true
				break
			}
		}
	}
	require.True(t, ok)
	desc := idx.Descendants(libID)
	assert.Contains(t, desc, libID)
	assert.Len(t, desc, 3) // lib, a.h, b.h
}

func TestIDByPathMissing(t *testing.T) {
	root := t.TempDir()
	idx, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)
	_, ok := idx.IDByPath("/definitely/not/under/the/tree")
	assert.False(t, ok)
}
