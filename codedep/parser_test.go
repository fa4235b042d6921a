package codedep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/archconform/fsindex"
)

// TestBuildSymbolTable_LocalScopeNeverRecorded is a unit-level check on the
// definition pass itself: a function parameter and a local variable must
// never reach the shared symbol table, only the enclosing function's own
// name (file scope).
func TestBuildSymbolTable_LocalScopeNeverRecorded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.cpp"), []byte(`
void tally(int count) {
    int total = 0;
    total += count;
}
`), 0o644))

	idx, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)

	p := NewTUParser(idx)
	require.NoError(t, p.BuildSymbolTable(context.Background()))

	fsID := mustID(t, idx, "a.cpp")
	assert.Equal(t, []int{fsID}, p.symbols.filesDefining("tally", -1))
	assert.Empty(t, p.symbols.filesDefining("count", -1), "function parameters are block scope")
	assert.Empty(t, p.symbols.filesDefining("total", -1), "local variables are block scope")
}

// TestBuildSymbolTable_FileScopeDeclarationsStillRecorded guards against an
// overcorrection: a global variable and a struct tag at file scope must
// still be recorded.
func TestBuildSymbolTable_FileScopeDeclarationsStillRecorded(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.cpp"), []byte(`
struct Widget {
    int size;
};
int globalCount;
`), 0o644))

	idx, err := fsindex.New(root).Scan(context.Background())
	require.NoError(t, err)

	p := NewTUParser(idx)
	require.NoError(t, p.BuildSymbolTable(context.Background()))

	fsID := mustID(t, idx, "b.cpp")
	assert.Equal(t, []int{fsID}, p.symbols.filesDefining("Widget", -1))
	assert.Equal(t, []int{fsID}, p.symbols.filesDefining("globalCount", -1))
}
