package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource_PackageAndComponent(t *testing.T) {
	src := `
title Example
package "core" as core {
  component "engine.cpp" as engine
}
package "ui" as ui <<gui>> {
  component "view.cpp" as view
}
engine --> ui
view ..> core
`
	root, rels, err := ParseSource(src)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	corePkg := root.Children[0]
	assert.Equal(t, KindPackage, corePkg.Kind)
	assert.Equal(t, "core", corePkg.Name)
	assert.Equal(t, "core", corePkg.Variable)
	require.Len(t, corePkg.Children, 1)
	assert.Equal(t, KindComponent, corePkg.Children[0].Kind)
	assert.Equal(t, "engine", corePkg.Children[0].Variable)

	uiPkg := root.Children[1]
	assert.Equal(t, "gui", uiPkg.Stereotype)

	require.Len(t, rels, 2)
	assert.Equal(t, Relationship{Src: "engine", Dst: "ui"}, rels[0])
	// ..> is a dotted dependency arrow: direction is reversed relative to
	// the written order.
	assert.Equal(t, Relationship{Src: "core", Dst: "view"}, rels[1])
}

func TestParseSource_UnrecognizedConstructIsFatal(t *testing.T) {
	_, _, err := ParseSource(`interface "Foo" as foo`)
	assert.ErrorIs(t, err, ErrGrammarUnknown)
}

func TestParseSource_CommentsAndDirectivesIgnored(t *testing.T) {
	src := `
@startuml
' this is a comment
package "core" as core
@enduml
`
	root, _, err := ParseSource(src)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "core", root.Children[0].Name)
}

func TestParseSource_UnboundNodeStillVisited(t *testing.T) {
	src := `
package "core" {
  component "engine.cpp" as engine
}
`
	root, _, err := ParseSource(src)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	corePkg := root.Children[0]
	assert.Equal(t, "", corePkg.Variable)
	require.Len(t, corePkg.Children, 1)
	assert.Equal(t, "engine", corePkg.Children[0].Variable)
}

func TestParseSource_UnterminatedStringIsFatal(t *testing.T) {
	_, _, err := ParseSource(`package "core`)
	assert.Error(t, err)
}
