package codedep

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// languageFor picks the tree-sitter grammar for a file by extension. C++
// extensions get the C++ grammar (a strict superset for the constructs this
// package cares about); everything else falls back to C.
func languageFor(path string) *sitter.Language {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".cc"), strings.HasSuffix(lower, ".cpp"),
		strings.HasSuffix(lower, ".cxx"), strings.HasSuffix(lower, ".hpp"):
		return cpp.GetLanguage()
	default:
		return c.GetLanguage()
	}
}

// definitionFieldByNodeType maps a tree-sitter node type to the field name holding the
// defined symbol's identifier, for every construct the definition pass
// recognizes. Kept as a table, not a chain of type-string comparisons, so
// adding a construct is a one-line change.
var definitionFieldByNodeType = map[string]string{
	"struct_specifier": "name",
	"class_specifier":  "name",
	"union_specifier":  "name",
	"enum_specifier":   "name",
}

// referenceNodeTypes are the tree-sitter leaf node types the relation pass
// treats as candidate symbol references, expressed as tree-sitter's stable
// type-string enumeration rather than integer ranges.
var referenceNodeTypes = map[string]bool{
	"identifier":       true,
	"type_identifier":  true,
	"field_identifier": true,
}
