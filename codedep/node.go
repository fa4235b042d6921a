// Package codedep extracts concrete file-to-file dependency edges from a
// C/C++ project's translation units.
//
// The reference toolchain drives libclang through a compilation database to
// get a fully semantic AST, where every reference cursor already carries a
// resolved declaration. This module has no libclang binding available, so it
// substitutes a syntactic tree-sitter parse plus a two-pass symbol
// resolution: a definition pass builds a project-wide name→defining-file
// table once, then a relation pass walks each translation unit and looks
// names up in that table. The TUParser.Parse contract — one compile command
// in, a list of file-to-file CodeDeps out — is unchanged.
package codedep

// CodeNode is an AST-derived source location.
type CodeNode struct {
	FilePath  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Kind      string
}

// CodeRef pairs a filesystem id with the AST location that produced it. The
// parser sets Node only on an edge's source side (the include directive or
// referencing identifier); the destination side of every edge, inclusion or
// symbol reference, carries only its fs id and a nil Node.
type CodeRef struct {
	FSID int
	Node *CodeNode
}

// CodeDep is a single directed file-to-file dependency edge.
type CodeDep struct {
	Src CodeRef
	Dst CodeRef
}

// Key returns the (src, dst) fs-id pair the Matrix Conformance Engine groups
// deps by.
func (d CodeDep) Key() [2]int {
	return [2]int{d.Src.FSID, d.Dst.FSID}
}
