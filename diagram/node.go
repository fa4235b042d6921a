// Package diagram parses an architecture component diagram and binds it to
// a filesystem index, producing the allowed-edge set the matrix engine
// checks the observed code dependencies against.
//
// The diagram grammar itself is treated as an external collaborator: a
// small recursive-descent front end in this package stands in for it, but
// every downstream type and algorithm here consumes only the generic
// node-label/children/property conventions a component-diagram AST needs,
// so a real LALR-driven front end could be substituted without touching
// the Binder.
package diagram

// Kind tags a Node with its role in the diagram. Kinds beyond Package and
// Component are opaque pass-through nodes (titles, entity wrappers, …)
// that the Binder never binds to filesystem ids.
type Kind string

const (
	KindPackage   Kind = "package"
	KindComponent Kind = "component"
	KindOther     Kind = "other"
)

// Node is a logical node from the architecture diagram. FSIDs is populated
// by the Binder; it is empty before binding.
type Node struct {
	ID         int
	Kind       Kind
	Name       string
	Variable   string
	Stereotype string
	Children   []*Node
	FSIDs      []int
}

// Relationship is a directed pair of variables after direction
// normalization: Src always names the dependency's source (the user), Dst
// its target.
type Relationship struct {
	Src string
	Dst string
}
