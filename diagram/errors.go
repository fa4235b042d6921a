package diagram

import "errors"

// ErrGrammarUnknown is returned (wrapped) when the diagram front end
// encounters a construct it cannot classify. This kind is always fatal.
var ErrGrammarUnknown = errors.New("diagram: unknown grammar construct")

// ErrUnbound is returned (wrapped) when the Binder cannot resolve a node to
// any filesystem id.
var ErrUnbound = errors.New("diagram: node could not be bound to a filesystem entry")

// ErrUnknownVariable is returned (wrapped) when a relationship references a
// variable absent from the bound node index.
var ErrUnknownVariable = errors.New("diagram: relationship references unknown variable")
