package codedep

// definition is one recorded defining occurrence of a name: which file
// defines it, and the byte extent of the defining identifier itself, so the
// relation pass can recognize (and skip) the very occurrence that defines a
// name rather than treating it as a self-reference.
type definition struct {
	fsID      int
	startByte uint32
	endByte   uint32
}

// SymbolTable maps an unqualified name to every file that defines it. It is
// built once by the definition pass, single-threaded, before the relation
// pass's worker pool starts, and is read-only thereafter — the same shared
// immutable-reference discipline the FSIndex follows.
type SymbolTable struct {
	defs map[string][]definition
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{defs: map[string][]definition{}}
}

func (t *SymbolTable) record(name string, fsID int, startByte, endByte uint32) {
	if name == "" {
		return
	}
	t.defs[name] = append(t.defs[name], definition{fsID: fsID, startByte: startByte, endByte: endByte})
}

// filesDefining returns every fs id that defines name, excluding the file
// identified by excludeFSID (the referencing file itself — same-file
// references are always suppressed).
func (t *SymbolTable) filesDefining(name string, excludeFSID int) []int {
	var out []int
	seen := map[int]struct{}{}
	for _, d := range t.defs[name] {
		if d.fsID == excludeFSID {
			continue
		}
		if _, ok := seen[d.fsID]; ok {
			continue
		}
		seen[d.fsID] = struct{}{}
		out = append(out, d.fsID)
	}
	return out
}

// isDefiningOccurrence reports whether the byte range [start, end) in fsID
// is itself a recorded definition site for name, rather than a reference to
// one.
func (t *SymbolTable) isDefiningOccurrence(name string, fsID int, start, end uint32) bool {
	for _, d := range t.defs[name] {
		if d.fsID == fsID && d.startByte == start && d.endByte == end {
			return true
		}
	}
	return false
}
