package fsindex

import "fmt"

// Index is the full result of a scan: the root entry plus id- and
// path-keyed lookup tables. IDs are dense, starting at 0, and every entry
// is reachable from Root via Children.
type Index struct {
	Root      *Entry
	byID      map[int]*Entry
	byPath    map[string]*Entry
}

// Len returns the number of entries in the index (the N dimension of the
// allowed/observed/violation matrices).
func (idx *Index) Len() int {
	return len(idx.byID)
}

// Entry returns the entry with the given id, or nil if none exists.
func (idx *Index) Entry(id int) *Entry {
	return idx.byID[id]
}

// FullPath returns the canonical absolute path of the entry with the given
// id.
func (idx *Index) FullPath(id int) (string, error) {
	e, ok := idx.byID[id]
	if !ok {
		return "", fmt.Errorf("fsindex: no entry with id %d", id)
	}
	return e.FullPath, nil
}

// IDByPath returns the id of the entry whose canonical path matches path,
// or false if path is not under the scanned tree.
func (idx *Index) IDByPath(path string) (int, bool) {
	e, ok := idx.byPath[path]
	if !ok {
		return 0, false
	}
	return e.ID, true
}

// Descendants returns the ids of id and every transitive child of id, in
// preorder.
func (idx *Index) Descendants(id int) []int {
	var out []int
	e, ok := idx.byID[id]
	if !ok {
		return out
	}
	idx.collect(e, &out)
	return out
}

func (idx *Index) collect(e *Entry, out *[]int) {
	*out = append(*out, e.ID)
	for _, c := range e.Children {
		idx.collect(c, out)
	}
}

// All returns every entry in ascending id order.
func (idx *Index) All() []*Entry {
	out := make([]*Entry, 0, len(idx.byID))
	for id := 0; id < len(idx.byID); id++ {
		if e, ok := idx.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}
