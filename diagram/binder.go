package diagram

import (
	"fmt"
	"path/filepath"

	"github.com/viant/archconform/fsindex"
)

// AllowedRule is a single directed permission: Src may depend on Dst.
type AllowedRule struct {
	Src int
	Dst int
}

// Model is the bound diagram: every variable-named node resolved to
// filesystem ids, plus the fully expanded set of allowed directed edges.
type Model struct {
	Root         *Node
	VarIndex     map[string]*Node
	FSGroups     [][]int
	AllowedRules []AllowedRule
}

// Bind resolves every variable-named Node in root to one or more filesystem
// ids in idx, then expands rels into the transitive, descendant-closed set
// of AllowedRules.
func Bind(root *Node, rels []Relationship, idx *fsindex.Index) (*Model, error) {
	baseDir := idx.Root.FullPath
	varIndex := map[string]*Node{}
	var fsGroups [][]int

	var bind func(node *Node, baseAncestorDir string) error
	bind = func(node *Node, baseAncestorDir string) error {
		nextBaseDir := baseAncestorDir
		if node.Variable != "" {
			ids, err := resolveNode(node, baseAncestorDir, idx)
			if err != nil {
				return err
			}
			node.FSIDs = ids
			varIndex[node.Variable] = node
			if len(ids) > 1 {
				fsGroups = append(fsGroups, ids)
			}
			if len(ids) == 1 {
				if e := idx.Entry(ids[0]); e != nil && e.IsDir {
					nextBaseDir = e.FullPath
				}
			}
		}
		for _, child := range node.Children {
			if err := bind(child, nextBaseDir); err != nil {
				return err
			}
		}
		return nil
	}
	if err := bind(root, baseDir); err != nil {
		return nil, err
	}

	ruleSet := map[[2]int]struct{}{}
	addRule := func(src, dst int) {
		ruleSet[[2]int{src, dst}] = struct{}{}
	}

	for _, rel := range rels {
		srcNode, ok := varIndex[rel.Src]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, rel.Src)
		}
		dstNode, ok := varIndex[rel.Dst]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, rel.Dst)
		}
		srcIDs := closure(srcNode, idx)
		dstIDs := closure(dstNode, idx)
		for _, s := range srcIDs {
			for _, d := range dstIDs {
				addRule(s, d)
			}
		}
	}

	// Files grouped under the same component (e.g. a header and its
	// matching source file) are always mutually allowed to depend on one
	// another, in both directions.
	for _, group := range fsGroups {
		for _, a := range group {
			for _, b := range group {
				if a != b {
					addRule(a, b)
				}
			}
		}
	}

	rules := make([]AllowedRule, 0, len(ruleSet))
	for pair := range ruleSet {
		rules = append(rules, AllowedRule{Src: pair[0], Dst: pair[1]})
	}

	return &Model{Root: root, VarIndex: varIndex, FSGroups: fsGroups, AllowedRules: rules}, nil
}

// closure returns every filesystem id reachable from node: its own bound
// ids plus the transitive descendant ids of each, so a rule declared against
// a package also covers every file nested beneath it.
func closure(node *Node, idx *fsindex.Index) []int {
	seen := map[int]struct{}{}
	var out []int
	add := func(id int) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range node.FSIDs {
		for _, d := range idx.Descendants(id) {
			add(d)
		}
	}
	for _, child := range node.Children {
		for _, id := range closure(child, idx) {
			add(id)
		}
	}
	return out
}

// resolveNode tries node.Name, and node.Name plus every recognized
// extension, under baseDir, returning every filesystem id that matches
// (more than one indicates a multi-file component, an FSGroup).
func resolveNode(node *Node, baseDir string, idx *fsindex.Index) ([]int, error) {
	candidates := []string{filepath.Join(baseDir, node.Name)}
	for _, ext := range fsindex.DefaultExtensions {
		candidates = append(candidates, filepath.Join(baseDir, node.Name+ext))
	}

	var ids []int
	seen := map[int]struct{}{}
	for _, candidate := range candidates {
		canonical, err := fsindex.Canonicalize(candidate)
		if err != nil {
			continue
		}
		id, ok := idx.IDByPath(canonical)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %q under %q", ErrUnbound, node.Name, baseDir)
	}
	return ids, nil
}
