// Package matrix combines a bound architecture diagram with the observed
// C/C++ dependency edges into the violation set.
//
// The N×N allowed/observed/violation relations are backed by sparse maps
// rather than dense slices: the C/C++ trees this tool targets run large
// while the dependency graph (and the rule set carving exceptions out of
// it) stays comparatively small.
package matrix

import (
	"sort"

	"github.com/viant/archconform/codedep"
	"github.com/viant/archconform/diagram"
	"github.com/viant/archconform/fsindex"
)

// Pair is a (src, dst) fs-id key, used throughout this package in place of
// a dense N×N index.
type Pair [2]int

// Engine holds the built allowed/observed relations for one run.
type Engine struct {
	idx         *fsindex.Index
	permitted   map[Pair]struct{}
	observed    map[Pair]int
	groupedDeps map[Pair][]codedep.CodeDep
}

// Build constructs the allowed mask from model and the observed counts from
// deps. allowed[i][j] conceptually starts at 1 ("forbidden") everywhere and
// is set to 0 ("permitted") for every AllowedRule and FSGroup pair; Engine
// represents that by recording only the permitted pairs.
func Build(idx *fsindex.Index, model *diagram.Model, deps []codedep.CodeDep) *Engine {
	e := &Engine{
		idx:         idx,
		permitted:   map[Pair]struct{}{},
		observed:    map[Pair]int{},
		groupedDeps: map[Pair][]codedep.CodeDep{},
	}
	for _, rule := range model.AllowedRules {
		e.permitted[Pair{rule.Src, rule.Dst}] = struct{}{}
	}
	for _, group := range model.FSGroups {
		for _, a := range group {
			for _, b := range group {
				if a != b {
					e.permitted[Pair{a, b}] = struct{}{}
				}
			}
		}
	}
	for _, dep := range deps {
		key := Pair(dep.Key())
		if key[0] == key[1] {
			// self-edges are always permitted and never meaningfully
			// "observed" for conformance purposes.
			continue
		}
		e.observed[key]++
		e.groupedDeps[key] = append(e.groupedDeps[key], dep)
	}
	return e
}

// IsPermitted reports whether allowed[src][dst] == 0, i.e. the edge is
// explicitly carved out by a diagram rule or FSGroup.
func (e *Engine) IsPermitted(src, dst int) bool {
	if src == dst {
		return true
	}
	_, ok := e.permitted[Pair{src, dst}]
	return ok
}

// Violation is one reported conformance failure: a permitted-or-not edge
// that was observed without permission, plus the concrete deps that make it
// up.
type Violation struct {
	Src   int
	Dst   int
	Count int
	Deps  []codedep.CodeDep
}

// Violations computes violation[i][j] = allowed[i][j] * observed[i][j] and
// returns every (i,j) where it is nonzero, sorted by (src, dst) for
// deterministic report output.
func (e *Engine) Violations() []Violation {
	var out []Violation
	for key, count := range e.observed {
		if e.IsPermitted(key[0], key[1]) {
			continue
		}
		out = append(out, Violation{Src: key[0], Dst: key[1], Count: count, Deps: e.groupedDeps[key]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}

// TotalViolations returns the total count of violating CodeDeps across every
// violating (src, dst) pair — the number the CLI prints as
// "TOTAL VIOLATIONS = <n>".
func (e *Engine) TotalViolations() int {
	total := 0
	for _, v := range e.Violations() {
		total += v.Count
	}
	return total
}
