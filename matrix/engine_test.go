package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/archconform/codedep"
	"github.com/viant/archconform/diagram"
	"github.com/viant/archconform/fsindex"
)

func TestEngine_SelfEdgeAlwaysPermitted(t *testing.T) {
	idx := &fsindex.Index{}
	e := Build(idx, &diagram.Model{}, nil)
	assert.True(t, e.IsPermitted(1, 1))
}

func TestEngine_ViolationRequiresObservedAndUnpermitted(t *testing.T) {
	model := &diagram.Model{
		AllowedRules: []diagram.AllowedRule{{Src: 1, Dst: 2}},
	}
	deps := []codedep.CodeDep{
		{Src: codedep.CodeRef{FSID: 1}, Dst: codedep.CodeRef{FSID: 2}}, // permitted
		{Src: codedep.CodeRef{FSID: 2}, Dst: codedep.CodeRef{FSID: 1}}, // not permitted
	}
	e := Build(&fsindex.Index{}, model, deps)

	violations := e.Violations()
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Src)
	assert.Equal(t, 1, violations[0].Dst)
	assert.Equal(t, 1, violations[0].Count)
	assert.Equal(t, 1, e.TotalViolations())
}

func TestEngine_FSGroupPairsAreMutuallyPermitted(t *testing.T) {
	model := &diagram.Model{FSGroups: [][]int{{3, 4}}}
	deps := []codedep.CodeDep{
		{Src: codedep.CodeRef{FSID: 3}, Dst: codedep.CodeRef{FSID: 4}},
		{Src: codedep.CodeRef{FSID: 4}, Dst: codedep.CodeRef{FSID: 3}},
	}
	e := Build(&fsindex.Index{}, model, deps)
	assert.Empty(t, e.Violations())
}

func TestEngine_AddingRuleRemovesExactlyThatViolation(t *testing.T) {
	deps := []codedep.CodeDep{
		{Src: codedep.CodeRef{FSID: 1}, Dst: codedep.CodeRef{FSID: 2}},
		{Src: codedep.CodeRef{FSID: 5}, Dst: codedep.CodeRef{FSID: 6}},
	}
	before := Build(&fsindex.Index{}, &diagram.Model{}, deps)
	require.Len(t, before.Violations(), 2)

	after := Build(&fsindex.Index{}, &diagram.Model{
		AllowedRules: []diagram.AllowedRule{{Src: 1, Dst: 2}},
	}, deps)
	violations := after.Violations()
	require.Len(t, violations, 1)
	assert.Equal(t, 5, violations[0].Src)
	assert.Equal(t, 6, violations[0].Dst)
}

func TestEngine_EmptyInputsProduceNoViolations(t *testing.T) {
	e := Build(&fsindex.Index{}, &diagram.Model{}, nil)
	assert.Empty(t, e.Violations())
	assert.Equal(t, 0, e.TotalViolations())
}
