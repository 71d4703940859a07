package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorPicksFirstNonZeroAndRunsToFinish(t *testing.T) {
	a := NewLeaf("a", constPriority(0), countingAction("a", 1))
	b := NewLeaf("b", constPriority(0.7), countingAction("b", 1))
	c := NewLeaf("c", constPriority(0.5), countingAction("c", 1))
	root := NewSelector("root", []*Node{a, b, c}, false, nil)

	require.Equal(t, StateRunning, root.Start())
	require.Equal(t, 1, root.ActiveChildPos())
	assert.Equal(t, ActionInactive, c.Action().State(), "c must never be touched once b is selected")

	assert.Equal(t, StateFinished, root.Update(0.1))
	assert.Equal(t, StateFinished, b.State())
	assert.Equal(t, ActionInactive, a.Action().State())
	assert.Equal(t, ActionInactive, c.Action().State())
}

func TestPriorityWithoutPreemptRunsActiveChildToCompletion(t *testing.T) {
	low := NewLeaf("low", constPriority(0.2), countingAction("low", 3))
	high := NewLeaf("high", constPriority(0.9), countingAction("high", 1))
	root := NewPriority("root", []*Node{low, high}, false, nil)

	require.Equal(t, StateRunning, root.Start())
	require.Equal(t, 1, root.ActiveChildPos(), "high starts out ahead")

	// Flip the priorities after high becomes active: without preempt this
	// must not matter (P2).
	root.children[0].priorityFn = constPriority(0.99)
	root.children[1].priorityFn = constPriority(0.1)

	assert.Equal(t, StateFinished, root.Update(0.1), "high keeps running to completion regardless of low's new priority")
	assert.Equal(t, 1, root.ActiveChildPos())
	assert.Equal(t, ActionInactive, low.Action().State())
}

func TestPriorityWithPreemptSwitchesWhenOrderChanges(t *testing.T) {
	a := NewLeaf("a", constPriority(0.3), countingAction("a", 5))
	b := NewLeaf("b", constPriority(0.8), countingAction("b", 5))
	root := NewPriority("root", []*Node{a, b}, true, nil)

	root.Start()
	require.Equal(t, 1, root.ActiveChildPos())
	assert.Equal(t, ActionRunning, b.Action().State())

	a.priorityFn = constPriority(0.95)
	root.Update(0.1)

	assert.Equal(t, 0, root.ActiveChildPos(), "a now outranks b and must preempt it")
	assert.Equal(t, StateUninitialized, b.State())
	assert.Equal(t, ActionInactive, b.Action().State())
	assert.Equal(t, ActionRunning, a.Action().State())
}

func TestPriorityPreemptIsStableWhenOrderUnchanged(t *testing.T) {
	a := NewLeaf("a", constPriority(0.3), countingAction("a", 5))
	b := NewLeaf("b", constPriority(0.8), countingAction("b", 5))
	root := NewPriority("root", []*Node{a, b}, true, nil)

	root.Start()
	require.Equal(t, 1, root.ActiveChildPos())

	root.Update(0.1)
	root.Update(0.1)

	assert.Equal(t, 1, root.ActiveChildPos(), "b still outranks a, no preemption should occur")
	assert.Equal(t, StateRunning, b.State())
}

func TestRandomUniformStaysWithinChildCount(t *testing.T) {
	children := []*Node{
		NewLeaf("a", constPriority(1), countingAction("a", 1)),
		NewLeaf("b", constPriority(1), countingAction("b", 1)),
		NewLeaf("c", constPriority(1), countingAction("c", 1)),
	}
	root := NewRandom("root", children, true, true, NewDefaultRng(42), nil)

	for i := 0; i < 20; i++ {
		root.Reset()
		root.Start()
		assert.GreaterOrEqual(t, root.ActiveChildPos(), 0)
		assert.Less(t, root.ActiveChildPos(), 3)
	}
}

func TestRandomWeightedNeverPicksAZeroPriorityChildWhenAnyIsPositive(t *testing.T) {
	children := []*Node{
		NewLeaf("zero", constPriority(0), countingAction("zero", 1)),
		NewLeaf("nonzero", constPriority(1), countingAction("nonzero", 1)),
	}
	root := NewRandom("root", children, true, false, NewDefaultRng(7), nil)

	for i := 0; i < 50; i++ {
		root.Reset()
		root.Start()
		assert.Equal(t, 1, root.ActiveChildPos())
	}
}

func TestResetClearsStateAndSameSeedReproducesDraw(t *testing.T) {
	children := []*Node{
		NewLeaf("a", constPriority(0.5), countingAction("a", 1)),
		NewLeaf("b", constPriority(0.5), countingAction("b", 1)),
	}
	root := NewRandom("root", children, true, false, NewDefaultRng(99), nil)

	root.Start()
	first := root.ActiveChildPos()
	root.Reset()
	assert.Equal(t, StateUninitialized, root.State())
	assert.Equal(t, -1, root.ActiveChildPos())

	root2Children := []*Node{
		NewLeaf("a", constPriority(0.5), countingAction("a", 1)),
		NewLeaf("b", constPriority(0.5), countingAction("b", 1)),
	}
	root2 := NewRandom("root", root2Children, true, false, NewDefaultRng(99), nil)
	root2.Start()
	assert.Equal(t, first, root2.ActiveChildPos(), "identical seed must reproduce identical draws")
}

func TestCompositeArityValidationViaBuilder(t *testing.T) {
	def := NodeDef{
		Name: "root",
		Type: "priority",
	}
	b := NewBuilder(NewDefaultRng(1))
	_, err := b.Build(def)
	require.Error(t, err)

	var treeErr *TreeError
	require.ErrorAs(t, err, &treeErr)
	assert.Equal(t, KindInvalidDefinition, treeErr.Kind)
}
