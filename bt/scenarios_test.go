package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioPriorityPreemption exercises the literal priority-preemption
// scenario: L1 outranks L2 for two ticks, drops below it on the third, and
// must be preempted (terminated) exactly once before L2 takes over.
func TestScenarioPriorityPreemption(t *testing.T) {
	tick := 0
	terminated := 0
	l1 := NewLeaf("L1", func() float32 {
		if tick < 2 {
			return 0.9
		}
		return 0.1
	}, NewAction("L1", nil, func(float32) bool { return false }, func() { terminated++ }))
	l2 := NewLeaf("L2", constPriority(0.5), NewAction("L2", nil, func(float32) bool { return false }, nil))
	root := NewPriority("root", []*Node{l1, l2}, true, nil)

	root.Start()
	require.Equal(t, 0, root.ActiveChildPos())

	for i := 0; i < 3; i++ {
		tick = i
		root.Update(0.016)
	}

	assert.Equal(t, 1, terminated, "L1 must be preempted exactly once")
	assert.Equal(t, 1, root.ActiveChildPos(), "L2 must be active after tick 3")
	assert.Equal(t, StateRunning, l2.State())
	assert.Equal(t, StateUninitialized, l1.State())
}

// TestScenarioTimerPostCooldown drives a Timer nested under a preempting
// Priority composite: T1 wins tick 1, a rising L2 legitimately outranks and
// preempts it at tick 2, and T1 must report priority 0 for the whole 1.0s
// cooldown, decaying even though it is benched rather than active, and
// recover its (now-lower) child's priority only once the cooldown elapses.
func TestScenarioTimerPostCooldown(t *testing.T) {
	l1Priority := float32(1)
	l1 := NewLeaf("L1", func() float32 { return l1Priority }, NewAction("L1", nil, func(float32) bool { return false }, nil))
	t1 := NewTimer("T1", l1, false, 1.0, nil)
	l2Priority := float32(0.2)
	l2 := NewLeaf("L2", func() float32 { return l2Priority }, NewAction("L2", nil, func(float32) bool { return false }, nil))
	root := NewPriority("root", []*Node{t1, l2}, true, nil)

	root.Start()
	require.Equal(t, 0, root.ActiveChildPos(), "T1 wins tick 1 at priority 1 vs L2's 0.2")

	// L1's own priority drops and L2's rises, so L2 legitimately outranks
	// T1 (whose priority tracks L1's while it isn't delaying) at tick 2.
	l1Priority = 0.1
	l2Priority = 0.9
	root.Update(0.25)
	require.Equal(t, 1, root.ActiveChildPos(), "L2 preempts T1 at tick 2")
	assert.Equal(t, StateUninitialized, t1.State())
	assert.True(t, t1.delaying)

	l2Priority = 0.05
	// 0.25 is exactly representable in binary floating point, so four
	// ticks sum to exactly 1.0 with no accumulation drift.
	for i := 0; i < 3; i++ {
		root.Update(0.25)
		assert.Equal(t, float32(0), t1.Priority(), "T1 must stay at 0 for the whole cooldown window")
		assert.Equal(t, 1, root.ActiveChildPos(), "L2 keeps running while T1 is at 0")
	}

	root.Update(0.25)
	assert.False(t, t1.delaying, "cooldown must have fully elapsed")
	assert.Equal(t, l1Priority, t1.Priority(), "T1 reports its child's priority again once the cooldown clears")
}

// TestScenarioRandomUniformDistribution is the statistical property test
// for P6/scenario 5: long-run frequencies should track 1/n for a uniform
// draw across equally-weighted children.
func TestScenarioRandomUniformDistribution(t *testing.T) {
	const runs = 12000
	const n = 3
	counts := make([]int, n)

	children := make([]*Node, n)
	for i := range children {
		children[i] = NewLeaf("c", constPriority(1), countingAction("c", 1))
	}
	root := NewRandom("root", children, true, true, NewDefaultRng(1234), nil)

	for i := 0; i < runs; i++ {
		root.Reset()
		root.Start()
		counts[root.ActiveChildPos()]++
	}

	expected := float64(runs) / float64(n)
	for i, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.15, "child %d frequency out of tolerance", i)
	}
}

// TestScenarioWeightedRandomDistribution is P6 proper: weighted selection
// frequency should track p_i / sum(p) over many runs.
func TestScenarioWeightedRandomDistribution(t *testing.T) {
	const runs = 12000
	priorities := []float32{0.1, 0.6, 0.3}
	counts := make([]int, len(priorities))

	children := make([]*Node, len(priorities))
	for i, p := range priorities {
		children[i] = NewLeaf("c", constPriority(p), countingAction("c", 1))
	}
	root := NewRandom("root", children, true, false, NewDefaultRng(5678), nil)

	for i := 0; i < runs; i++ {
		root.Reset()
		root.Start()
		counts[root.ActiveChildPos()]++
	}

	var sum float32
	for _, p := range priorities {
		sum += p
	}
	for i, p := range priorities {
		expected := float64(runs) * float64(p/sum)
		assert.InDelta(t, expected, float64(counts[i]), expected*0.15, "child %d frequency out of tolerance", i)
	}
}

// TestScenarioResetIdempotence runs a tree for N ticks, resets it, and
// replays the same dt stream and priority functions, asserting the
// sequence of active leaves per tick is identical both times.
func TestScenarioResetIdempotence(t *testing.T) {
	build := func() (*Node, []*Node) {
		a := NewLeaf("a", constPriority(0.4), countingAction("a", 2))
		b := NewLeaf("b", constPriority(0.6), countingAction("b", 2))
		c := NewLeaf("c", constPriority(0.5), countingAction("c", 2))
		root := NewPriority("root", []*Node{a, b, c}, true, nil)
		return root, []*Node{a, b, c}
	}

	trace := func(root *Node) []int {
		var seq []int
		root.Start()
		seq = append(seq, root.ActiveChildPos())
		for i := 0; i < 5; i++ {
			root.Update(0.1)
			seq = append(seq, root.ActiveChildPos())
		}
		return seq
	}

	root, _ := build()
	first := trace(root)

	root.Reset()
	second := trace(root)

	assert.Equal(t, first, second)
}
