package bt

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Kind tags the five concrete node variants this runtime implements. The runtime
// uses a single tagged struct with enum+switch dispatch rather than an
// interface-per-variant hierarchy: the capability set (updatePriority,
// update, preempt, reset, pause, resume) is small and closed, so a sealed
// set of kinds is both simpler and cheaper than embedding-based
// polymorphism would be.
type Kind int

const (
	KindLeaf Kind = iota
	KindTimer
	KindPriority
	KindSelector
	KindRandom
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "Leaf"
	case KindTimer:
		return "Timer"
	case KindPriority:
		return "Priority"
	case KindSelector:
		return "Selector"
	case KindRandom:
		return "Random"
	default:
		return "Unknown"
	}
}

// PriorityFunc computes a node's priority for the current tick. It is an
// external collaborator: the core never assumes anything about what it
// reads, only that it returns a value the node will clamp to [0,1].
type PriorityFunc func() float32

// Node is a single node in a behavior tree: a leaf, a timer decorator, or
// one of the three composite variants. Node is built exclusively through
// the NewXxx constructors or through Build (see definition.go); the zero
// value is not usable.
type Node struct {
	name        string
	kind        Kind
	state       NodeState
	priority    float32
	priorityFn  PriorityFunc
	parent      *Node
	childOffset int

	// leaf
	action *Action

	// timer (the only decorator this core implements, see DESIGN.md)
	child        *Node
	timeDelay    bool
	delay        float32
	currentDelay float32
	delaying     bool

	// composite (priority / selector / random)
	children       []*Node
	preemptEnabled bool
	activeChildPos int
	uniformRandom  bool
	rng            Rng
}

// NewLeaf builds a terminal node driving action. priorityFn may be nil, in
// which case the leaf reports priority 0 every tick (§4.3).
func NewLeaf(name string, priorityFn PriorityFunc, action *Action) *Node {
	return &Node{
		name:           name,
		kind:           KindLeaf,
		state:          StateUninitialized,
		priorityFn:     priorityFn,
		action:         action,
		childOffset:    -1,
		activeChildPos: -1,
	}
}

// NewTimer builds the pre-delay/post-cooldown decorator described in
// §4.4.1. timeDelay selects pre-delay (true) or post-cooldown (false)
// semantics; delay must be > 0.
func NewTimer(name string, child *Node, timeDelay bool, delay float32, priorityFn PriorityFunc) *Node {
	n := &Node{
		name:           name,
		kind:           KindTimer,
		state:          StateUninitialized,
		priorityFn:     priorityFn,
		child:          child,
		timeDelay:      timeDelay,
		delay:          delay,
		childOffset:    -1,
		activeChildPos: -1,
	}
	child.parent = n
	child.childOffset = 0
	return n
}

func newComposite(kind Kind, name string, children []*Node, preempt bool, priorityFn PriorityFunc) *Node {
	n := &Node{
		name:           name,
		kind:           kind,
		state:          StateUninitialized,
		priorityFn:     priorityFn,
		children:       children,
		preemptEnabled: preempt,
		activeChildPos: -1,
		childOffset:    -1,
	}
	for i, c := range children {
		c.parent = n
		c.childOffset = i
	}
	return n
}

// NewPriority builds a composite that always runs its highest-priority
// child, ties broken by lowest child offset.
func NewPriority(name string, children []*Node, preempt bool, priorityFn PriorityFunc) *Node {
	return newComposite(KindPriority, name, children, preempt, priorityFn)
}

// NewSelector builds a composite that runs the first child with non-zero
// priority, falling back to the first child if every child is at 0.
func NewSelector(name string, children []*Node, preempt bool, priorityFn PriorityFunc) *Node {
	return newComposite(KindSelector, name, children, preempt, priorityFn)
}

// NewRandom builds a composite that samples a child via rng, uniformly if
// uniformRandom is set, else weighted by priority (falling back to uniform
// if every child is at priority 0). rng must not be nil.
func NewRandom(name string, children []*Node, preempt, uniformRandom bool, rng Rng, priorityFn PriorityFunc) *Node {
	n := newComposite(KindRandom, name, children, preempt, priorityFn)
	n.uniformRandom = uniformRandom
	n.rng = rng
	return n
}

// Name returns the node's name. Names need not be unique within a tree
// (I6); FindByName returns the first match in definition order.
func (n *Node) Name() string { return n.name }

// Kind returns which of the five constructible node variants this is.
func (n *Node) Kind() Kind { return n.kind }

// State returns the node's current lifecycle state.
func (n *Node) State() NodeState { return n.state }

// Priority returns the value computed by the most recent UpdatePriority or
// Update call, always in [0,1].
func (n *Node) Priority() float32 { return n.priority }

// ChildOffset returns this node's index within its parent's child list, or
// -1 if it is a root. A timer's single child has offset 0.
func (n *Node) ChildOffset() int { return n.childOffset }

// Parent returns the non-owning back-reference to this node's parent, or
// nil if this is a tree root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns this node's children: a copy of the composite's child
// list, a single-element slice for a timer, or nil for a leaf.
func (n *Node) Children() []*Node {
	switch n.kind {
	case KindTimer:
		return []*Node{n.child}
	case KindLeaf:
		return nil
	default:
		out := make([]*Node, len(n.children))
		copy(out, n.children)
		return out
	}
}

// Action returns the Action a leaf drives, or nil for every other kind.
func (n *Node) Action() *Action { return n.action }

// ActiveChildPos returns the index of the composite's currently running
// child, or -1 if none. It is always -1 for leaves and timers.
func (n *Node) ActiveChildPos() int { return n.activeChildPos }

// FindByName does a depth-first search from n and returns the first node
// (including n itself) with the given name, matching I6's "lookup returns
// first match" wording (CUBehaviorNode.cpp's getNodeByName).
func (n *Node) FindByName(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.Children() {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// ChildByPriorityIndex returns the composite child with the i-th highest
// priority, ties broken the same way arbitration breaks them. It panics if
// n is not a composite or i is out of range (CUCompositeNode.cpp's
// getChildByPriorityIndex).
func (n *Node) ChildByPriorityIndex(i int) *Node {
	if n.kind == KindLeaf || n.kind == KindTimer {
		panic("bt: ChildByPriorityIndex called on a non-composite node")
	}
	ordered := make([]*Node, len(n.children))
	copy(ordered, n.children)
	for a := 0; a < len(ordered); a++ {
		best := a
		for b := a + 1; b < len(ordered); b++ {
			if compareNodes(ordered[b], ordered[best]) {
				best = b
			}
		}
		ordered[a], ordered[best] = ordered[best], ordered[a]
	}
	return ordered[i]
}

// String renders a one-line debug summary of the node.
func (n *Node) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(name:%s, state:%s, priority:%.3f", n.kind, n.name, n.state, n.priority)
	switch n.kind {
	case KindLeaf:
		fmt.Fprintf(&b, ", action:%s", n.action.State())
	case KindTimer:
		fmt.Fprintf(&b, ", child:%s, delaying:%t", n.child.name, n.delaying)
	default:
		fmt.Fprintf(&b, ", children:%d, active:%d", len(n.children), n.activeChildPos)
	}
	b.WriteString(")")
	return b.String()
}

// compareNodes implements the sibling order a ≻ b used by Priority
// arbitration and ChildByPriorityIndex: higher priority wins, ties broken
// by lower child offset.
func compareNodes(a, b *Node) bool {
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.childOffset < b.childOffset
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// Start runs UpdatePriority, transitions the node to Running, and performs
// one zero-dt Update, as specified for the host-facing entry point into a
// tree (§4.2).
func (n *Node) Start() NodeState {
	n.updatePriority(0)
	n.activate()
	n.update(0)
	return n.state
}

// Update advances the node (and, transitively, whichever descendants are
// on its active path) by dt seconds.
func (n *Node) Update(dt float32) NodeState {
	return n.update(dt)
}

// UpdatePriority recomputes the node's priority (and its descendants') as
// of the last tick, without advancing simulated time. Start, and Update on
// a composite with preemption enabled, recompute priorities automatically;
// this is for inspection between ticks.
func (n *Node) UpdatePriority() {
	n.updatePriority(0)
}

// Preempt aborts this subtree: any running descendant's action is
// terminated, and every node on the active path returns to Uninitialized.
func (n *Node) Preempt() { n.preempt() }

// Reset recursively returns the subtree to Uninitialized and restores
// builder-time mutable state (a Timer's delaying/current_delay).
func (n *Node) Reset() { n.resetNode() }

// Pause recursively pauses whichever descendants are currently Running.
// Nodes that are not Running are left untouched.
func (n *Node) Pause() { n.pause() }

// Resume recursively resumes whichever descendants are currently Paused.
// Nodes that are not Paused are left untouched.
func (n *Node) Resume() { n.resume() }

// activate transitions n into Running. If n is a pre-delay Timer entering
// Running from anything other than Paused, it also arms the delay: a
// resume (Paused -> Running) must not restart a delay already in progress.
func (n *Node) activate() {
	if n.kind == KindTimer && n.timeDelay && n.state != StatePaused {
		n.delaying = true
		n.currentDelay = 0
	}
	n.state = StateRunning
}

func (n *Node) updatePriority(dt float32) {
	switch n.kind {
	case KindLeaf:
		n.updateLeafPriority()
	case KindTimer:
		n.updateTimerPriority(dt)
	default:
		n.updateCompositePriority(dt)
	}
}

func (n *Node) update(dt float32) NodeState {
	switch n.kind {
	case KindLeaf:
		return n.updateLeafState(dt)
	case KindTimer:
		return n.updateTimerState(dt)
	default:
		return n.updateCompositeState(dt)
	}
}

func (n *Node) preempt() {
	switch n.kind {
	case KindLeaf:
		n.preemptLeaf()
	case KindTimer:
		n.preemptTimer()
	default:
		n.preemptComposite()
	}
}

func (n *Node) resetNode() {
	switch n.kind {
	case KindLeaf:
		n.resetLeaf()
	case KindTimer:
		n.resetTimer()
	default:
		n.resetComposite()
	}
}

func (n *Node) pause() {
	switch n.kind {
	case KindLeaf:
		n.pauseLeaf()
	case KindTimer:
		n.pauseTimer()
	default:
		n.pauseComposite()
	}
}

func (n *Node) resume() {
	switch n.kind {
	case KindLeaf:
		n.resumeLeaf()
	case KindTimer:
		n.resumeTimer()
	default:
		n.resumeComposite()
	}
}

// decayBenched advances a Timer's mutable delay bookkeeping for a node that
// will not otherwise receive an update(dt) call this tick because it is not
// on its parent's active path. A leaf has no such state; a composite passes
// the call down to every one of its children, so a post-cooldown Timer
// nested several levels below a preempted sibling still counts down.
func (n *Node) decayBenched(dt float32) {
	switch n.kind {
	case KindTimer:
		n.decayTimerBenched(dt)
	case KindLeaf:
	default:
		n.decayCompositeBenched(dt)
	}
}
