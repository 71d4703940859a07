package bt

// updateCompositePriority recurses into every child first, then derives the
// composite's own priority: a priorityFn override always wins; failing
// that, once a child is active the composite simply adopts that child's
// priority; failing that (no active child yet), each kind has its own
// aggregation rule.
func (n *Node) updateCompositePriority(dt float32) {
	for _, c := range n.children {
		c.updatePriority(dt)
	}

	switch {
	case n.priorityFn != nil:
		n.priority = clamp01(n.priorityFn())
	case n.activeChildPos >= 0:
		n.priority = n.children[n.activeChildPos].priority
	default:
		n.priority = n.aggregatePriority()
	}
}

func (n *Node) aggregatePriority() float32 {
	if len(n.children) == 0 {
		return 0
	}
	switch n.kind {
	case KindPriority:
		return n.argmaxChild().priority
	case KindSelector:
		for _, c := range n.children {
			if c.priority > 0 {
				return c.priority
			}
		}
		return 0
	case KindRandom:
		var sum float32
		for _, c := range n.children {
			sum += c.priority
		}
		return sum / float32(len(n.children))
	default:
		return 0
	}
}

// argmaxChild returns the highest-priority child, ties broken by lowest
// child offset (the sibling order compareNodes defines).
func (n *Node) argmaxChild() *Node {
	best := n.children[0]
	for _, c := range n.children[1:] {
		if compareNodes(c, best) {
			best = c
		}
	}
	return best
}

// chooseChild picks which child a composite should run this tick,
// following the arbitration rule for its own kind.
func (n *Node) chooseChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	switch n.kind {
	case KindPriority:
		return n.argmaxChild()
	case KindSelector:
		for _, c := range n.children {
			if c.priority > 0 {
				return c
			}
		}
		return n.children[0]
	case KindRandom:
		return n.chooseRandomChild()
	default:
		return nil
	}
}

// chooseRandomChild samples uniformly across children, or weighted by
// priority when uniformRandom is false, falling back to uniform sampling
// if every child is currently at priority 0.
func (n *Node) chooseRandomChild() *Node {
	if n.uniformRandom {
		return n.children[n.sampleIndex(len(n.children))]
	}

	var sum float32
	for _, c := range n.children {
		sum += c.priority
	}
	if sum <= 0 {
		return n.children[n.sampleIndex(len(n.children))]
	}

	r := n.rng.NextUniform() * sum
	var running float32
	for _, c := range n.children {
		running += c.priority
		if running > r {
			return c
		}
	}
	return n.children[len(n.children)-1]
}

func (n *Node) sampleIndex(count int) int {
	idx := int(n.rng.NextUniform() * float32(count))
	if idx >= count {
		idx = count - 1
	}
	return idx
}

// updateCompositeState implements the arbitration loop: while preempt is
// set, every tick gets a fresh chance to re-pick (and, if the pick
// changes, to preempt whichever child had been running); with preempt
// unset, a child keeps running undisturbed once picked, win or lose
// against its siblings' priorities, until it reaches Finished on its own.
func (n *Node) updateCompositeState(dt float32) NodeState {
	if n.state != StateRunning {
		return n.state
	}

	if n.activeChildPos >= 0 && n.preemptEnabled {
		for i, c := range n.children {
			if i != n.activeChildPos {
				c.decayBenched(dt)
			}
		}
		n.updatePriority(dt)
	}

	if n.activeChildPos < 0 || n.preemptEnabled {
		if picked := n.chooseChild(); picked != nil {
			prevPos := n.activeChildPos
			changed := prevPos < 0 || n.children[prevPos] != picked
			if changed {
				if prevPos >= 0 {
					n.children[prevPos].preempt()
				}
				if picked.state != StateRunning {
					picked.activate()
				}
				n.activeChildPos = picked.childOffset
			}
		}
	}

	if n.activeChildPos < 0 {
		return n.state
	}
	n.state = n.children[n.activeChildPos].update(dt)
	return n.state
}

func (n *Node) preemptComposite() {
	if n.activeChildPos >= 0 {
		n.children[n.activeChildPos].preempt()
	}
	n.activeChildPos = -1
	n.state = StateUninitialized
}

func (n *Node) resetComposite() {
	for _, c := range n.children {
		c.reset()
	}
	n.activeChildPos = -1
	n.state = StateUninitialized
}

func (n *Node) pauseComposite() {
	if n.state != StateRunning {
		return
	}
	n.state = StatePaused
	if n.activeChildPos >= 0 {
		n.children[n.activeChildPos].pause()
	}
}

func (n *Node) resumeComposite() {
	if n.state != StatePaused {
		return
	}
	n.state = StateRunning
	if n.activeChildPos >= 0 {
		n.children[n.activeChildPos].resume()
	}
}

// decayCompositeBenched passes a benched decay tick down to every child of
// this composite. A benched composite updates none of its children, and
// preemptComposite has already cleared activeChildPos, so any child that
// was preempted earlier may hold an armed timer.
func (n *Node) decayCompositeBenched(dt float32) {
	for _, c := range n.children {
		c.decayBenched(dt)
	}
}
