package bt

// updateTimerPriority recurses into the child first, then derives the
// timer's own priority from the current delaying/time_delay flags. It does
// not itself advance current_delay: decay is a time-advancing, mutating
// operation and belongs to update(dt), matching where the delay elapses in
// practice, so a node's priority can be read any number of times in a tick
// without double-counting simulated time.
func (n *Node) updateTimerPriority(dt float32) {
	n.child.updatePriority(dt)

	switch {
	case n.priorityFn != nil:
		n.priority = clamp01(n.priorityFn())
	case n.delaying && !n.timeDelay:
		// post-cooldown: report 0 while serving the penalty
		n.priority = 0
	default:
		n.priority = n.child.priority
	}
}

// decayTimer advances current_delay by dt while delaying, clearing delaying
// once the delay has fully elapsed. Shared by updateTimerState (the timer is
// on its parent's active path and receives update(dt) directly) and
// decayTimerBenched (the timer is not, and would otherwise never see dt).
func (n *Node) decayTimer(dt float32) {
	if !n.delaying {
		return
	}
	n.currentDelay += dt
	if n.currentDelay >= n.delay {
		n.delaying = false
		n.currentDelay = 0
	}
}

// updateTimerState implements §4.4.1's update(dt): decay runs first in every
// state except Paused (a paused timer keeps its countdown where it is), then
// the child is ticked unless still serving a pre-delay. This path advances
// current_delay whenever update(dt) is called directly rather than through
// decayTimerBenched: a standalone timer, a timer that is the tree's root, or
// a timer that is its parent's active child.
func (n *Node) updateTimerState(dt float32) NodeState {
	if n.state != StatePaused {
		n.decayTimer(dt)
	}

	if n.state != StateRunning {
		return n.state
	}
	if n.delaying && n.timeDelay {
		return n.state
	}
	if n.child.state == StateUninitialized {
		n.child.activate()
	}
	n.state = n.child.update(dt)
	return n.state
}

// decayTimerBenched advances this timer's cooldown for a tick where it is
// not the active child of a preempting parent and so update(dt) will not be
// called on it this tick; it then propagates to whichever of its own
// descendants is on its active path, in case a post-cooldown timer sits
// nested deeper than directly under the preempting composite.
func (n *Node) decayTimerBenched(dt float32) {
	n.decayTimer(dt)
	n.child.decayBenched(dt)
}

// preemptTimer aborts the child and, for a post-cooldown timer, starts the
// penalty window right away: the cooldown is meant to run from the moment
// the timer stops being active, not from whenever it next gets polled.
func (n *Node) preemptTimer() {
	n.child.preempt()
	n.state = StateUninitialized
	if !n.timeDelay {
		n.delaying = true
		n.currentDelay = 0
	}
}

func (n *Node) resetTimer() {
	n.child.reset()
	n.delaying = false
	n.currentDelay = 0
	n.state = StateUninitialized
}

func (n *Node) pauseTimer() {
	if n.state != StateRunning {
		return
	}
	n.state = StatePaused
	n.child.pause()
}

func (n *Node) resumeTimer() {
	if n.state != StatePaused {
		return
	}
	n.state = StateRunning
	n.child.resume()
}
