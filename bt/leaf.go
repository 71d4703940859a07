package bt

// updateLeafPriority clamps the leaf's priorityFn output to [0,1], or
// reports 0 if no priorityFn was supplied (§4.3).
func (n *Node) updateLeafPriority() {
	if n.priorityFn != nil {
		n.priority = clamp01(n.priorityFn())
		return
	}
	n.priority = 0
}

// updateLeafState starts the underlying action on first entry, ticks it,
// and maps ActionFinished onto StateFinished.
func (n *Node) updateLeafState(dt float32) NodeState {
	if n.state != StateRunning {
		return n.state
	}
	if n.action.State() == ActionInactive {
		_ = n.action.Start()
	}
	if n.action.Update(dt) == ActionFinished {
		n.state = StateFinished
	}
	return n.state
}

// preemptLeaf aborts the underlying action, if it is running, and returns
// the leaf to Uninitialized.
func (n *Node) preemptLeaf() {
	if n.action.State() == ActionRunning {
		_ = n.action.Terminate()
	}
	n.state = StateUninitialized
}

// resetLeaf unwinds the action back to Inactive regardless of which state
// it is currently in, then returns the leaf to Uninitialized.
func (n *Node) resetLeaf() {
	switch n.action.State() {
	case ActionRunning:
		_ = n.action.Terminate()
	case ActionPaused:
		_ = n.action.Resume()
		_ = n.action.Terminate()
	case ActionFinished:
		_ = n.action.Reset()
	}
	n.state = StateUninitialized
}

func (n *Node) pauseLeaf() {
	if n.state != StateRunning {
		return
	}
	n.state = StatePaused
	if n.action.State() == ActionRunning {
		_ = n.action.Pause()
	}
}

func (n *Node) resumeLeaf() {
	if n.state != StatePaused {
		return
	}
	n.state = StateRunning
	if n.action.State() == ActionPaused {
		_ = n.action.Resume()
	}
}
