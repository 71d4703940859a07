package bt

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns a set of named trees and drives their ticks. It is the
// host-facing entry point: callers register trees once, then call Update
// once per frame.
type Manager struct {
	mu    sync.Mutex
	log   *zap.Logger
	trees map[string]*Node
}

// NewManager returns an empty Manager. log may be nil, in which case the
// Manager logs nothing.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:   log,
		trees: make(map[string]*Node),
	}
}

// AddTree registers root under name. It fails with DuplicateName if a tree
// with that name is already registered.
func (m *Manager) AddTree(name string, root *Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.trees[name]; exists {
		return duplicateNameErr("Manager.AddTree", name)
	}
	m.trees[name] = root
	m.log.Debug("tree registered", zap.String("tree", name))
	return nil
}

// AddTreeFromDefinition builds the already-parsed def with builder, then registers
// the result under name. It is a convenience wrapper around Builder.Build
// followed by AddTree, for callers that have not already built a tree and
// would otherwise have no use for the intermediate *Node.
func (m *Manager) AddTreeFromDefinition(name string, def NodeDef, builder *Builder) error {
	root, err := builder.Build(def)
	if err != nil {
		return err
	}
	return m.AddTree(name, root)
}

// GetTree returns the tree registered under name, or a NotFound error.
func (m *Manager) GetTree(name string) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.trees[name]
	if !ok {
		return nil, notFoundErr("Manager.GetTree", name)
	}
	return root, nil
}

// RemoveTree unregisters a tree. It fails with InUse if the tree is
// currently Running or Paused: callers must Preempt or let it finish
// first, so a tree is never torn out from under an in-flight action.
func (m *Manager) RemoveTree(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.trees[name]
	if !ok {
		return notFoundErr("Manager.RemoveTree", name)
	}
	if root.State() == StateRunning || root.State() == StatePaused {
		return inUseErr("Manager.RemoveTree", name)
	}
	delete(m.trees, name)
	m.log.Debug("tree removed", zap.String("tree", name))
	return nil
}

// StartTree runs Start on the named tree's root and returns the resulting
// state. Each call's start log line carries a fresh correlation ID, so the
// starts of a single tree started and restarted many times are
// distinguishable; later log lines for the tree do not carry the ID.
func (m *Manager) StartTree(name string) (NodeState, error) {
	root, err := m.GetTree(name)
	if err != nil {
		return StateUninitialized, err
	}
	runID := uuid.New()
	m.log.Info("tree started", zap.String("tree", name), zap.String("run_id", runID.String()))
	return root.Start(), nil
}

// Update ticks every registered tree currently in the Running state by dt
// seconds. Trees that are Uninitialized, Paused, or Finished are left
// untouched: callers drive those transitions explicitly via StartTree,
// PauseTree/ResumeTree, and ResetTree.
func (m *Manager) Update(dt float32) {
	m.mu.Lock()
	trees := make(map[string]*Node, len(m.trees))
	for name, root := range m.trees {
		trees[name] = root
	}
	m.mu.Unlock()

	for name, root := range trees {
		if root.State() != StateRunning {
			continue
		}
		state := root.Update(dt)
		if state == StateFinished {
			m.log.Debug("tree finished", zap.String("tree", name))
		}
	}
}

// PauseTree pauses the named tree in place.
func (m *Manager) PauseTree(name string) error {
	root, err := m.GetTree(name)
	if err != nil {
		return err
	}
	root.Pause()
	return nil
}

// ResumeTree resumes the named tree from a paused state.
func (m *Manager) ResumeTree(name string) error {
	root, err := m.GetTree(name)
	if err != nil {
		return err
	}
	root.Resume()
	return nil
}

// ResetTree returns the named tree to Uninitialized, ready for a fresh
// StartTree call.
func (m *Manager) ResetTree(name string) error {
	root, err := m.GetTree(name)
	if err != nil {
		return err
	}
	root.Reset()
	return nil
}

// TreeState reports the current state of the named tree's root, without
// requiring the caller to hold onto the *Node returned by GetTree.
func (m *Manager) TreeState(name string) (NodeState, error) {
	root, err := m.GetTree(name)
	if err != nil {
		return StateUninitialized, err
	}
	return root.State(), nil
}

// FindNode looks up a node by name within the named tree.
func (m *Manager) FindNode(treeName, nodeName string) (*Node, error) {
	root, err := m.GetTree(treeName)
	if err != nil {
		return nil, err
	}
	found := root.FindByName(nodeName)
	if found == nil {
		return nil, notFoundErr("Manager.FindNode", nodeName)
	}
	return found, nil
}
