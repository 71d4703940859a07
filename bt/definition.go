package bt

import (
	"encoding/json"
	"fmt"
)

// NodeDef is the parsed form of one node in a tree definition document. The
// wire format nests each node as a single-key object, `{"<name>": {...}}`,
// so UnmarshalJSON rejects anything else up front rather than letting a
// malformed document silently pick an arbitrary key (CUBehaviorParser.cpp
// requires the same single-key shape).
type NodeDef struct {
	Name          string
	Type          string
	Preempt       bool
	UniformRandom bool
	TimeDelay     bool
	Delay         float32
	Children      []NodeDef
}

// defaultUniformRandom, defaultTimeDelay, and defaultDelay are §6's
// documented defaults for fields a definition document may omit.
const (
	defaultUniformRandom = true
	defaultTimeDelay     = true
	defaultDelay         = float32(1.0)
)

type nodeDefBody struct {
	Type          string    `json:"type"`
	Preempt       bool      `json:"preempt"`
	UniformRandom *bool     `json:"uniformRandom"`
	TimeDelay     *bool     `json:"timeDelay"`
	Delay         *float32  `json:"delay"`
	Children      []NodeDef `json:"children"`
}

// UnmarshalJSON enforces the single-key-per-level shape of a tree
// definition document before delegating to the node's body fields. Fields a
// document omits get §6's documented defaults rather than Go's zero value:
// uniformRandom and timeDelay default to true, not false, and delay
// defaults to 1.0, not 0 (which buildTimer would otherwise reject outright).
func (d *NodeDef) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("node object must have exactly one key (the node's name), got %d", len(raw))
	}
	for name, body := range raw {
		var b nodeDefBody
		if err := json.Unmarshal(body, &b); err != nil {
			return fmt.Errorf("node %q: %w", name, err)
		}
		d.Name = name
		d.Type = b.Type
		d.Preempt = b.Preempt
		d.UniformRandom = boolOrDefault(b.UniformRandom, defaultUniformRandom)
		d.TimeDelay = boolOrDefault(b.TimeDelay, defaultTimeDelay)
		d.Delay = floatOrDefault(b.Delay, defaultDelay)
		d.Children = b.Children
	}
	return nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOrDefault(v *float32, def float32) float32 {
	if v == nil {
		return def
	}
	return *v
}

// ParseDefinition decodes a tree definition document into a NodeDef tree,
// without yet resolving it into live Nodes (that step needs a Builder, so
// leaf actions can be attached programmatically).
func ParseDefinition(data []byte) (NodeDef, error) {
	var def NodeDef
	if err := json.Unmarshal(data, &def); err != nil {
		return NodeDef{}, invalidDefinitionErr("ParseDefinition", "", "%s", err)
	}
	return def, nil
}

// Builder resolves a parsed NodeDef tree into live Nodes. Leaf actions and
// priority functions are not part of the wire format (they are Go
// closures), so they are bound onto the builder by node name before Build
// is called.
type Builder struct {
	actions     map[string]*Action
	priorityFns map[string]PriorityFunc
	rng         Rng
}

// NewBuilder returns a Builder. rng is used for every Random node the
// definition contains; it may be nil if the definition has none.
func NewBuilder(rng Rng) *Builder {
	return &Builder{
		actions:     make(map[string]*Action),
		priorityFns: make(map[string]PriorityFunc),
		rng:         rng,
	}
}

// BindAction attaches the Action a "leaf" node with the given name should
// drive. Build fails with InvalidDefinition if a leaf node has no bound
// action.
func (b *Builder) BindAction(nodeName string, action *Action) *Builder {
	b.actions[nodeName] = action
	return b
}

// BindActions attaches a batch of actions at once, keyed by leaf node name.
func (b *Builder) BindActions(actions map[string]*Action) *Builder {
	for name, action := range actions {
		b.BindAction(name, action)
	}
	return b
}

// BindPriorityFunc attaches an optional priority override to any node by
// name. Nodes without one fall back to their kind's default priority rule.
func (b *Builder) BindPriorityFunc(nodeName string, fn PriorityFunc) *Builder {
	b.priorityFns[nodeName] = fn
	return b
}

// Build resolves def into a live tree rooted at the returned Node. On
// failure it returns every arity and binding violation found in the
// definition, aggregated into a single InvalidDefinition error.
func (b *Builder) Build(def NodeDef) (*Node, error) {
	errs := newMultiError()
	root := b.build(def, errs)
	if err := errs.errOrNil(); err != nil {
		return nil, invalidDefinitionErr("Builder.Build", def.Name, "%s", err)
	}
	return root, nil
}

func (b *Builder) build(def NodeDef, errs *multiError) *Node {
	switch def.Type {
	case "leaf":
		return b.buildLeaf(def, errs)
	case "timer":
		return b.buildTimer(def, errs)
	case "priority":
		return b.buildComposite(KindPriority, def, errs)
	case "selector":
		return b.buildComposite(KindSelector, def, errs)
	case "random":
		return b.buildComposite(KindRandom, def, errs)
	case "inverter":
		errs.add(fmt.Errorf("node %q: inverter nodes are not implemented (see DESIGN.md open question log)", def.Name))
		return nil
	case "":
		errs.add(fmt.Errorf("node %q: missing \"type\"", def.Name))
		return nil
	default:
		errs.add(fmt.Errorf("node %q: unknown type %q", def.Name, def.Type))
		return nil
	}
}

func (b *Builder) buildLeaf(def NodeDef, errs *multiError) *Node {
	if len(def.Children) != 0 {
		errs.add(fmt.Errorf("leaf node %q must not declare children", def.Name))
	}
	action, ok := b.actions[def.Name]
	if !ok {
		errs.add(fmt.Errorf("leaf node %q has no action bound; call BindAction before Build", def.Name))
		return nil
	}
	return NewLeaf(def.Name, b.priorityFns[def.Name], action)
}

func (b *Builder) buildTimer(def NodeDef, errs *multiError) *Node {
	ok := true
	if len(def.Children) != 1 {
		errs.add(fmt.Errorf("timer node %q must declare exactly one child, got %d", def.Name, len(def.Children)))
		ok = false
	}
	if def.Delay <= 0 {
		errs.add(fmt.Errorf("timer node %q must declare delay > 0", def.Name))
		ok = false
	}
	if !ok {
		return nil
	}
	child := b.build(def.Children[0], errs)
	if child == nil {
		return nil
	}
	return NewTimer(def.Name, child, def.TimeDelay, def.Delay, b.priorityFns[def.Name])
}

func (b *Builder) buildComposite(kind Kind, def NodeDef, errs *multiError) *Node {
	if len(def.Children) == 0 {
		errs.add(fmt.Errorf("%s node %q must declare at least one child", kind, def.Name))
		return nil
	}
	children := make([]*Node, 0, len(def.Children))
	failed := false
	for _, c := range def.Children {
		built := b.build(c, errs)
		if built == nil {
			failed = true
			continue
		}
		children = append(children, built)
	}
	if failed {
		return nil
	}

	priorityFn := b.priorityFns[def.Name]
	if kind == KindRandom {
		if b.rng == nil {
			errs.add(fmt.Errorf("random node %q requires a Builder constructed with a non-nil Rng", def.Name))
			return nil
		}
		return NewRandom(def.Name, children, def.Preempt, def.UniformRandom, b.rng, priorityFn)
	}
	return newComposite(kind, def.Name, children, def.Preempt, priorityFn)
}
