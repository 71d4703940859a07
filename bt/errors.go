package bt

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ErrorKind classifies the errors this package can return, matching the
// error taxonomy clients are expected to branch on.
type ErrorKind int

const (
	KindInvalidDefinition ErrorKind = iota
	KindDuplicateName
	KindNotFound
	KindInvalidState
	KindInUse
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidDefinition:
		return "InvalidDefinition"
	case KindDuplicateName:
		return "DuplicateName"
	case KindNotFound:
		return "NotFound"
	case KindInvalidState:
		return "InvalidState"
	case KindInUse:
		return "InUse"
	default:
		return "Unknown"
	}
}

// TreeError is the concrete error type returned by every exported operation
// in this package that can fail. Op names the operation that detected the
// failure ("Manager.AddTree", "Action.Start", ...); Name is the tree or node
// name involved, when there is one.
type TreeError struct {
	Kind ErrorKind
	Op   string
	Name string
	err  error
}

func (e *TreeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s %q: %v", e.Op, e.Kind, e.Name, e.err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.err)
}

// Unwrap exposes the wrapped cause so errors.Is/errors.As keep working
// through a TreeError.
func (e *TreeError) Unwrap() error { return e.err }

func newTreeError(kind ErrorKind, op, name, format string, args ...interface{}) *TreeError {
	return &TreeError{
		Kind: kind,
		Op:   op,
		Name: name,
		err:  errors.Errorf(format, args...),
	}
}

// Is makes errors.Is(err, target) succeed for any *TreeError target of the
// same Kind, since TreeError values otherwise carry call-specific context
// that would defeat equality comparison. A bare ErrorKind is not an error
// and cannot be the target.
func (e *TreeError) Is(target error) bool {
	other, ok := target.(*TreeError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func invalidDefinitionErr(op, name, format string, args ...interface{}) *TreeError {
	return newTreeError(KindInvalidDefinition, op, name, format, args...)
}

func duplicateNameErr(op, name string) *TreeError {
	return newTreeError(KindDuplicateName, op, name, "tree %q already registered", name)
}

func notFoundErr(op, name string) *TreeError {
	return newTreeError(KindNotFound, op, name, "%q not found", name)
}

func invalidStateErr(op, name string, got fmt.Stringer) *TreeError {
	return newTreeError(KindInvalidState, op, name, "precondition violated, current state %s", got)
}

func inUseErr(op, name string) *TreeError {
	return newTreeError(KindInUse, op, name, "tree %q is running or paused", name)
}

// multiError aggregates several *TreeError values (or any error) produced
// while walking a definition tree, so a caller sees every arity violation in
// a subtree instead of only the first.
type multiError struct {
	*multierror.Error
}

func newMultiError() *multiError {
	return &multiError{Error: &multierror.Error{
		ErrorFormat: func(es []error) string {
			if len(es) == 1 {
				return es[0].Error()
			}
			msgs := make([]string, len(es))
			for i, e := range es {
				msgs[i] = e.Error()
			}
			return fmt.Sprintf("%d definition errors occurred:\n\t%s", len(es), joinTab(msgs))
		},
	}}
}

func joinTab(msgs []string) string {
	out := ""
	for i, m := range msgs {
		if i > 0 {
			out += "\n\t"
		}
		out += m
	}
	return out
}

func (m *multiError) add(err error) {
	if err == nil {
		return
	}
	m.Error = multierror.Append(m.Error, err)
}

func (m *multiError) errOrNil() error {
	if m.Error == nil || len(m.Error.Errors) == 0 {
		return nil
	}
	return m.Error
}
