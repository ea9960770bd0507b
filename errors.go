package xsdedit

import (
	"errors"
	"fmt"
)

// Sentinel reasons for rejected mutations. Wrapped by CommandError so
// callers can branch with errors.Is.
var (
	ErrCycle              = errors.New("would create a cycle")
	ErrAlreadyOwned       = errors.New("node already has a parent")
	ErrNotAChild          = errors.New("node is not a child of the target")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrImmutableFacet     = errors.New("facet value is fixed")
	ErrInvalidName        = errors.New("name must not be empty")
	ErrInvalidCardinality = errors.New("invalid cardinality")
	ErrContentConflict    = errors.New("conflicting simple type content")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// History exhaustion signals. Informational, not faults.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrReentrant     = errors.New("command execution in progress")
)

// ParseError describes a malformed input document. A failed parse yields
// no tree; the caller keeps its previous good tree.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// CommandError describes a rejected mutation. The model is unchanged when
// one is returned.
type CommandError struct {
	Cmd string
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func commandErr(cmd string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Cmd: cmd, Err: err}
}

// SerializationError indicates the serializer met a tree it cannot emit.
// This cannot happen for trees produced by this package and is treated as
// an internal-invariant violation.
type SerializationError struct {
	Node    *Node
	Message string
}

func (e *SerializationError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("serialize %s: %s", e.Node.Kind(), e.Message)
	}
	return fmt.Sprintf("serialize: %s", e.Message)
}
