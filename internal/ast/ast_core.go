package ast

import (
	"errors"

	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/typesystem"
)

// ErrAlreadyGenerated is returned when a node's output is written twice.
var ErrAlreadyGenerated = errors.New("node output already generated")

// Node is the base interface for all tree nodes.
type Node interface {
	Position() diagnostics.Pos
	Output() Output
	SetOutput(Output) error
	Generated() bool
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Output is the generated target text of a node and its static type.
type Output struct {
	Code string
	Type typesystem.Type
	// Raw marks a Ref-typed output whose code yields the referent itself
	// (an anonymous constructor or a nested element) rather than a cell.
	Raw bool
}

// Base carries the position and the write-once output of a node.
type Base struct {
	Pos       diagnostics.Pos
	out       Output
	generated bool
}

func (b *Base) Position() diagnostics.Pos { return b.Pos }
func (b *Base) Output() Output            { return b.out }
func (b *Base) Generated() bool           { return b.generated }

// SetOutput records the generated output. It fails on a second call.
func (b *Base) SetOutput(o Output) error {
	if b.generated {
		return ErrAlreadyGenerated
	}
	b.out = o
	b.generated = true
	return nil
}

// Unit is the root of a translated file.
type Unit struct {
	File       string
	Class      string // target class name; derived from File when empty
	Statements []Statement
}

// Context is how the consumer of an expression reads it.
type Context uint8

const (
	ScalarContext Context = iota
	ListContext
	BooleanContext
	VoidContext
)

func (c Context) String() string {
	switch c {
	case ScalarContext:
		return "scalar"
	case ListContext:
		return "list"
	case BooleanContext:
		return "boolean"
	case VoidContext:
		return "void"
	}
	return "unknown"
}

// Usage describes how an expression is used by its parent. The driver
// threads it down the walk in place of parent pointers.
type Usage struct {
	Context Context
	// Lvalue is set on assignment targets.
	Lvalue bool
	// ReadWrite is set on targets that are both read and written
	// (compound assignment, increment, decrement).
	ReadWrite bool
	// Delete is set on the operand of delete.
	Delete bool
	// FirstOfMany is set when the consumer receives one value of a list
	// assignment, so a multi-valued source reduces to its first element.
	FirstOfMany bool
	// InCollection is set on elements of a list or anonymous constructor.
	InCollection bool
	// AccessBase is set on the base of an element access or dereference.
	AccessBase bool
}

// Scalar, ListUsage, Boolean and Void are the plain usages.
var (
	Scalar    = Usage{Context: ScalarContext}
	ListUsage = Usage{Context: ListContext}
	Boolean   = Usage{Context: BooleanContext}
	Void      = Usage{Context: VoidContext}
)
