package ast

import (
	"github.com/funvibe/perldoop/internal/symbols"
	"github.com/funvibe/perldoop/internal/typesystem"
)

// ExpressionStatement is an expression followed by ';'.
type ExpressionStatement struct {
	Base
	Expression Expression
}

// Block is { ... }.
type Block struct {
	Base
	Statements []Statement
}

// If is if/unless with optional elsif and else branches.
type If struct {
	Base
	Unless  bool
	Cond    Expression
	Then    *Block
	ElseIfs []*ElseIf
	Else    *Block
}

// ElseIf is one elsif branch.
type ElseIf struct {
	Base
	Cond Expression
	Body *Block
}

// While is while/until; DoWhile marks the do { } while form.
type While struct {
	Base
	Until   bool
	DoWhile bool
	Cond    Expression
	Body    *Block
}

// For is the C-style for (init; cond; post).
type For struct {
	Base
	Init []Expression
	Cond []Expression
	Post []Expression
	Body *Block
}

// Foreach iterates a list. Var is nil for the implicit $_.
type Foreach struct {
	Base
	Var  *Variable
	List Expression
	Body *Block
}

// Return leaves a subroutine; Value may be nil.
type Return struct {
	Base
	Value Expression
}

// LoopControl is next or last.
type LoopControl struct {
	Base
	Keyword string
}

// SubDef defines a subroutine.
type SubDef struct {
	Base
	Name    string
	Returns typesystem.Type // announced return type, may be nil
	Body    *Block
	Sub     *symbols.Sub
}

// PackageDecl is package Foo;.
type PackageDecl struct {
	Base
	Name string
}

// Use is use Foo;. Pragmas such as strict are recorded and ignored.
type Use struct {
	Base
	Name string
}

// PragmaTarget is one variable named by a type pragma.
type PragmaTarget struct {
	Name  string
	Sigil symbols.Sigil
}

// TypePragma announces the type of the next declaration of each target.
type TypePragma struct {
	Base
	Targets []PragmaTarget
	Type    typesystem.Type
}

// Comment is a source comment kept in the output.
type Comment struct {
	Base
	Text string
}

func (e *ExpressionStatement) statementNode() {}
func (b *Block) statementNode()               {}
func (i *If) statementNode()                  {}
func (w *While) statementNode()               {}
func (f *For) statementNode()                 {}
func (f *Foreach) statementNode()             {}
func (r *Return) statementNode()              {}
func (l *LoopControl) statementNode()         {}
func (s *SubDef) statementNode()              {}
func (p *PackageDecl) statementNode()         {}
func (u *Use) statementNode()                 {}
func (t *TypePragma) statementNode()          {}
func (c *Comment) statementNode()             {}

// PredeclarationKey is the registry key of a pragma target.
func PredeclarationKey(sigil symbols.Sigil, name string) string {
	return sigil.String() + name
}
