package ast

import (
	"github.com/funvibe/perldoop/internal/symbols"
	"github.com/funvibe/perldoop/internal/typesystem"
)

// DeclKind is the declarator of a variable.
type DeclKind uint8

const (
	NoDecl DeclKind = iota
	My
	Our
	Local
)

func (d DeclKind) String() string {
	switch d {
	case My:
		return "my"
	case Our:
		return "our"
	case Local:
		return "local"
	}
	return ""
}

// Number is a numeric literal as written: 42, 0x1F, 1_000, 2.5e3.
type Number struct {
	Base
	Text string
}

// StringPart is a literal piece or an interpolated expression.
type StringPart struct {
	Text string
	Expr Expression
}

// String is a string literal; interpolated strings have Expr parts.
type String struct {
	Base
	Parts []StringPart
}

// Interpolated reports whether the literal embeds expressions.
func (s *String) Interpolated() bool {
	for _, p := range s.Parts {
		if p.Expr != nil {
			return true
		}
	}
	return false
}

// Undef is the undef literal.
type Undef struct {
	Base
}

// Variable is $x, @x or %x, possibly package qualified ($Foo::x) and
// possibly declared in place (my $x).
type Variable struct {
	Base
	Name    string
	Package string
	Sigil   symbols.Sigil
	Decl    DeclKind
	Type    typesystem.Type  // inline declared type, may be nil
	Binding *symbols.Binding // resolved by the analyzer
}

// Index is element or slice access into an aggregate: $a[0], @h{'a','b'}.
// Context is the sigil at the access site.
type Index struct {
	Base
	Target  Expression
	Key     Expression
	Brace   bool // {key} rather than [index]
	Context symbols.Sigil
}

// RefIndex is access through a reference: $r->[0], $$r{k}, @{$r}[1,2].
type RefIndex struct {
	Base
	Target  Expression
	Key     Expression
	Brace   bool
	Context symbols.Sigil
}

// Deref is whole dereference: $$r, @$r, %$r.
type Deref struct {
	Base
	Target Expression
	Sigil  symbols.Sigil
}

// MakeRef is \$x, \@a, \%h.
type MakeRef struct {
	Base
	Target Expression
}

// AnonArray is [ ... ].
type AnonArray struct {
	Base
	Elements []Expression
	Type     typesystem.Type // element shape announced by a pragma, may be nil
}

// AnonHash is { ... }.
type AnonHash struct {
	Base
	Elements []Expression
	Type     typesystem.Type
}

// List is a parenthesized list ( ... ).
type List struct {
	Base
	Elements []Expression
}

// Assign is any assignment operator: =, +=, .=, ||= ...
type Assign struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

// IncDec is ++ or -- in prefix or postfix position.
type IncDec struct {
	Base
	Operator string
	Prefix   bool
	Target   Expression
}

// Binary is an infix operator other than assignment.
type Binary struct {
	Base
	Operator string
	Left     Expression
	Right    Expression
}

// Unary is a prefix operator: !, not, -, +.
type Unary struct {
	Base
	Operator string
	Operand  Expression
}

// Ternary is cond ? a : b.
type Ternary struct {
	Base
	Cond Expression
	Then Expression
	Else Expression
}

// Call is a builtin or subroutine call.
type Call struct {
	Base
	Package string
	Name    string
	Args    []Expression
	Sub     *symbols.Sub // resolved user subroutine, nil for builtins
}

func (n *Number) expressionNode()    {}
func (s *String) expressionNode()    {}
func (u *Undef) expressionNode()     {}
func (v *Variable) expressionNode()  {}
func (i *Index) expressionNode()     {}
func (r *RefIndex) expressionNode()  {}
func (d *Deref) expressionNode()     {}
func (m *MakeRef) expressionNode()   {}
func (a *AnonArray) expressionNode() {}
func (h *AnonHash) expressionNode()  {}
func (l *List) expressionNode()      {}
func (a *Assign) expressionNode()    {}
func (i *IncDec) expressionNode()    {}
func (b *Binary) expressionNode()    {}
func (u *Unary) expressionNode()     {}
func (t *Ternary) expressionNode()   {}
func (c *Call) expressionNode()      {}
