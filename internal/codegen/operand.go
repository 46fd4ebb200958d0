package codegen

import (
	"github.com/funvibe/perldoop/internal/ast"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// Operand is generated code with the facts the caster needs about it.
type Operand struct {
	Code string
	Type ts.Type
	// NotNull: the value is provably non-null.
	NotNull bool
	// Constant: Code is a numeric or string literal.
	Constant bool
	// Undef: Code is the undef literal.
	Undef bool
	// MultiValued: a call or parenthesized list that reduces to one element
	// in scalar context.
	MultiValued bool
	// FirstOfMany: reduce to the first rather than the last element.
	FirstOfMany bool
	// Raw: a Ref-typed value whose code yields the referent, not a cell.
	Raw bool
}

// OperandOf reads the cached output of a generated expression.
func OperandOf(e ast.Expression) Operand {
	out := e.Output()
	_, undef := e.(*ast.Undef)
	return Operand{
		Code:        out.Code,
		Type:        out.Type,
		NotNull:     ast.IsNotNull(e),
		Constant:    ast.IsConstant(e),
		Undef:       undef,
		MultiValued: ast.IsMultiValued(e) && ts.IsArrayOrList(out.Type),
		Raw:         out.Raw && ts.IsRef(out.Type),
	}
}

// Text returns a plain operand for generated code.
func Text(code string, t ts.Type) Operand {
	return Operand{Code: code, Type: t}
}

// NonNull returns a plain operand known to be non-null.
func NonNull(code string, t ts.Type) Operand {
	return Operand{Code: code, Type: t, NotNull: true}
}
