package ast

import "github.com/funvibe/perldoop/internal/symbols"

// IsNotNull reports whether e can be proven non-null from its syntax alone.
// Variable reads, element accesses, dereferences and undef may be null; an
// assignment is as null as its right-hand side.
func IsNotNull(e Expression) bool {
	switch n := e.(type) {
	case *Variable, *Index, *RefIndex, *Deref, *Undef:
		return false
	case *Assign:
		if n.Operator == "=" {
			return IsNotNull(n.Right)
		}
		return true
	case *List:
		if len(n.Elements) == 1 {
			return IsNotNull(n.Elements[0])
		}
		return true
	case *Ternary:
		return IsNotNull(n.Then) && IsNotNull(n.Else)
	}
	return true
}

// IsConstant reports whether e is a literal constant: a number or a string
// without interpolation.
func IsConstant(e Expression) bool {
	switch n := e.(type) {
	case *Number:
		return true
	case *String:
		return !n.Interpolated()
	}
	return false
}

// IsRepeatable reports whether evaluating e twice is equivalent to
// evaluating it once: no assignment, increment, decrement or call inside.
func IsRepeatable(e Expression) bool {
	repeatable := true
	Inspect(e, func(n Node) bool {
		switch n.(type) {
		case *Assign, *IncDec, *Call:
			repeatable = false
		}
		return repeatable
	})
	return repeatable
}

// IsMultiValued reports whether e yields a flat list that reduces to one
// element in scalar context: calls and parenthesized lists.
func IsMultiValued(e Expression) bool {
	switch n := e.(type) {
	case *Call:
		return true
	case *List:
		return len(n.Elements) != 1
	}
	return false
}

// IsListTarget reports whether an assignment to e is a list assignment.
func IsListTarget(e Expression) bool {
	switch n := e.(type) {
	case *Variable:
		return n.Sigil == symbols.ArraySigil || n.Sigil == symbols.HashSigil
	case *Index:
		return n.Context != symbols.ScalarSigil
	case *RefIndex:
		return n.Context != symbols.ScalarSigil
	case *Deref:
		return n.Sigil == symbols.ArraySigil || n.Sigil == symbols.HashSigil
	case *List:
		return true
	}
	return false
}

// DeclaredVariables returns the variables declared by e (my $x, my ($a, @b)).
func DeclaredVariables(e Expression) []*Variable {
	var out []*Variable
	Inspect(e, func(n Node) bool {
		if v, ok := n.(*Variable); ok && v.Decl != NoDecl {
			out = append(out, v)
		}
		return true
	})
	return out
}
