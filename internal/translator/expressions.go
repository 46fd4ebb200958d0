package translator

import (
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/codegen"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/symbols"
)

// expr walks e post-order. Each child is walked with the usage its parent
// gives it; the right side of an assignment is walked before the left so
// `my $x = $x` reads the outer variable.
func (t *Translator) expr(e ast.Expression, u ast.Usage) error {
	if err := t.children(e, u); err != nil {
		return err
	}
	if err := t.check(e); err != nil {
		return err
	}
	return t.generate(e, u)
}

func (t *Translator) exprs(list []ast.Expression, u ast.Usage) error {
	for _, e := range list {
		if err := t.expr(e, u); err != nil {
			return err
		}
	}
	return nil
}

var element = ast.Usage{Context: ast.ListContext, InCollection: true}

func (t *Translator) children(e ast.Expression, u ast.Usage) error {
	switch n := e.(type) {
	case *ast.String:
		for _, p := range n.Parts {
			if p.Expr != nil {
				if err := t.expr(p.Expr, ast.Scalar); err != nil {
					return err
				}
			}
		}
	case *ast.Index:
		return t.access(n.Target, n.Key, ast.Usage{Context: ast.ListContext, AccessBase: true}, n.Context)
	case *ast.RefIndex:
		return t.access(n.Target, n.Key, ast.Usage{Context: ast.ScalarContext, AccessBase: true}, n.Context)
	case *ast.Deref:
		return t.expr(n.Target, ast.Usage{Context: ast.ScalarContext, AccessBase: true})
	case *ast.MakeRef:
		return t.expr(n.Target, ast.Scalar)
	case *ast.AnonArray:
		return t.exprs(n.Elements, element)
	case *ast.AnonHash:
		return t.exprs(n.Elements, element)
	case *ast.List:
		return t.exprs(n.Elements, listElement(n, u))
	case *ast.Assign:
		return t.assign(n, u)
	case *ast.IncDec:
		return t.expr(n.Target, ast.Usage{Context: ast.ScalarContext, ReadWrite: true})
	case *ast.Binary:
		return t.binary(n, u)
	case *ast.Unary:
		operand := ast.Scalar
		if n.Operator == "!" || n.Operator == "not" {
			operand = ast.Boolean
		}
		return t.expr(n.Operand, operand)
	case *ast.Ternary:
		if err := t.expr(n.Cond, ast.Boolean); err != nil {
			return err
		}
		branch := ast.Scalar
		if u.Context == ast.ListContext {
			branch = ast.ListUsage
		}
		if err := t.expr(n.Then, branch); err != nil {
			return err
		}
		return t.expr(n.Else, branch)
	case *ast.Call:
		isSub := n.Package != "" || !config.Builtins[n.Name]
		for i, arg := range n.Args {
			if err := t.expr(arg, codegen.ArgUsage(n.Name, i, isSub)); err != nil {
				return err
			}
		}
	}
	return nil
}

// access walks the base and key of an element access. A key list or a
// slice sigil reads the keys as a collection.
func (t *Translator) access(target, key ast.Expression, base ast.Usage, ctx symbols.Sigil) error {
	if err := t.expr(target, base); err != nil {
		return err
	}
	keyUsage := ast.Scalar
	if l, ok := key.(*ast.List); (ok && len(l.Elements) != 1) || ctx != symbols.ScalarSigil {
		keyUsage = element
	}
	return t.expr(key, keyUsage)
}

// listElement is the usage of the elements of a parenthesized list.
func listElement(n *ast.List, u ast.Usage) ast.Usage {
	switch {
	case u.Context == ast.VoidContext && !u.Lvalue:
		return ast.Void
	case u.Lvalue:
		return u
	case len(n.Elements) != 1:
		return element
	}
	return u
}

func (t *Translator) assign(n *ast.Assign, u ast.Usage) error {
	right := ast.Scalar
	if ast.IsListTarget(n.Left) {
		right = ast.ListUsage
	}
	if err := t.expr(n.Right, right); err != nil {
		return err
	}
	left := ast.Usage{Context: ast.ScalarContext, ReadWrite: true}
	if n.Operator == "=" {
		left = ast.Usage{Context: ast.ScalarContext, Lvalue: true}
		if u.Context == ast.VoidContext {
			left.Context = ast.VoidContext
		}
	}
	return t.expr(n.Left, left)
}

func isLogical(op string) bool {
	switch op {
	case "&&", "||", "//", "and", "or":
		return true
	}
	return false
}

func (t *Translator) binary(n *ast.Binary, u ast.Usage) error {
	if !isLogical(n.Operator) {
		if err := t.expr(n.Left, ast.Scalar); err != nil {
			return err
		}
		return t.expr(n.Right, ast.Scalar)
	}
	left := ast.Scalar
	if u.Context == ast.BooleanContext || u.Context == ast.VoidContext {
		left = ast.Boolean
	}
	if err := t.expr(n.Left, left); err != nil {
		return err
	}
	right := left
	if u.Context == ast.VoidContext {
		right = ast.Void
	}
	return t.expr(n.Right, right)
}
