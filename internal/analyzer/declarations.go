package analyzer

import (
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func (a *Analyzer) variable(n *ast.Variable) error {
	if n.Binding != nil {
		return nil
	}
	switch n.Decl {
	case ast.My, ast.Our:
		t, err := a.declaredType(n, nil)
		if err != nil {
			return err
		}
		return a.declare(n, t)
	}
	// local only saves and restores in the source language; the target
	// variable is the existing one
	b, err := a.lookup(n)
	if err != nil {
		return err
	}
	n.Binding = b
	return nil
}

// DeclareLoopVariable binds the variable of a foreach loop. A declared
// loop variable without a type takes the element type of the list; an
// aggregate element is iterated by reference.
func (a *Analyzer) DeclareLoopVariable(n *ast.Variable, list ts.Type) error {
	if n.Binding != nil {
		return nil
	}
	if n.Decl == ast.NoDecl || n.Decl == ast.Local {
		return a.variable(n)
	}
	elem := ts.Elem(list)
	if ts.IsAggregate(elem) {
		elem = ts.RefTo(elem)
	}
	t, err := a.declaredType(n, elem)
	if err != nil {
		return err
	}
	return a.declare(n, t)
}

// declaredType is the inline type, else the predeclared type, else
// fallback.
func (a *Analyzer) declaredType(n *ast.Variable, fallback ts.Type) (ts.Type, error) {
	key := ast.PredeclarationKey(n.Sigil, n.Name)
	predeclared, ok := a.symbolTable.ConsumePredeclaration(key)
	t := n.Type
	switch {
	case t != nil:
	case ok:
		t = predeclared
	case fallback != nil:
		t = fallback
	default:
		return nil, diagnostics.NewError(diagnostics.ErrS002, n.Position(), "%s %s%s declared without a type", n.Decl, n.Sigil, n.Name)
	}
	if !n.Sigil.Accepts(t) {
		return nil, diagnostics.NewError(diagnostics.ErrS002, n.Position(), "%s%s cannot hold %s", n.Sigil, n.Name, ts.Describe(t))
	}
	return t, nil
}

func (a *Analyzer) declare(n *ast.Variable, t ts.Type) error {
	public := n.Decl == ast.Our
	if public && a.symbolTable.Package() == nil {
		return diagnostics.NewError(diagnostics.ErrS004, n.Position(), "our %s%s outside a package", n.Sigil, n.Name)
	}
	if n.Package != "" {
		return diagnostics.NewError(diagnostics.ErrG001, n.Position(), "declaration of qualified name %s::%s", n.Package, n.Name)
	}
	n.Binding = a.symbolTable.Declare(n.Name, n.Sigil, t, public)
	return nil
}

func (a *Analyzer) lookup(n *ast.Variable) (*symbols.Binding, error) {
	if n.Package == "" {
		if b, ok := a.symbolTable.Lookup(n.Name, n.Sigil); ok {
			return b, nil
		}
		return nil, diagnostics.NewError(diagnostics.ErrS001, n.Position(), "undeclared variable %s%s", n.Sigil, n.Name)
	}
	if own := a.symbolTable.Package(); own != nil && own.Name == n.Package {
		if b, ok := own.Var(n.Name, n.Sigil); ok {
			return b, nil
		}
	}
	p, err := a.resolvePackage(n.Package, n.Position())
	if err != nil {
		return nil, err
	}
	if b, ok := p.Var(n.Name, n.Sigil); ok {
		return b, nil
	}
	return nil, diagnostics.NewError(diagnostics.ErrS001, n.Position(), "package %s has no variable %s%s", n.Package, n.Sigil, n.Name)
}

// pragma records the announced type of each target for its next
// declaration.
func (a *Analyzer) pragma(n *ast.TypePragma) {
	for _, target := range n.Targets {
		a.symbolTable.RegisterPredeclaration(ast.PredeclarationKey(target.Sigil, target.Name), n.Type)
	}
}
