package analyzer

import (
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// DefaultReturnType is the return type of a subroutine without a type
// pragma: a flat list of dynamic values.
var DefaultReturnType = ts.ArrayOf(ts.BoxType)

// ArgsType is the type of @_ inside a subroutine.
var ArgsType = ts.ListOf(ts.BoxType)

// Analyzer resolves names against the symbol table as the driver walks the
// tree. Checks run bottom-up, right before a node is generated.
type Analyzer struct {
	symbolTable *symbols.SymbolTable
	importer    symbols.Importer // may be nil: only packages of this run resolve
}

// New creates an Analyzer over a unit's symbol table.
func New(st *symbols.SymbolTable, importer symbols.Importer) *Analyzer {
	return &Analyzer{symbolTable: st, importer: importer}
}

func (a *Analyzer) SymbolTable() *symbols.SymbolTable { return a.symbolTable }

// Prepare runs before the walk: it opens the unit's package when the unit
// starts with a package statement and declares every top-level subroutine,
// so calls may precede definitions.
func (a *Analyzer) Prepare(unit *ast.Unit) {
prelude:
	for _, s := range unit.Statements {
		switch n := s.(type) {
		case *ast.Comment, *ast.Use, *ast.TypePragma:
		case *ast.PackageDecl:
			a.symbolTable.CreatePackage(n.Name)
			break prelude
		default:
			break prelude
		}
	}
	for _, s := range unit.Statements {
		if n, ok := s.(*ast.SubDef); ok {
			a.declareSub(n)
		}
	}
}

// Check resolves the names used by node. It is called after the node's
// children are checked and generated.
func (a *Analyzer) Check(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Variable:
		return a.variable(n)
	case *ast.Call:
		return a.call(n)
	case *ast.PackageDecl:
		return a.packageDecl(n)
	case *ast.Use:
		return a.use(n)
	case *ast.TypePragma:
		a.pragma(n)
	}
	return nil
}

func (a *Analyzer) declareSub(n *ast.SubDef) {
	if n.Sub != nil {
		return
	}
	returns := n.Returns
	if returns == nil {
		returns = DefaultReturnType
	}
	n.Sub = a.symbolTable.DeclareSub(n.Name, returns)
}

// EnterSub opens the scope of a subroutine body and binds @_. It returns
// the alias of the argument list.
func (a *Analyzer) EnterSub(n *ast.SubDef) string {
	a.declareSub(n)
	a.symbolTable.EnterScope(symbols.ScopeFunction)
	return a.symbolTable.Bind("_", symbols.ArraySigil, ArgsType, false)
}
