package analyzer

import (
	"unicode"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/symbols"
)

func (a *Analyzer) packageDecl(n *ast.PackageDecl) error {
	if p := a.symbolTable.Package(); p != nil && p.Name == n.Name {
		return nil
	}
	if a.symbolTable.CreatePackage(n.Name) {
		return nil
	}
	return diagnostics.NewError(diagnostics.ErrG001, n.Position(), "package %s must be the first declaration of the file", n.Name)
}

// isPragma reports module names like strict or warnings, which only tune
// the source compiler.
func isPragma(name string) bool {
	return name != "" && unicode.IsLower(rune(name[0]))
}

func (a *Analyzer) use(n *ast.Use) error {
	if isPragma(n.Name) {
		return nil
	}
	_, err := a.resolvePackage(n.Name, n.Position())
	return err
}

// resolvePackage finds a package translated earlier in this run, or
// imports it from the catalog of previous runs.
func (a *Analyzer) resolvePackage(name string, pos diagnostics.Pos) (*symbols.Package, error) {
	reg := a.symbolTable.Registry()
	if p, ok := reg.Package(name); ok {
		return p, nil
	}
	if a.importer == nil {
		return nil, diagnostics.NewError(diagnostics.ErrS003, pos, "unknown package %s", name)
	}
	p, err := a.importer.Import(name)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrS003, pos, err)
	}
	reg.Put(p)
	return p, nil
}

func (a *Analyzer) call(n *ast.Call) error {
	if n.Sub != nil {
		return nil
	}
	if n.Package == "" && config.Builtins[n.Name] {
		return nil
	}
	if n.Package == "" {
		if s, ok := a.symbolTable.LookupSub("", n.Name); ok {
			n.Sub = s
			return nil
		}
		return diagnostics.NewError(diagnostics.ErrS005, n.Position(), "unknown subroutine %s", n.Name)
	}
	if own := a.symbolTable.Package(); own != nil && own.Name == n.Package {
		if s, ok := own.Sub(n.Name); ok {
			n.Sub = s
			return nil
		}
	}
	p, err := a.resolvePackage(n.Package, n.Position())
	if err != nil {
		return err
	}
	s, ok := p.Sub(n.Name)
	if !ok {
		return diagnostics.NewError(diagnostics.ErrS005, n.Position(), "unknown subroutine %s::%s", n.Package, n.Name)
	}
	n.Sub = s
	return nil
}
