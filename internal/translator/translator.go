// Package translator drives the translation of one unit: it walks the tree,
// resolves names through the analyzer and generates every node after its
// children.
package translator

import (
	"github.com/tliron/commonlog"

	"github.com/funvibe/perldoop/internal/analyzer"
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/codegen"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

var log = commonlog.GetLogger(config.TranslatorLog)

// Translator walks a unit. Errors are recovered at statement granularity:
// a failed statement leaves no text and the walk resumes with the next one.
type Translator struct {
	analyzer  *analyzer.Analyzer
	generator *codegen.Generator
	symbols   *symbols.SymbolTable
	subs      []*ast.SubDef
	errors    []error
}

func New(a *analyzer.Analyzer, g *codegen.Generator) *Translator {
	return &Translator{analyzer: a, generator: g, symbols: a.SymbolTable()}
}

// Errors returns the diagnostics recorded so far in source order.
func (t *Translator) Errors() []error {
	return t.errors
}

// Translate walks every top-level statement and returns the text of those
// that generated, in source order. Subroutines are collected by the
// generator as methods.
func (t *Translator) Translate(unit *ast.Unit) []string {
	var main []string
	for _, s := range unit.Statements {
		if !t.statement(s) {
			continue
		}
		if code := s.Output().Code; code != "" {
			main = append(main, code)
		}
	}
	log.Infof("translated %s: %d statements, %d methods, %d errors",
		unit.File, len(unit.Statements), len(t.generator.Methods()), len(t.errors))
	return main
}

// statement translates s and reports whether it generated.
func (t *Translator) statement(s ast.Statement) bool {
	depth := t.symbols.Depth()
	subs := len(t.subs)
	t.generator.Begin()
	if err := t.walkStatement(s); err != nil {
		t.generator.Abort()
		t.symbols.Restore(depth)
		for len(t.subs) > subs {
			t.exitSub()
		}
		t.report(s, err)
		return false
	}
	return true
}

func (t *Translator) walkStatement(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		if err := t.expr(n.Expression, ast.Void); err != nil {
			return err
		}
	case *ast.Block:
		t.symbols.EnterScope(symbols.ScopeBlock)
		t.statements(n.Statements)
		t.symbols.ExitScope()
	case *ast.If:
		if err := t.expr(n.Cond, ast.Boolean); err != nil {
			return err
		}
		t.body(n.Then)
		for _, ei := range n.ElseIfs {
			if err := t.expr(ei.Cond, ast.Boolean); err != nil {
				return err
			}
			t.body(ei.Body)
			if err := t.generate(ei, ast.Void); err != nil {
				return err
			}
		}
		t.body(n.Else)
	case *ast.While:
		if n.DoWhile {
			t.body(n.Body)
		}
		if err := t.expr(n.Cond, ast.Boolean); err != nil {
			return err
		}
		if !n.DoWhile {
			t.body(n.Body)
		}
	case *ast.For:
		return t.forStatement(n)
	case *ast.Foreach:
		return t.foreach(n)
	case *ast.Return:
		if n.Value != nil {
			if err := t.expr(n.Value, t.returnUsage()); err != nil {
				return err
			}
		}
	case *ast.SubDef:
		return t.subDef(n)
	case *ast.PackageDecl, *ast.Use, *ast.TypePragma:
		if err := t.check(s); err != nil {
			return err
		}
	}
	return t.generate(s, ast.Void)
}

func (t *Translator) statements(list []ast.Statement) {
	for _, s := range list {
		t.statement(s)
	}
}

// body translates a nested block. A nil block is skipped.
func (t *Translator) body(b *ast.Block) {
	if b != nil {
		t.statement(b)
	}
}

// forStatement scopes the variables of the loop header to the loop.
func (t *Translator) forStatement(n *ast.For) error {
	t.symbols.EnterScope(symbols.ScopeBlock)
	defer t.symbols.ExitScope()
	for _, e := range n.Init {
		if err := t.expr(e, ast.Void); err != nil {
			return err
		}
	}
	for _, e := range n.Cond {
		if err := t.expr(e, ast.Boolean); err != nil {
			return err
		}
	}
	for _, e := range n.Post {
		if err := t.expr(e, ast.Void); err != nil {
			return err
		}
	}
	t.body(n.Body)
	return t.generate(n, ast.Void)
}

// foreach binds the loop variable after the list is generated, so an
// untyped declaration takes the element type. The implicit variable is $_.
func (t *Translator) foreach(n *ast.Foreach) error {
	if err := t.expr(n.List, ast.ListUsage); err != nil {
		return err
	}
	t.symbols.EnterScope(symbols.ScopeBlock)
	defer t.symbols.ExitScope()
	if n.Var == nil {
		n.Var = &ast.Variable{Name: "_", Sigil: symbols.ScalarSigil, Decl: ast.My}
		n.Var.Pos = n.Pos
	}
	if err := t.analyzer.DeclareLoopVariable(n.Var, n.List.Output().Type); err != nil {
		return err
	}
	if err := t.generate(n.Var, ast.Void); err != nil {
		return err
	}
	t.body(n.Body)
	return t.generate(n, ast.Void)
}

func (t *Translator) subDef(n *ast.SubDef) error {
	param := t.analyzer.EnterSub(n)
	t.generator.EnterSub(n.Sub, param)
	t.subs = append(t.subs, n)
	t.body(n.Body)
	err := t.generate(n, ast.Void)
	t.exitSub()
	return err
}

func (t *Translator) exitSub() {
	t.generator.ExitSub()
	t.subs = t.subs[:len(t.subs)-1]
	t.symbols.ExitScope()
}

// returnUsage reads a returned value in list context when the subroutine
// returns an aggregate.
func (t *Translator) returnUsage() ast.Usage {
	if n := len(t.subs); n > 0 {
		if sub := t.subs[n-1].Sub; sub != nil && ts.IsAggregate(sub.Returns) {
			return ast.ListUsage
		}
	}
	return ast.Scalar
}

func (t *Translator) check(n ast.Node) error {
	if err := t.analyzer.Check(n); err != nil {
		return diagnose(n, err)
	}
	return nil
}

func (t *Translator) generate(n ast.Node, u ast.Usage) error {
	if err := t.generator.Generate(n, u); err != nil {
		return diagnose(n, err)
	}
	return nil
}

func (t *Translator) report(s ast.Statement, err error) {
	err = diagnose(s, err)
	log.Debugf("statement at %s dropped: %s", s.Position(), err)
	t.errors = append(t.errors, err)
}
