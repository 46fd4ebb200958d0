package translator

import (
	"errors"
	"testing"

	"github.com/funvibe/perldoop/internal/analyzer"
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/codegen"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/pipeline"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func newTranslator() *Translator {
	st := symbols.NewSymbolTable(nil)
	return New(analyzer.New(st, nil), codegen.NewGenerator(st, codegen.Options{}))
}

func my(sigil symbols.Sigil, name string, t ts.Type) *ast.Variable {
	return &ast.Variable{Name: name, Sigil: sigil, Decl: ast.My, Type: t}
}

func use(sigil symbols.Sigil, name string) *ast.Variable {
	return &ast.Variable{Name: name, Sigil: sigil}
}

func num(text string) *ast.Number {
	return &ast.Number{Text: text}
}

func assign(left, right ast.Expression) ast.Statement {
	return &ast.ExpressionStatement{Expression: &ast.Assign{Operator: "=", Left: left, Right: right}}
}

func codes(t *testing.T, errs []error) []diagnostics.ErrorCode {
	t.Helper()
	out := make([]diagnostics.ErrorCode, len(errs))
	for i, err := range errs {
		var d *diagnostics.DiagnosticError
		if !errors.As(err, &d) {
			t.Fatalf("error %d is not a diagnostic: %v", i, err)
		}
		out[i] = d.Code
	}
	return out
}

func TestFileLevelAssignment(t *testing.T) {
	tr := newTranslator()
	list := &ast.List{Elements: []ast.Expression{num("1"), num("2")}}
	unit := &ast.Unit{Statements: []ast.Statement{
		assign(my(symbols.ArraySigil, "a", ts.ArrayOf(ts.IntegerType)), list),
	}}
	main := tr.Translate(unit)
	if len(tr.Errors()) != 0 {
		t.Fatalf("errors: %v", tr.Errors())
	}
	if len(main) != 1 || main[0] != "a = new Integer[]{1, 2};" {
		t.Errorf("main = %q", main)
	}
	if fields := tr.generator.Fields(); len(fields) != 1 || fields[0].Alias != "a" {
		t.Errorf("fields = %+v", fields)
	}
}

func TestStatementRecovery(t *testing.T) {
	tr := newTranslator()
	undeclared := use(symbols.ScalarSigil, "y")
	undeclared.Pos = diagnostics.Pos{File: "job.pl", Line: 1, Column: 1}
	unit := &ast.Unit{Statements: []ast.Statement{
		assign(undeclared, num("1")),
		assign(my(symbols.ScalarSigil, "f", ts.FileType), num("5")),
		assign(my(symbols.ScalarSigil, "n", ts.IntegerType), num("0x")),
		assign(my(symbols.ScalarSigil, "x", ts.IntegerType), num("5")),
	}}
	main := tr.Translate(unit)

	got := codes(t, tr.Errors())
	want := []diagnostics.ErrorCode{diagnostics.ErrS001, diagnostics.ErrT001, diagnostics.ErrG001}
	if len(got) != len(want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("error %d = %s, want %s", i, got[i], want[i])
		}
	}
	var d *diagnostics.DiagnosticError
	errors.As(tr.Errors()[0], &d)
	if d.Pos.Line != 1 || d.Pos.File != "job.pl" {
		t.Errorf("position = %v", d.Pos)
	}
	if len(main) != 1 || main[0] != "x = 5;" {
		t.Errorf("main = %q", main)
	}
}

func TestNestedStatementRecovery(t *testing.T) {
	tr := newTranslator()
	block := &ast.Block{Statements: []ast.Statement{
		assign(use(symbols.ScalarSigil, "z"), num("1")),
		assign(my(symbols.ScalarSigil, "w", ts.IntegerType), num("2")),
	}}
	main := tr.Translate(&ast.Unit{Statements: []ast.Statement{block}})
	if len(tr.Errors()) != 1 {
		t.Fatalf("errors = %v", tr.Errors())
	}
	if len(main) != 1 || main[0] != "{\n    Integer w = 2;\n}" {
		t.Errorf("main = %q", main)
	}
	if tr.symbols.Depth() != 0 {
		t.Errorf("depth after block = %d", tr.symbols.Depth())
	}
}

func TestSubroutine(t *testing.T) {
	tr := newTranslator()
	body := &ast.Block{Statements: []ast.Statement{
		assign(my(symbols.ScalarSigil, "x", ts.IntegerType), num("5")),
		&ast.Return{Value: use(symbols.ScalarSigil, "x")},
	}}
	def := &ast.SubDef{Name: "five", Returns: ts.IntegerType, Body: body}
	main := tr.Translate(&ast.Unit{Statements: []ast.Statement{def}})
	if len(tr.Errors()) != 0 {
		t.Fatalf("errors: %v", tr.Errors())
	}
	if len(main) != 0 {
		t.Errorf("main = %q, want nothing", main)
	}
	methods := tr.generator.Methods()
	if len(methods) != 1 {
		t.Fatalf("methods = %+v", methods)
	}
	if want := "{\n    Integer x = 5;\n    return x;\n}"; methods[0].Body != want {
		t.Errorf("body =\n%s\nwant\n%s", methods[0].Body, want)
	}
	if methods[0].Param != "pd_1_" {
		t.Errorf("param = %q", methods[0].Param)
	}
	if tr.symbols.Depth() != 0 || len(tr.subs) != 0 {
		t.Errorf("depth = %d, open subs = %d", tr.symbols.Depth(), len(tr.subs))
	}
}

func TestSubroutineLocalsDoNotLeak(t *testing.T) {
	tr := newTranslator()
	def := &ast.SubDef{Name: "f", Body: &ast.Block{Statements: []ast.Statement{
		assign(my(symbols.ScalarSigil, "x", ts.IntegerType), num("1")),
	}}}
	after := assign(use(symbols.ScalarSigil, "x"), num("2"))
	tr.Translate(&ast.Unit{Statements: []ast.Statement{def, after}})
	got := codes(t, tr.Errors())
	if len(got) != 1 || got[0] != diagnostics.ErrS001 {
		t.Errorf("codes = %v, want [S001]", got)
	}
}

func TestForeachImplicitVariable(t *testing.T) {
	tr := newTranslator()
	unit := &ast.Unit{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: my(symbols.ArraySigil, "a", ts.ArrayOf(ts.IntegerType))},
		&ast.Foreach{List: use(symbols.ArraySigil, "a"), Body: &ast.Block{}},
	}}
	main := tr.Translate(unit)
	if len(tr.Errors()) != 0 {
		t.Fatalf("errors: %v", tr.Errors())
	}
	if len(main) != 1 || main[0] != "for (Integer pd_1_ : a) {\n}" {
		t.Errorf("main = %q", main)
	}
}

func TestForeachFailureRestoresScope(t *testing.T) {
	tr := newTranslator()
	unit := &ast.Unit{Statements: []ast.Statement{
		&ast.ExpressionStatement{Expression: my(symbols.ArraySigil, "a", ts.ArrayOf(ts.IntegerType))},
		&ast.Foreach{Var: use(symbols.ScalarSigil, "v"), List: use(symbols.ArraySigil, "a"), Body: &ast.Block{}},
	}}
	tr.Translate(unit)
	got := codes(t, tr.Errors())
	if len(got) != 1 || got[0] != diagnostics.ErrS001 {
		t.Errorf("codes = %v", got)
	}
	if tr.symbols.Depth() != 0 {
		t.Errorf("depth = %d", tr.symbols.Depth())
	}
}

func TestProcessor(t *testing.T) {
	ctx := pipeline.NewContext("job.pdt.yaml", nil, nil, nil)
	ctx.Unit = &ast.Unit{Statements: []ast.Statement{
		assign(my(symbols.ScalarSigil, "x", ts.IntegerType), num("5")),
		assign(use(symbols.ScalarSigil, "q"), num("1")),
	}}
	ctx = pipeline.New(&analyzer.PrepassProcessor{}, &Processor{}).Run(ctx)
	if ctx.Generator == nil {
		t.Fatal("generator not set")
	}
	if len(ctx.Main) != 1 || ctx.Main[0] != "x = 5;" {
		t.Errorf("main = %q", ctx.Main)
	}
	if len(ctx.Errors) != 1 {
		t.Errorf("errors = %v", ctx.Errors)
	}
}
