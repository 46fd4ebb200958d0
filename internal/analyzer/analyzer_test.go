package analyzer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/pipeline"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func newAnalyzer(importer symbols.Importer) *Analyzer {
	return New(symbols.NewSymbolTable(nil), importer)
}

func scalar(name string, decl ast.DeclKind, t ts.Type) *ast.Variable {
	return &ast.Variable{Name: name, Sigil: symbols.ScalarSigil, Decl: decl, Type: t}
}

func expectCode(t *testing.T, err error, code diagnostics.ErrorCode) {
	t.Helper()
	var d *diagnostics.DiagnosticError
	if !errors.As(err, &d) {
		t.Fatalf("error = %v, want a %s diagnostic", err, code)
	}
	if d.Code != code {
		t.Errorf("code = %s, want %s (%s)", d.Code, code, d.Message)
	}
}

func TestDeclareAndLookup(t *testing.T) {
	a := newAnalyzer(nil)
	decl := scalar("x", ast.My, ts.IntegerType)
	if err := a.Check(decl); err != nil {
		t.Fatal(err)
	}
	use := scalar("x", ast.NoDecl, nil)
	if err := a.Check(use); err != nil {
		t.Fatal(err)
	}
	if use.Binding != decl.Binding {
		t.Errorf("lookup bound %+v, want the declaration", use.Binding)
	}
	if !ts.Equal(use.Binding.Type, ts.IntegerType) {
		t.Errorf("type = %s", use.Binding.Type)
	}
}

func TestUndeclaredVariable(t *testing.T) {
	a := newAnalyzer(nil)
	a.Check(scalar("x", ast.My, ts.IntegerType))
	array := &ast.Variable{Name: "x", Sigil: symbols.ArraySigil}
	expectCode(t, a.Check(array), diagnostics.ErrS001)
}

func TestDeclarationTypes(t *testing.T) {
	tests := []struct {
		name string
		v    *ast.Variable
		code diagnostics.ErrorCode
	}{
		{"untyped", scalar("x", ast.My, nil), diagnostics.ErrS002},
		{"scalar holding an array", scalar("x", ast.My, ts.ArrayOf(ts.IntegerType)), diagnostics.ErrS002},
		{"array holding a map", &ast.Variable{Name: "a", Sigil: symbols.ArraySigil, Decl: ast.My, Type: ts.MapOf(ts.IntegerType)}, diagnostics.ErrS002},
		{"our outside a package", scalar("x", ast.Our, ts.IntegerType), diagnostics.ErrS004},
		{"qualified declaration", &ast.Variable{Name: "x", Package: "Foo", Sigil: symbols.ScalarSigil, Decl: ast.My, Type: ts.IntegerType}, diagnostics.ErrG001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, newAnalyzer(nil).Check(tt.v), tt.code)
		})
	}
}

func TestPredeclarationConsumedOnce(t *testing.T) {
	a := newAnalyzer(nil)
	pragma := &ast.TypePragma{
		Targets: []ast.PragmaTarget{{Name: "x", Sigil: symbols.ScalarSigil}},
		Type:    ts.StringType,
	}
	if err := a.Check(pragma); err != nil {
		t.Fatal(err)
	}
	first := scalar("x", ast.My, nil)
	if err := a.Check(first); err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(first.Binding.Type, ts.StringType) {
		t.Errorf("type = %s, want <string>", first.Binding.Type)
	}
	expectCode(t, a.Check(scalar("x", ast.My, nil)), diagnostics.ErrS002)
}

func TestInlineTypeWinsOverPredeclaration(t *testing.T) {
	a := newAnalyzer(nil)
	a.Check(&ast.TypePragma{
		Targets: []ast.PragmaTarget{{Name: "x", Sigil: symbols.ScalarSigil}},
		Type:    ts.StringType,
	})
	v := scalar("x", ast.My, ts.LongType)
	if err := a.Check(v); err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(v.Binding.Type, ts.LongType) {
		t.Errorf("type = %s, want <long>", v.Binding.Type)
	}
}

func TestOurExportsFromPackage(t *testing.T) {
	a := newAnalyzer(nil)
	a.Prepare(&ast.Unit{Statements: []ast.Statement{&ast.PackageDecl{Name: "Counter"}}})
	v := scalar("total", ast.Our, ts.LongType)
	if err := a.Check(v); err != nil {
		t.Fatal(err)
	}
	p, ok := a.SymbolTable().Registry().Package("Counter")
	if !ok {
		t.Fatal("package not registered")
	}
	if b, ok := p.Var("total", symbols.ScalarSigil); !ok || b != v.Binding {
		t.Errorf("package var = %+v, %v", b, ok)
	}
	if v.Binding.Package != "Counter" {
		t.Errorf("binding package = %q", v.Binding.Package)
	}
}

func TestPrepare(t *testing.T) {
	a := newAnalyzer(nil)
	typed := &ast.SubDef{Name: "count", Returns: ts.IntegerType, Body: &ast.Block{}}
	plain := &ast.SubDef{Name: "run", Body: &ast.Block{}}
	unit := &ast.Unit{Statements: []ast.Statement{
		&ast.Comment{Text: "# header"},
		&ast.Use{Name: "strict"},
		&ast.PackageDecl{Name: "Job"},
		&ast.ExpressionStatement{Expression: &ast.Call{Name: "run"}},
		typed,
		plain,
	}}
	a.Prepare(unit)

	if p := a.SymbolTable().Package(); p == nil || p.Name != "Job" {
		t.Fatalf("package = %+v", p)
	}
	if typed.Sub == nil || !ts.Equal(typed.Sub.Returns, ts.IntegerType) {
		t.Errorf("count = %+v", typed.Sub)
	}
	if plain.Sub == nil || !ts.Equal(plain.Sub.Returns, DefaultReturnType) {
		t.Errorf("run = %+v", plain.Sub)
	}
	// a call before the definition resolves
	call := &ast.Call{Name: "run"}
	if err := a.Check(call); err != nil {
		t.Fatal(err)
	}
	if call.Sub != plain.Sub {
		t.Errorf("call resolved to %+v", call.Sub)
	}
	if err := a.Check(&ast.PackageDecl{Name: "Job"}); err != nil {
		t.Errorf("own package statement: %v", err)
	}
}

func TestLatePackageStatement(t *testing.T) {
	a := newAnalyzer(nil)
	a.Check(scalar("x", ast.My, ts.IntegerType))
	expectCode(t, a.Check(&ast.PackageDecl{Name: "Late"}), diagnostics.ErrG001)
}

func TestCalls(t *testing.T) {
	a := newAnalyzer(nil)
	if err := a.Check(&ast.Call{Name: "print"}); err != nil {
		t.Errorf("builtin: %v", err)
	}
	expectCode(t, a.Check(&ast.Call{Name: "missing"}), diagnostics.ErrS005)
	expectCode(t, a.Check(&ast.Call{Package: "Nowhere", Name: "f"}), diagnostics.ErrS003)
}

func TestPragmaUseIgnored(t *testing.T) {
	a := newAnalyzer(nil)
	for _, name := range []string{"strict", "warnings", "utf8"} {
		if err := a.Check(&ast.Use{Name: name}); err != nil {
			t.Errorf("use %s: %v", name, err)
		}
	}
	expectCode(t, a.Check(&ast.Use{Name: "Other"}), diagnostics.ErrS003)
}

type fakeImporter struct {
	packages map[string]*symbols.Package
	calls    int
}

func (f *fakeImporter) Import(name string) (*symbols.Package, error) {
	f.calls++
	p, ok := f.packages[name]
	if !ok {
		return nil, fmt.Errorf("package %s not in catalog", name)
	}
	return p, nil
}

func newFakeImporter() *fakeImporter {
	p := symbols.NewPackage("Util")
	p.AddVar(&symbols.Binding{Name: "limit", Sigil: symbols.ScalarSigil, Type: ts.IntegerType, Alias: "limit", Public: true})
	p.AddSub(&symbols.Sub{Name: "trim", Alias: "trim", Returns: ts.StringType})
	return &fakeImporter{packages: map[string]*symbols.Package{"Util": p}}
}

func TestImportedPackage(t *testing.T) {
	imp := newFakeImporter()
	a := newAnalyzer(imp)

	if err := a.Check(&ast.Use{Name: "Util"}); err != nil {
		t.Fatal(err)
	}
	v := &ast.Variable{Name: "limit", Package: "Util", Sigil: symbols.ScalarSigil}
	if err := a.Check(v); err != nil {
		t.Fatal(err)
	}
	if v.Binding == nil || v.Binding.Package != "Util" {
		t.Errorf("binding = %+v", v.Binding)
	}
	call := &ast.Call{Package: "Util", Name: "trim"}
	if err := a.Check(call); err != nil {
		t.Fatal(err)
	}
	if call.Sub == nil || !ts.Equal(call.Sub.Returns, ts.StringType) {
		t.Errorf("sub = %+v", call.Sub)
	}
	if imp.calls != 1 {
		t.Errorf("importer called %d times, want 1", imp.calls)
	}

	expectCode(t, a.Check(&ast.Variable{Name: "nope", Package: "Util", Sigil: symbols.ScalarSigil}), diagnostics.ErrS001)
	expectCode(t, a.Check(&ast.Call{Package: "Util", Name: "nope"}), diagnostics.ErrS005)
	expectCode(t, a.Check(&ast.Use{Name: "Missing"}), diagnostics.ErrS003)
}

func TestDeclareLoopVariable(t *testing.T) {
	tests := []struct {
		name string
		v    *ast.Variable
		list ts.Type
		want ts.Type
	}{
		{"element type", scalar("v", ast.My, nil), ts.ArrayOf(ts.StringType), ts.StringType},
		{"map values", scalar("v", ast.My, nil), ts.MapOf(ts.LongType), ts.LongType},
		{"nested aggregate by reference", scalar("row", ast.My, nil), ts.ArrayOf(ts.ListOf(ts.IntegerType)), ts.RefTo(ts.ListOf(ts.IntegerType))},
		{"declared type wins", scalar("v", ast.My, ts.DoubleType), ts.ArrayOf(ts.IntegerType), ts.DoubleType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAnalyzer(nil)
			if err := a.DeclareLoopVariable(tt.v, tt.list); err != nil {
				t.Fatal(err)
			}
			if !ts.Equal(tt.v.Binding.Type, tt.want) {
				t.Errorf("type = %s, want %s", tt.v.Binding.Type, tt.want)
			}
		})
	}
}

func TestDeclareLoopVariableExisting(t *testing.T) {
	a := newAnalyzer(nil)
	decl := scalar("v", ast.My, ts.IntegerType)
	a.Check(decl)
	v := scalar("v", ast.NoDecl, nil)
	if err := a.DeclareLoopVariable(v, ts.ArrayOf(ts.StringType)); err != nil {
		t.Fatal(err)
	}
	if v.Binding != decl.Binding {
		t.Errorf("loop variable bound %+v", v.Binding)
	}
	expectCode(t, a.DeclareLoopVariable(scalar("w", ast.NoDecl, nil), ts.ArrayOf(ts.StringType)), diagnostics.ErrS001)
}

func TestEnterSubBindsArguments(t *testing.T) {
	a := newAnalyzer(nil)
	def := &ast.SubDef{Name: "f", Body: &ast.Block{}}
	param := a.EnterSub(def)
	if param != "pd_1_" {
		t.Errorf("param alias = %q", param)
	}
	b, ok := a.SymbolTable().Lookup("_", symbols.ArraySigil)
	if !ok || !ts.Equal(b.Type, ArgsType) {
		t.Errorf("@_ = %+v, %v", b, ok)
	}
	if !a.SymbolTable().InFunction() {
		t.Error("not in a function scope")
	}
	if def.Sub == nil {
		t.Error("subroutine not declared")
	}
}

func TestPrepassProcessorSkipsMissingUnit(t *testing.T) {
	ctx := (&PrepassProcessor{}).Process(pipeline.NewContext("empty.pdt.yaml", nil, nil, nil))
	if ctx.SymbolTable != nil {
		t.Error("symbol table created without a unit")
	}
}
