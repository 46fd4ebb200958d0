package translator

import (
	"testing"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func declare(v *ast.Variable) ast.Statement {
	return &ast.ExpressionStatement{Expression: v}
}

func callStatement(name string, args ...ast.Expression) ast.Statement {
	return &ast.ExpressionStatement{Expression: &ast.Call{Name: name, Args: args}}
}

func TestBuiltins(t *testing.T) {
	comma := &ast.String{Parts: []ast.StringPart{{Text: ","}}}
	tests := []struct {
		name string
		decl *ast.Variable
		stmt ast.Statement
		want string
	}{
		{
			name: "push onto a list grows in place",
			decl: my(symbols.ArraySigil, "l", ts.ListOf(ts.IntegerType)),
			stmt: callStatement("push", use(symbols.ArraySigil, "l"), num("1"), num("2")),
			want: "Pd.push(l, new Integer[]{1, 2});",
		},
		{
			name: "push onto an array replaces it",
			decl: my(symbols.ArraySigil, "a", ts.ArrayOf(ts.IntegerType)),
			stmt: callStatement("push", use(symbols.ArraySigil, "a"), num("3")),
			want: "a = Pd.push(a, new Integer[]{3});",
		},
		{
			name: "print a joined list",
			decl: my(symbols.ArraySigil, "w", ts.ListOf(ts.StringType)),
			stmt: callStatement("print", &ast.Call{Name: "join", Args: []ast.Expression{comma, use(symbols.ArraySigil, "w")}}),
			want: `Pd.print(new String[]{Pd.join(",", w.toArray(new String[0]))});`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTranslator()
			main := tr.Translate(&ast.Unit{Statements: []ast.Statement{declare(tt.decl), tt.stmt}})
			if len(tr.Errors()) != 0 {
				t.Fatalf("errors: %v", tr.Errors())
			}
			if len(main) != 1 || main[0] != tt.want {
				t.Errorf("main = %q, want %q", main, tt.want)
			}
		})
	}
}

func TestPopNeedsList(t *testing.T) {
	tr := newTranslator()
	main := tr.Translate(&ast.Unit{Statements: []ast.Statement{
		declare(my(symbols.ArraySigil, "a", ts.ArrayOf(ts.IntegerType))),
		callStatement("pop", use(symbols.ArraySigil, "a")),
	}})
	if got := codes(t, tr.Errors()); len(got) != 1 || got[0] != diagnostics.ErrG001 {
		t.Errorf("codes = %v, want [G001]", got)
	}
	if len(main) != 0 {
		t.Errorf("main = %q", main)
	}
}
