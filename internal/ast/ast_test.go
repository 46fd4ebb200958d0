package ast

import (
	"errors"
	"testing"

	"github.com/funvibe/perldoop/internal/symbols"
	"github.com/funvibe/perldoop/internal/typesystem"
)

func scalar(name string) *Variable {
	return &Variable{Name: name, Sigil: symbols.ScalarSigil}
}

func TestSetOutputWriteOnce(t *testing.T) {
	n := &Number{Text: "1"}
	if err := n.SetOutput(Output{Code: "1", Type: typesystem.IntegerType}); err != nil {
		t.Fatalf("first SetOutput: %v", err)
	}
	err := n.SetOutput(Output{Code: "2", Type: typesystem.IntegerType})
	if !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("second SetOutput = %v, want ErrAlreadyGenerated", err)
	}
	if n.Output().Code != "1" {
		t.Errorf("output overwritten: %q", n.Output().Code)
	}
}

func TestIsNotNull(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want bool
	}{
		{"variable", scalar("x"), false},
		{"index", &Index{Target: scalar("a"), Key: &Number{Text: "0"}}, false},
		{"undef", &Undef{}, false},
		{"number", &Number{Text: "3"}, true},
		{"call", &Call{Name: "f"}, true},
		{"assign from literal", &Assign{Operator: "=", Left: scalar("x"), Right: &Number{Text: "1"}}, true},
		{"assign from variable", &Assign{Operator: "=", Left: scalar("x"), Right: scalar("y")}, false},
		{"parenthesized variable", &List{Elements: []Expression{scalar("x")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotNull(tt.expr); got != tt.want {
				t.Errorf("IsNotNull = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRepeatable(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want bool
	}{
		{"variable", scalar("x"), true},
		{"nested index", &Index{Target: scalar("a"), Key: &Binary{Operator: "+", Left: scalar("i"), Right: &Number{Text: "1"}}}, true},
		{"call", &Call{Name: "f"}, false},
		{"increment inside", &Index{Target: scalar("a"), Key: &IncDec{Operator: "++", Target: scalar("i")}}, false},
		{"assignment inside", &List{Elements: []Expression{&Assign{Operator: "=", Left: scalar("x"), Right: &Number{Text: "1"}}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRepeatable(tt.expr); got != tt.want {
				t.Errorf("IsRepeatable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsConstant(t *testing.T) {
	lit := &String{Parts: []StringPart{{Text: "abc"}}}
	interp := &String{Parts: []StringPart{{Text: "a"}, {Expr: scalar("x")}}}
	if !IsConstant(lit) || IsConstant(interp) || !IsConstant(&Number{Text: "1"}) || IsConstant(scalar("x")) {
		t.Error("IsConstant misclassified a literal")
	}
}

func TestDeclaredVariables(t *testing.T) {
	a := &Variable{Name: "a", Sigil: symbols.ScalarSigil, Decl: My}
	b := &Variable{Name: "b", Sigil: symbols.ArraySigil, Decl: My}
	assign := &Assign{Operator: "=", Left: &List{Elements: []Expression{a, b}}, Right: &Call{Name: "f"}}
	got := DeclaredVariables(assign)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("DeclaredVariables = %v", got)
	}
	if !IsListTarget(assign.Left) || IsListTarget(a) || !IsListTarget(b) {
		t.Error("IsListTarget misclassified a target")
	}
}
