package codegen

import (
	"errors"
	"testing"

	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func constant(code string, t ts.Type) Operand {
	return Operand{Code: code, Type: t, NotNull: true, Constant: true}
}

func TestBinaryOperators(t *testing.T) {
	var (
		a = Text("a", ts.IntegerType)
		b = Text("b", ts.IntegerType)
		l = Text("l", ts.LongType)
		s = Text("s", ts.StringType)
	)
	tests := []struct {
		name     string
		operator string
		left     Operand
		right    Operand
		want     string
		typ      ts.Type
	}{
		{"integer sum", "+", a, b, "(a + b)", ts.IntegerType},
		{"widened to long", "*", a, l, "(Casting.toLong(a) * l)", ts.LongType},
		{"division is double", "/", a, b, "(Casting.toDouble(a) / Casting.toDouble(b))", ts.DoubleType},
		{"modulo stays integral", "%", a, b, "(a % b)", ts.IntegerType},
		{"numeric equality unboxes", "==", a, b, "(((int) a) == ((int) b))", ts.BooleanType},
		{"comparison with constant", "<", a, constant("3", ts.IntegerType), "(a < 3)", ts.BooleanType},
		{"spaceship", "<=>", a, b, "Pd.compare(Casting.toDouble(a), Casting.toDouble(b))", ts.IntegerType},
		{"power", "**", a, b, "Math.pow(Casting.toDouble(a), Casting.toDouble(b))", ts.DoubleType},
		{"concatenation", ".", s, constant(`"x"`, ts.StringType), `(Casting.toString(s) + "x")`, ts.StringType},
		{"string equality", "eq", s, constant(`"x"`, ts.StringType), `Casting.toString(s).equals("x")`, ts.BooleanType},
		{"string order", "lt", constant(`"a"`, ts.StringType), constant(`"b"`, ts.StringType), `("a".compareTo("b") < 0)`, ts.BooleanType},
		{"repetition", "x", constant(`"-"`, ts.StringType), constant("3", ts.IntegerType), `Pd.repeat("-", 3)`, ts.StringType},
		{"range", "..", constant("1", ts.IntegerType), a, "Pd.range(1, a)", ts.ArrayOf(ts.IntegerType)},
		{"boolean and", "&&", Text("p", ts.BooleanType), Text("q", ts.BooleanType), "(p && q)", ts.BooleanType},
	}
	g := NewGenerator(symbols.NewSymbolTable(nil), Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := g.binaryOp(tt.operator, tt.left, tt.right)
			if err != nil {
				t.Fatal(err)
			}
			if op.Code != tt.want || !ts.Equal(op.Type, tt.typ) {
				t.Errorf("%s = %s %s, want %s %s", tt.operator, op.Code, op.Type, tt.want, tt.typ)
			}
			if !op.NotNull {
				t.Error("operator result should be non-null")
			}
		})
	}
}

func TestBinaryOperatorNullChecks(t *testing.T) {
	g := NewGenerator(symbols.NewSymbolTable(nil), Options{NullChecks: true})
	op, err := g.binaryOp("+", Text("a", ts.IntegerType), constant("1", ts.IntegerType))
	if err != nil {
		t.Fatal(err)
	}
	if want := "(Pd.checkNull(a) + 1)"; op.Code != want {
		t.Errorf("code = %s, want %s", op.Code, want)
	}
}

func TestBinaryOperatorErrors(t *testing.T) {
	g := NewGenerator(symbols.NewSymbolTable(nil), Options{})
	_, err := g.binaryOp("~~", Text("a", ts.IntegerType), Text("b", ts.IntegerType))
	var unsup *UnsupportedError
	if !errors.As(err, &unsup) {
		t.Errorf("smartmatch error = %v, want UnsupportedError", err)
	}
}

func TestLogicalValue(t *testing.T) {
	t.Run("defined-or", func(t *testing.T) {
		g := NewGenerator(symbols.NewSymbolTable(nil), Options{})
		op, err := g.logicalValue("//", Text("a", ts.IntegerType), constant("0", ts.IntegerType), true)
		if err != nil {
			t.Fatal(err)
		}
		if want := "(a != null ? a : 0)"; op.Code != want || !ts.Equal(op.Type, ts.IntegerType) {
			t.Errorf("// = %s %s, want %s", op.Code, op.Type, want)
		}
	})
	t.Run("or keeps the left value", func(t *testing.T) {
		g := NewGenerator(symbols.NewSymbolTable(nil), Options{})
		op, err := g.logicalValue("||", Text("a", ts.IntegerType), Text("b", ts.IntegerType), true)
		if err != nil {
			t.Fatal(err)
		}
		if want := "(Casting.toBoolean(a) ? a : b)"; op.Code != want {
			t.Errorf("|| = %s, want %s", op.Code, want)
		}
	})
	t.Run("and yields the right value", func(t *testing.T) {
		g := NewGenerator(symbols.NewSymbolTable(nil), Options{})
		op, err := g.logicalValue("&&", Text("a", ts.IntegerType), Text("b", ts.IntegerType), true)
		if err != nil {
			t.Fatal(err)
		}
		if want := "(Casting.toBoolean(a) ? b : a)"; op.Code != want {
			t.Errorf("&& = %s, want %s", op.Code, want)
		}
	})
	t.Run("left side evaluated once", func(t *testing.T) {
		g := NewGenerator(symbols.NewSymbolTable(nil), Options{})
		mark := g.Pending().Mark()
		op, err := g.logicalValue("||", NonNull("f()", ts.IntegerType), Text("b", ts.IntegerType), false)
		if err != nil {
			t.Fatal(err)
		}
		if want := "(Casting.toBoolean((pd_1 = f())) ? pd_1 : b)"; op.Code != want {
			t.Errorf("|| = %s, want %s", op.Code, want)
		}
		decls := g.Pending().Drain(mark)
		if len(decls) != 1 || decls[0].String() != "Integer pd_1 = null;" {
			t.Errorf("pending = %v", decls)
		}
	})
}
