package codegen

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func (g *Generator) number(n *ast.Number) (ast.Output, error) {
	code, t, err := numberLiteral(n.Text)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: code, Type: t}, nil
}

// numberLiteral renders a source numeral as a target literal of the
// smallest fitting type: Integer, then Long, then Double.
func numberLiteral(text string) (string, ts.Type, error) {
	s := strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(s)
	decimal := !strings.HasPrefix(lower, "0x") && !strings.HasPrefix(lower, "0b") && strings.ContainsAny(lower, ".e")
	if decimal {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return "", nil, unsupported("numeric literal %s", text)
		}
		return s, ts.DoubleType, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && !strings.HasPrefix(lower, "0") {
			return strconv.FormatFloat(f, 'g', -1, 64) + "d", ts.DoubleType, nil
		}
		return "", nil, unsupported("numeric literal %s", text)
	}
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return s, ts.IntegerType, nil
	}
	return s + "L", ts.LongType, nil
}

func (g *Generator) stringLiteral(n *ast.String) (ast.Output, error) {
	if !n.Interpolated() {
		var sb strings.Builder
		for _, p := range n.Parts {
			sb.WriteString(p.Text)
		}
		return ast.Output{Code: javaQuote(sb.String()), Type: ts.StringType}, nil
	}
	pieces := make([]string, 0, len(n.Parts))
	for _, p := range n.Parts {
		if p.Expr == nil {
			if p.Text != "" {
				pieces = append(pieces, javaQuote(p.Text))
			}
			continue
		}
		op := OperandOf(p.Expr)
		if ts.IsArrayOrList(op.Type) {
			pieces = append(pieces, call(config.PdClass, config.JoinFunc, `" "`, op.Code))
			continue
		}
		s, err := g.stringOperand(op)
		if err != nil {
			return ast.Output{}, err
		}
		pieces = append(pieces, s)
	}
	if len(pieces) == 1 {
		return ast.Output{Code: pieces[0], Type: ts.StringType}, nil
	}
	return ast.Output{Code: paren(strings.Join(pieces, " + ")), Type: ts.StringType}, nil
}

// stringOperand renders op as a string that is never null.
func (g *Generator) stringOperand(op Operand) (string, error) {
	if op.Undef {
		return `""`, nil
	}
	if ts.IsString(op.Type) && !op.NotNull && !op.Constant && !op.MultiValued {
		return helper(config.ToStringFunc, op.Code), nil
	}
	return g.caster.Convert(op, ts.StringType)
}

// javaQuote renders s as a target string literal.
func javaQuote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(`\u` + leftPad(strconv.FormatInt(int64(r), 16), 4))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func leftPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

func (g *Generator) variable(n *ast.Variable, u ast.Usage) (ast.Output, error) {
	b := n.Binding
	if b == nil {
		return ast.Output{}, unsupported("unresolved variable %s%s", n.Sigil, n.Name)
	}
	if b.Field() && n.Decl != ast.NoDecl && n.Decl != ast.Local {
		g.addField(b)
	}
	if isLocalDecl(n) && u.Context != ast.VoidContext {
		// declared inside an expression: hoist in front of the statement
		g.pending.Add(Declaration{Type: b.Type, Alias: b.Alias, Init: initial(b.Type)})
	}
	return ast.Output{Code: g.qualify(b), Type: b.Type}, nil
}

func (g *Generator) pathOf(target, key ast.Expression, throughRef, brace bool, ctx symbols.Sigil) Path {
	var keys []Operand
	if l, ok := key.(*ast.List); ok && len(l.Elements) != 1 {
		keys = operands(l.Elements)
	} else {
		keys = []Operand{OperandOf(key)}
	}
	return Path{
		Base:           OperandOf(target),
		ThroughRef:     throughRef,
		Keys:           keys,
		Brace:          brace,
		Context:        ctx,
		BaseRepeatable: ast.IsRepeatable(target),
		KeysRepeatable: ast.IsRepeatable(key),
	}
}

// index records the path of an access; reads and deletes are rendered
// here, writes by the assignment that owns the access.
func (g *Generator) index(n ast.Expression, p Path, u ast.Usage) (ast.Output, error) {
	g.paths[n] = p
	switch {
	case u.Delete:
		op, err := g.access.Delete(p)
		if err != nil {
			return ast.Output{}, err
		}
		g.effects[n] = true
		return output(op), nil
	case u.Lvalue || u.ReadWrite:
		t, err := g.access.Target(p)
		if err != nil {
			return ast.Output{}, err
		}
		return ast.Output{Type: t}, nil
	}
	op, err := g.access.Read(p)
	if err != nil {
		return ast.Output{}, err
	}
	return output(op), nil
}

func (g *Generator) deref(n *ast.Deref, u ast.Usage) (ast.Output, error) {
	p := Path{
		Base:           OperandOf(n.Target),
		Deref:          true,
		Context:        n.Sigil,
		BaseRepeatable: ast.IsRepeatable(n.Target),
	}
	return g.index(n, p, u)
}

func (g *Generator) anonArray(n *ast.AnonArray) (ast.Output, error) {
	ops := operands(n.Elements)
	t := n.Type
	if ts.IsRef(t) {
		t = ts.Elem(t)
	}
	if !ts.IsAggregate(t) {
		t = ts.ArrayOf(elementType(ops))
	}
	code, err := g.caster.BuildCollection(ops, t)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: code, Type: ts.RefTo(t), Raw: true}, nil
}

func (g *Generator) anonHash(n *ast.AnonHash) (ast.Output, error) {
	ops := operands(n.Elements)
	t := n.Type
	if ts.IsRef(t) {
		t = ts.Elem(t)
	}
	if !ts.IsMap(t) {
		var values []Operand
		for i, op := range ops {
			switch {
			case ts.IsMap(op.Type):
				values = append(values, Text("", ts.Elem(op.Type)))
			case i%2 == 1:
				values = append(values, op)
			}
		}
		t = ts.MapOf(elementType(values))
	}
	code, err := g.caster.BuildCollection(ops, t)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: code, Type: ts.RefTo(t), Raw: true}, nil
}

func (g *Generator) list(n *ast.List, u ast.Usage) (ast.Output, error) {
	if len(n.Elements) == 1 {
		return n.Elements[0].Output(), nil
	}
	if u.Lvalue || u.Context == ast.VoidContext {
		return ast.Output{Type: ts.ArrayOf(ts.BoxType)}, nil
	}
	ops := operands(n.Elements)
	t := ts.ArrayOf(elementType(ops))
	code, err := g.caster.BuildCollection(ops, t)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: code, Type: t}, nil
}

func (g *Generator) ternary(n *ast.Ternary) (ast.Output, error) {
	cond, err := g.caster.ConvertNonNull(OperandOf(n.Cond), ts.BooleanType)
	if err != nil {
		return ast.Output{}, err
	}
	a, b := OperandOf(n.Then), OperandOf(n.Else)
	t := mergeTypes(branchType(a), branchType(b))
	if a.Undef {
		t = branchType(b)
	} else if b.Undef {
		t = branchType(a)
	}
	ac, err := g.caster.Convert(a, t)
	if err != nil {
		return ast.Output{}, err
	}
	bc, err := g.caster.Convert(b, t)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: paren(cond + " ? " + ac + " : " + bc), Type: t}, nil
}

func branchType(op Operand) ts.Type {
	if op.MultiValued {
		return ts.Elem(op.Type)
	}
	return op.Type
}

func (g *Generator) unary(n *ast.Unary) (ast.Output, error) {
	op := OperandOf(n.Operand)
	switch n.Operator {
	case "!", "not":
		c, err := g.caster.ConvertNonNull(op, ts.BooleanType)
		if err != nil {
			return ast.Output{}, err
		}
		return ast.Output{Code: paren("!" + c), Type: ts.BooleanType}, nil
	case "-":
		k := ts.Double
		if kk := ts.KindOf(op.Type); kk >= ts.Integer && kk <= ts.Double {
			k = kk
		}
		c, err := g.caster.ConvertNonNull(op, ts.Scalar(k))
		if err != nil {
			return ast.Output{}, err
		}
		return ast.Output{Code: paren("-" + c), Type: ts.Scalar(k)}, nil
	case "+":
		return n.Operand.Output(), nil
	case "~":
		c, err := g.caster.ConvertNonNull(op, ts.LongType)
		if err != nil {
			return ast.Output{}, err
		}
		return ast.Output{Code: paren("~" + c), Type: ts.LongType}, nil
	}
	return ast.Output{}, unsupported("unary operator %s", n.Operator)
}
