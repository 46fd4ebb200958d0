package codegen

import (
	"strconv"
	"strings"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/config"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// arithmeticKind is the result kind of + - * on the operand types.
func arithmeticKind(a, b ts.Type) ts.Kind {
	ka, kb := ts.KindOf(a), ts.KindOf(b)
	switch {
	case ka == ts.Integer && kb == ts.Integer:
		return ts.Integer
	case isIntegral(a) && isIntegral(b):
		return ts.Long
	}
	return ts.Double
}

func integralKind(a, b ts.Type) ts.Kind {
	if ts.KindOf(a) == ts.Integer && ts.KindOf(b) == ts.Integer {
		return ts.Integer
	}
	return ts.Long
}

var (
	numericComparisons = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}
	stringComparisons  = map[string]string{"lt": "<", "gt": ">", "le": "<=", "ge": ">="}
	bitwise            = map[string]bool{"&": true, "|": true, "^": true, "<<": true, ">>": true}
)

func (g *Generator) binary(n *ast.Binary, u ast.Usage) (ast.Output, error) {
	l, r := OperandOf(n.Left), OperandOf(n.Right)
	switch n.Operator {
	case "&&", "||", "and", "or":
		if u.Context == ast.ScalarContext || u.Context == ast.ListContext {
			op, err := g.logicalValue(n.Operator, l, r, ast.IsRepeatable(n.Left))
			return output(op), err
		}
	case "//":
		op, err := g.logicalValue(n.Operator, l, r, ast.IsRepeatable(n.Left))
		return output(op), err
	}
	op, err := g.binaryOp(n.Operator, l, r)
	return output(op), err
}

// binaryOp renders a non-assigning infix operator.
func (g *Generator) binaryOp(operator string, l, r Operand) (Operand, error) {
	both := func(t ts.Type) (string, string, error) {
		lc, err := g.caster.ConvertNonNull(l, t)
		if err != nil {
			return "", "", err
		}
		rc, err := g.caster.ConvertNonNull(r, t)
		return lc, rc, err
	}
	switch {
	case operator == "+" || operator == "-" || operator == "*":
		t := ts.Scalar(arithmeticKind(g.scalarType(l), g.scalarType(r)))
		lc, rc, err := both(t)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(paren(lc+" "+operator+" "+rc), t), nil
	case operator == "/":
		lc, rc, err := both(ts.DoubleType)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(paren(lc+" / "+rc), ts.DoubleType), nil
	case operator == "%" || bitwise[operator]:
		t := ts.Scalar(integralKind(g.scalarType(l), g.scalarType(r)))
		lc, rc, err := both(t)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(paren(lc+" "+operator+" "+rc), t), nil
	case operator == "**":
		lc, rc, err := both(ts.DoubleType)
		if err != nil {
			return Operand{}, err
		}
		return NonNull("Math."+config.PowFunc+"("+lc+", "+rc+")", ts.DoubleType), nil
	case numericComparisons[operator]:
		k := arithmeticKind(g.scalarType(l), g.scalarType(r))
		lc, rc, err := both(ts.Scalar(k))
		if err != nil {
			return Operand{}, err
		}
		if (operator == "==" || operator == "!=") && !l.Constant && !r.Constant {
			lc, rc = unbox(lc, k), unbox(rc, k)
		}
		return NonNull(paren(lc+" "+operator+" "+rc), ts.BooleanType), nil
	case operator == "<=>":
		lc, rc, err := both(ts.DoubleType)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(call(config.PdClass, config.CompareFunc, lc, rc), ts.IntegerType), nil
	case operator == "&&" || operator == "||" || operator == "and" || operator == "or":
		lc, rc, err := both(ts.BooleanType)
		if err != nil {
			return Operand{}, err
		}
		op := "&&"
		if operator == "||" || operator == "or" {
			op = "||"
		}
		return NonNull(paren(lc+" "+op+" "+rc), ts.BooleanType), nil
	case operator == "xor":
		lc, rc, err := both(ts.BooleanType)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(paren(lc+" ^ "+rc), ts.BooleanType), nil
	case operator == ".":
		lc, err := g.stringOperand(l)
		if err != nil {
			return Operand{}, err
		}
		rc, err := g.stringOperand(r)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(paren(lc+" + "+rc), ts.StringType), nil
	case operator == "x":
		lc, err := g.stringOperand(l)
		if err != nil {
			return Operand{}, err
		}
		rc, err := g.caster.ConvertNonNull(r, ts.IntegerType)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(call(config.PdClass, config.RepeatFunc, lc, rc), ts.StringType), nil
	case operator == "eq" || operator == "ne" || operator == "cmp" || stringComparisons[operator] != "":
		lc, err := g.stringOperand(l)
		if err != nil {
			return Operand{}, err
		}
		rc, err := g.stringOperand(r)
		if err != nil {
			return Operand{}, err
		}
		switch operator {
		case "eq":
			return NonNull(lc+".equals("+rc+")", ts.BooleanType), nil
		case "ne":
			return NonNull(paren("!"+lc+".equals("+rc+")"), ts.BooleanType), nil
		case "cmp":
			return NonNull("Integer.signum("+lc+".compareTo("+rc+"))", ts.IntegerType), nil
		}
		return NonNull(paren(lc+".compareTo("+rc+") "+stringComparisons[operator]+" 0"), ts.BooleanType), nil
	case operator == "..":
		lc, rc, err := both(ts.IntegerType)
		if err != nil {
			return Operand{}, err
		}
		return NonNull(call(config.PdClass, config.RangeFunc, lc, rc), ts.ArrayOf(ts.IntegerType)), nil
	}
	return Operand{}, unsupported("operator %s", operator)
}

// scalarType is the type an operand has once reduced to a scalar.
func (g *Generator) scalarType(op Operand) ts.Type {
	if op.MultiValued {
		return ts.Elem(op.Type)
	}
	if ts.IsAggregate(op.Type) {
		return ts.IntegerType
	}
	return op.Type
}

// unbox forces a numeric comparison of boxed operands.
func unbox(code string, k ts.Kind) string {
	return "((" + primitives[k] + ") " + code + ")"
}

// logicalValue renders || && and // where the value, not the truth, is
// consumed. The left operand is read twice, so it is captured unless
// repeatable.
func (g *Generator) logicalValue(operator string, l, r Operand, repeatable bool) (Operand, error) {
	t := mergeTypes(g.scalarType(l), g.scalarType(r))
	if l.Undef {
		t = g.scalarType(r)
	}
	if r.Undef {
		t = g.scalarType(l)
	}
	lc, err := g.caster.Convert(l, t)
	if err != nil {
		return Operand{}, err
	}
	rc, err := g.caster.Convert(r, t)
	if err != nil {
		return Operand{}, err
	}
	first, again := lc, lc
	if !repeatable {
		again, first = g.capture(t, lc)
	}
	var test string
	if operator == "//" {
		test = first + " != null"
	} else {
		probe := Operand{Code: first, Type: t, NotNull: l.NotNull && repeatable, Constant: l.Constant && repeatable}
		if test, err = g.caster.Convert(probe, ts.BooleanType); err != nil {
			return Operand{}, err
		}
	}
	switch operator {
	case "&&", "and":
		return Text(paren(test+" ? "+rc+" : "+again), t), nil
	}
	return Text(paren(test+" ? "+again+" : "+rc), t), nil
}

// value renders right as a value of type t. An aggregate target receives a
// list: a parenthesized list is built element by element and any other
// scalar becomes a one-element list.
func (g *Generator) value(right ast.Expression, op Operand, t ts.Type) (string, error) {
	if !ts.IsAggregate(t) {
		return g.caster.Convert(op, t)
	}
	if l, ok := right.(*ast.List); ok && len(l.Elements) != 1 {
		return g.caster.BuildCollection(operands(l.Elements), t)
	}
	if ts.IsAggregate(op.Type) {
		return g.caster.Convert(op, t)
	}
	return g.caster.BuildCollection([]Operand{op}, t)
}

func (g *Generator) assign(n *ast.Assign, u ast.Usage) (ast.Output, error) {
	if n.Operator != "=" {
		return g.compoundAssign(n, u)
	}
	if l, ok := n.Left.(*ast.List); ok {
		return g.assignList(n, l, u)
	}
	code, t, err := g.store(n.Left, n.Right, OperandOf(n.Right), u.Context == ast.VoidContext)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: wrap(u, code), Type: t}, nil
}

// store renders the assignment of op to target. A local declaration is
// rendered in place when the assignment is a statement of its own.
func (g *Generator) store(target, right ast.Expression, op Operand, statement bool) (string, ts.Type, error) {
	switch l := target.(type) {
	case *ast.Variable:
		b := l.Binding
		if b == nil {
			return "", nil, unsupported("unresolved variable %s%s", l.Sigil, l.Name)
		}
		v, err := g.value(right, op, b.Type)
		if err != nil {
			return "", nil, err
		}
		if statement && isLocalDecl(l) {
			return declaration(b, v), b.Type, nil
		}
		return g.qualify(b) + " = " + v, b.Type, nil
	case *ast.Index, *ast.RefIndex, *ast.Deref:
		p, ok := g.paths[l]
		if !ok {
			return "", nil, unsupported("assignment to %s", describe(target))
		}
		t, err := g.access.Target(p)
		if err != nil {
			return "", nil, err
		}
		v, err := g.value(right, op, t)
		if err != nil {
			return "", nil, err
		}
		code, err := g.access.Write(p, v)
		return code, t, err
	}
	return "", nil, unsupported("assignment to %s", describe(target))
}

// assignList renders (a, b, @rest) = source. A single scalar target takes
// the first element; several targets are only supported as a statement.
func (g *Generator) assignList(n *ast.Assign, l *ast.List, u ast.Usage) (ast.Output, error) {
	src := OperandOf(n.Right)
	if len(l.Elements) == 1 && !ast.IsListTarget(l.Elements[0]) {
		if ts.IsArrayOrList(src.Type) {
			src.MultiValued = true
		}
		src.FirstOfMany = true
		code, t, err := g.store(l.Elements[0], n.Right, src, u.Context == ast.VoidContext)
		if err != nil {
			return ast.Output{}, err
		}
		return ast.Output{Code: wrap(u, code), Type: t}, nil
	}
	if u.Context != ast.VoidContext {
		return ast.Output{}, unsupported("list assignment used as a value")
	}

	st := src.Type
	code := src.Code
	switch {
	case ts.IsArrayOrList(st):
	case ts.IsMap(st):
		st = ts.ListOf(ts.Elem(src.Type))
		c, err := g.caster.Convert(src, st)
		if err != nil {
			return ast.Output{}, err
		}
		code = c
	default:
		st = ts.ArrayOf(src.Type)
		c, err := g.caster.BuildCollection([]Operand{src}, st)
		if err != nil {
			return ast.Output{}, err
		}
		code = c
	}
	aux := g.symbols.NewAuxiliaryAlias("")
	lines := []string{JavaType(st) + " " + aux + " = " + code}
	consumed := false
	for i, target := range l.Elements {
		if _, ok := target.(*ast.Undef); ok {
			continue
		}
		idx := strconv.Itoa(i)
		var item Operand
		switch {
		case consumed && ast.IsListTarget(target):
			item = NonNull(Empty(st), st)
		case consumed:
			item = Operand{Code: "null", Type: ts.BoxType, Undef: true}
		case ast.IsListTarget(target):
			item = NonNull(call(config.PdClass, config.RestFunc, aux, idx), st)
			consumed = true
		default:
			item = element(call(config.PdClass, config.AtFunc, aux, idx), ts.Elem(st))
		}
		line, _, err := g.store(target, nil, item, true)
		if err != nil {
			return ast.Output{}, err
		}
		lines = append(lines, line)
	}
	return ast.Output{Code: strings.Join(lines, "; "), Type: st}, nil
}

// readWrite resolves a target read and written by one expression.
func (g *Generator) readWrite(target ast.Expression) (Operand, func(string) string, ts.Type, error) {
	switch l := target.(type) {
	case *ast.Variable:
		b := l.Binding
		if b == nil {
			return Operand{}, nil, nil, unsupported("unresolved variable %s%s", l.Sigil, l.Name)
		}
		ref := g.qualify(b)
		return Text(ref, b.Type), func(v string) string { return ref + " = " + v }, b.Type, nil
	case *ast.Index, *ast.RefIndex, *ast.Deref:
		p, ok := g.paths[l]
		if !ok {
			return Operand{}, nil, nil, unsupported("assignment to %s", describe(target))
		}
		t, err := g.access.Target(p)
		if err != nil {
			return Operand{}, nil, nil, err
		}
		read, write, err := g.access.ReadWrite(p)
		return read, write, t, err
	}
	return Operand{}, nil, nil, unsupported("assignment to %s", describe(target))
}

func (g *Generator) compoundAssign(n *ast.Assign, u ast.Usage) (ast.Output, error) {
	operator := strings.TrimSuffix(n.Operator, "=")
	read, write, t, err := g.readWrite(n.Left)
	if err != nil {
		return ast.Output{}, err
	}
	right := OperandOf(n.Right)
	var result Operand
	switch operator {
	case "||", "&&", "//":
		// the target is already evaluated once by write
		result, err = g.logicalValue(operator, read, right, true)
	default:
		result, err = g.binaryOp(operator, read, right)
	}
	if err != nil {
		return ast.Output{}, err
	}
	v, err := g.caster.Convert(result, t)
	if err != nil {
		return ast.Output{}, err
	}
	return ast.Output{Code: wrap(u, write(v)), Type: t}, nil
}

func (g *Generator) incDec(n *ast.IncDec, u ast.Usage) (ast.Output, error) {
	if v, ok := n.Target.(*ast.Variable); ok && v.Binding != nil {
		if k := ts.KindOf(v.Binding.Type); k >= ts.Integer && k <= ts.Double {
			ref := g.qualify(v.Binding)
			code := ref + n.Operator
			if n.Prefix {
				code = n.Operator + ref
			}
			return ast.Output{Code: wrap(u, code), Type: v.Binding.Type}, nil
		}
	}
	read, write, t, err := g.readWrite(n.Target)
	if err != nil {
		return ast.Output{}, err
	}
	k := ts.KindOf(t)
	if k < ts.Integer || k > ts.Double {
		k = ts.Double
	}
	rc, err := g.caster.ConvertNonNull(read, ts.Scalar(k))
	if err != nil {
		return ast.Output{}, err
	}
	step := paren(rc + " " + n.Operator[:1] + " 1")
	v, err := g.caster.Convert(NonNull(step, ts.Scalar(k)), t)
	if err != nil {
		return ast.Output{}, err
	}
	if n.Prefix || u.Context == ast.VoidContext {
		return ast.Output{Code: wrap(u, write(v)), Type: t}, nil
	}
	// postfix yields the value before the step
	stored := NonNull(paren(write(v)), t)
	if ts.KindOf(t) != k {
		c, err := g.caster.ConvertNonNull(stored, ts.Scalar(k))
		if err != nil {
			return ast.Output{}, err
		}
		stored = NonNull(c, ts.Scalar(k))
	}
	inverse := "-"
	if n.Operator == "--" {
		inverse = "+"
	}
	return ast.Output{Code: paren(stored.Code + " " + inverse + " 1"), Type: stored.Type}, nil
}
