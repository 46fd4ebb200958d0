package unitfile

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/symbols"
)

var expressionKinds = map[string]bool{
	"number": true, "string": true, "undef": true, "var": true,
	"index": true, "refindex": true, "deref": true, "ref": true,
	"anon_array": true, "anon_hash": true, "list": true,
	"assign": true, "incdec": true, "binary": true, "unary": true,
	"ternary": true, "call": true,
}

var declKinds = map[string]ast.DeclKind{
	"":      ast.NoDecl,
	"my":    ast.My,
	"our":   ast.Our,
	"local": ast.Local,
}

func (d *decoder) requiredExpr(f *fieldSet, key string) (ast.Expression, error) {
	n := f.get(key)
	if n == nil {
		return nil, d.errorf(f.node, "missing %s", key)
	}
	return d.expr(n)
}

func (d *decoder) optionalExpr(f *fieldSet, key string) (ast.Expression, error) {
	n := f.get(key)
	if n == nil {
		return nil, nil
	}
	return d.expr(n)
}

func (d *decoder) exprList(n *yaml.Node) ([]ast.Expression, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list of expressions, got %s", nodeKind(n))
	}
	out := make([]ast.Expression, 0, len(n.Content))
	for _, c := range n.Content {
		e, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) expr(n *yaml.Node) (ast.Expression, error) {
	f, err := d.fields(n)
	if err != nil {
		return nil, err
	}
	kind, err := f.kind()
	if err != nil {
		return nil, err
	}
	base, err := f.base()
	if err != nil {
		return nil, err
	}
	switch kind {
	case "number":
		v := f.get("value")
		if v == nil || v.Kind != yaml.ScalarNode {
			return nil, d.errorf(n, "number needs a scalar value")
		}
		return &ast.Number{Base: base, Text: v.Value}, nil
	case "string":
		return d.stringLiteral(f, base)
	case "undef":
		return &ast.Undef{Base: base}, nil
	case "var":
		return d.variable(f, base)
	case "index", "refindex":
		return d.index(f, base, kind == "refindex")
	case "deref":
		target, err := d.requiredExpr(f, "target")
		if err != nil {
			return nil, err
		}
		sig, err := f.sigil("sigil", symbols.ScalarSigil)
		if err != nil {
			return nil, err
		}
		return &ast.Deref{Base: base, Target: target, Sigil: sig}, nil
	case "ref":
		target, err := d.requiredExpr(f, "target")
		if err != nil {
			return nil, err
		}
		return &ast.MakeRef{Base: base, Target: target}, nil
	case "anon_array", "anon_hash":
		elems, err := d.exprList(f.get("elements"))
		if err != nil {
			return nil, err
		}
		t, err := f.typ("type")
		if err != nil {
			return nil, err
		}
		if kind == "anon_hash" {
			return &ast.AnonHash{Base: base, Elements: elems, Type: t}, nil
		}
		return &ast.AnonArray{Base: base, Elements: elems, Type: t}, nil
	case "list":
		elems, err := d.exprList(f.get("elements"))
		if err != nil {
			return nil, err
		}
		return &ast.List{Base: base, Elements: elems}, nil
	case "assign", "binary":
		return d.infix(f, base, kind == "assign")
	case "incdec":
		op, err := f.required("op")
		if err != nil {
			return nil, err
		}
		prefix, err := f.flag("prefix")
		if err != nil {
			return nil, err
		}
		target, err := d.requiredExpr(f, "target")
		if err != nil {
			return nil, err
		}
		return &ast.IncDec{Base: base, Operator: op, Prefix: prefix, Target: target}, nil
	case "unary":
		op, err := f.required("op")
		if err != nil {
			return nil, err
		}
		operand, err := d.requiredExpr(f, "operand")
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: base, Operator: op, Operand: operand}, nil
	case "ternary":
		n := &ast.Ternary{Base: base}
		if n.Cond, err = d.requiredExpr(f, "cond"); err != nil {
			return nil, err
		}
		if n.Then, err = d.requiredExpr(f, "then"); err != nil {
			return nil, err
		}
		if n.Else, err = d.requiredExpr(f, "else"); err != nil {
			return nil, err
		}
		return n, nil
	case "call":
		return d.call(f, base)
	}
	return nil, d.errorf(n, "unknown expression kind %q", kind)
}

// stringLiteral decodes either a plain value or interpolation parts. A
// part is a literal scalar or a mapping with text or expr.
func (d *decoder) stringLiteral(f *fieldSet, base ast.Base) (ast.Expression, error) {
	parts := f.get("parts")
	if parts == nil {
		v, err := f.str("value")
		if err != nil {
			return nil, err
		}
		return &ast.String{Base: base, Parts: []ast.StringPart{{Text: v}}}, nil
	}
	if parts.Kind != yaml.SequenceNode {
		return nil, d.errorf(parts, "parts must be a list")
	}
	s := &ast.String{Base: base}
	for _, c := range parts.Content {
		if c.Kind == yaml.ScalarNode {
			s.Parts = append(s.Parts, ast.StringPart{Text: c.Value})
			continue
		}
		pf, err := d.fields(c)
		if err != nil {
			return nil, err
		}
		if e := pf.get("expr"); e != nil {
			expr, err := d.expr(e)
			if err != nil {
				return nil, err
			}
			s.Parts = append(s.Parts, ast.StringPart{Expr: expr})
			continue
		}
		text, err := pf.str("text")
		if err != nil {
			return nil, err
		}
		s.Parts = append(s.Parts, ast.StringPart{Text: text})
	}
	return s, nil
}

func (d *decoder) variable(f *fieldSet, base ast.Base) (ast.Expression, error) {
	name, err := f.required("name")
	if err != nil {
		return nil, err
	}
	sig, err := f.sigil("sigil", symbols.ScalarSigil)
	if err != nil {
		return nil, err
	}
	pkg, err := f.str("package")
	if err != nil {
		return nil, err
	}
	declName, err := f.str("decl")
	if err != nil {
		return nil, err
	}
	decl, ok := declKinds[declName]
	if !ok {
		return nil, d.errorf(f.get("decl"), "unknown declarator %q", declName)
	}
	t, err := f.typ("type")
	if err != nil {
		return nil, err
	}
	return &ast.Variable{Base: base, Name: name, Package: pkg, Sigil: sig, Decl: decl, Type: t}, nil
}

func (d *decoder) index(f *fieldSet, base ast.Base, throughRef bool) (ast.Expression, error) {
	target, err := d.requiredExpr(f, "target")
	if err != nil {
		return nil, err
	}
	key, err := d.requiredExpr(f, "key")
	if err != nil {
		return nil, err
	}
	brace, err := f.flag("brace")
	if err != nil {
		return nil, err
	}
	ctx, err := f.sigil("context", symbols.ScalarSigil)
	if err != nil {
		return nil, err
	}
	if throughRef {
		return &ast.RefIndex{Base: base, Target: target, Key: key, Brace: brace, Context: ctx}, nil
	}
	return &ast.Index{Base: base, Target: target, Key: key, Brace: brace, Context: ctx}, nil
}

func (d *decoder) infix(f *fieldSet, base ast.Base, isAssign bool) (ast.Expression, error) {
	op, err := f.str("op")
	if err != nil {
		return nil, err
	}
	left, err := d.requiredExpr(f, "left")
	if err != nil {
		return nil, err
	}
	right, err := d.requiredExpr(f, "right")
	if err != nil {
		return nil, err
	}
	if isAssign {
		if op == "" {
			op = "="
		}
		return &ast.Assign{Base: base, Operator: op, Left: left, Right: right}, nil
	}
	if op == "" {
		return nil, d.errorf(f.node, "missing op")
	}
	return &ast.Binary{Base: base, Operator: op, Left: left, Right: right}, nil
}

func (d *decoder) call(f *fieldSet, base ast.Base) (ast.Expression, error) {
	name, err := f.required("name")
	if err != nil {
		return nil, err
	}
	pkg, err := f.str("package")
	if err != nil {
		return nil, err
	}
	args, err := d.exprList(f.get("args"))
	if err != nil {
		return nil, err
	}
	return &ast.Call{Base: base, Package: pkg, Name: name, Args: args}, nil
}
