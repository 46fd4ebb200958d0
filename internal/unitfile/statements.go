package unitfile

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/symbols"
)

func (d *decoder) statementList(n *yaml.Node) ([]ast.Statement, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list of statements, got %s", nodeKind(n))
	}
	out := make([]ast.Statement, 0, len(n.Content))
	for _, c := range n.Content {
		s, err := d.statement(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// block decodes a block written either as a list of statements or as a
// block node. An absent block is nil.
func (d *decoder) block(n *yaml.Node) (*ast.Block, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind == yaml.SequenceNode {
		list, err := d.statementList(n)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Statements: list}, nil
	}
	s, err := d.statement(n)
	if err != nil {
		return nil, err
	}
	b, ok := s.(*ast.Block)
	if !ok {
		return nil, d.errorf(n, "expected a block")
	}
	return b, nil
}

func (d *decoder) statement(n *yaml.Node) (ast.Statement, error) {
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
	case "expr":
		e, err := d.requiredExpr(f, "expr")
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Base: base, Expression: e}, nil
	case "block":
		list, err := d.statementList(f.get("statements"))
		if err != nil {
			return nil, err
		}
		return &ast.Block{Base: base, Statements: list}, nil
	case "if", "unless":
		return d.ifStatement(f, base, kind == "unless")
	case "while", "until":
		return d.while(f, base, kind == "until")
	case "for":
		return d.forStatement(f, base)
	case "foreach":
		return d.foreach(f, base)
	case "return":
		value, err := d.optionalExpr(f, "value")
		if err != nil {
			return nil, err
		}
		return &ast.Return{Base: base, Value: value}, nil
	case "next", "last":
		return &ast.LoopControl{Base: base, Keyword: kind}, nil
	case "sub":
		return d.subDef(f, base)
	case "package":
		name, err := f.required("name")
		if err != nil {
			return nil, err
		}
		return &ast.PackageDecl{Base: base, Name: name}, nil
	case "use":
		name, err := f.required("name")
		if err != nil {
			return nil, err
		}
		return &ast.Use{Base: base, Name: name}, nil
	case "pragma":
		return d.pragma(f, base)
	case "comment":
		text, err := f.str("text")
		if err != nil {
			return nil, err
		}
		return &ast.Comment{Base: base, Text: text}, nil
	}
	if !expressionKinds[kind] {
		return nil, d.errorf(n, "unknown statement kind %q", kind)
	}
	// a bare expression is an expression statement
	e, err := d.expr(n)
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Base: base, Expression: e}, nil
}

func (d *decoder) ifStatement(f *fieldSet, base ast.Base, unless bool) (ast.Statement, error) {
	cond, err := d.requiredExpr(f, "cond")
	if err != nil {
		return nil, err
	}
	n := &ast.If{Base: base, Unless: unless, Cond: cond}
	if n.Then, err = d.block(f.get("then")); err != nil {
		return nil, err
	}
	if n.Else, err = d.block(f.get("else")); err != nil {
		return nil, err
	}
	branches := f.get("elsif")
	if branches == nil {
		return n, nil
	}
	if branches.Kind != yaml.SequenceNode {
		return nil, d.errorf(branches, "elsif must be a list")
	}
	for _, c := range branches.Content {
		bf, err := d.fields(c)
		if err != nil {
			return nil, err
		}
		eb, err := bf.base()
		if err != nil {
			return nil, err
		}
		ei := &ast.ElseIf{Base: eb}
		if ei.Cond, err = d.requiredExpr(bf, "cond"); err != nil {
			return nil, err
		}
		if ei.Body, err = d.block(bf.get("body")); err != nil {
			return nil, err
		}
		n.ElseIfs = append(n.ElseIfs, ei)
	}
	return n, nil
}

func (d *decoder) while(f *fieldSet, base ast.Base, until bool) (ast.Statement, error) {
	cond, err := d.requiredExpr(f, "cond")
	if err != nil {
		return nil, err
	}
	doWhile, err := f.flag("do")
	if err != nil {
		return nil, err
	}
	body, err := d.block(f.get("body"))
	if err != nil {
		return nil, err
	}
	return &ast.While{Base: base, Until: until, DoWhile: doWhile, Cond: cond, Body: body}, nil
}

func (d *decoder) forStatement(f *fieldSet, base ast.Base) (ast.Statement, error) {
	n := &ast.For{Base: base}
	var err error
	if n.Init, err = d.exprList(f.get("init")); err != nil {
		return nil, err
	}
	if n.Cond, err = d.exprList(f.get("cond")); err != nil {
		return nil, err
	}
	if n.Post, err = d.exprList(f.get("post")); err != nil {
		return nil, err
	}
	if n.Body, err = d.block(f.get("body")); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *decoder) foreach(f *fieldSet, base ast.Base) (ast.Statement, error) {
	list, err := d.requiredExpr(f, "list")
	if err != nil {
		return nil, err
	}
	n := &ast.Foreach{Base: base, List: list}
	if v := f.get("var"); v != nil {
		e, err := d.expr(v)
		if err != nil {
			return nil, err
		}
		lv, ok := e.(*ast.Variable)
		if !ok {
			return nil, d.errorf(v, "foreach variable must be a var node")
		}
		n.Var = lv
	}
	if n.Body, err = d.block(f.get("body")); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *decoder) subDef(f *fieldSet, base ast.Base) (ast.Statement, error) {
	name, err := f.required("name")
	if err != nil {
		return nil, err
	}
	returns, err := f.typ("returns")
	if err != nil {
		return nil, err
	}
	body, err := d.block(f.get("body"))
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = &ast.Block{}
	}
	return &ast.SubDef{Base: base, Name: name, Returns: returns, Body: body}, nil
}

// pragma decodes targets written with their sigil: ["$x", "@rows"].
func (d *decoder) pragma(f *fieldSet, base ast.Base) (ast.Statement, error) {
	t, err := f.typ("type")
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, d.errorf(f.node, "missing type")
	}
	targets := f.get("targets")
	if targets == nil || targets.Kind != yaml.SequenceNode {
		return nil, d.errorf(f.node, "targets must be a list")
	}
	n := &ast.TypePragma{Base: base, Type: t}
	for _, c := range targets.Content {
		s := strings.TrimSpace(c.Value)
		if c.Kind != yaml.ScalarNode || len(s) < 2 {
			return nil, d.errorf(c, "invalid pragma target")
		}
		sig, ok := symbols.ParseSigil(s[:1])
		if !ok {
			return nil, d.errorf(c, "pragma target %q has no sigil", s)
		}
		n.Targets = append(n.Targets, ast.PragmaTarget{Name: s[1:], Sigil: sig})
	}
	return n, nil
}
