package codegen

import (
	"strings"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/config"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// statement renders a statement and the declarations it raised.
func (g *Generator) statement(s ast.Statement) (ast.Output, error) {
	code, err := g.statementCode(s)
	if err != nil {
		return ast.Output{}, err
	}
	decls := g.drain()
	if len(decls) == 0 {
		return ast.Output{Code: code}, nil
	}
	lines := make([]string, 0, len(decls)+1)
	for _, d := range decls {
		lines = append(lines, d.String())
	}
	if code != "" {
		lines = append(lines, code)
	}
	return ast.Output{Code: strings.Join(lines, "\n")}, nil
}

func (g *Generator) statementCode(s ast.Statement) (string, error) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		return g.expressionStatement(n.Expression)
	case *ast.Block:
		return g.block(n, nil), nil
	case *ast.If:
		return g.ifStatement(n)
	case *ast.While:
		return g.while(n)
	case *ast.For:
		return g.forStatement(n)
	case *ast.Foreach:
		return g.foreach(n)
	case *ast.Return:
		return g.returnStatement(n)
	case *ast.LoopControl:
		switch n.Keyword {
		case "next":
			return "continue;", nil
		case "last":
			return "break;", nil
		}
		return "", unsupported("loop control %s", n.Keyword)
	case *ast.SubDef:
		return "", g.subDef(n)
	case *ast.Comment:
		if !g.opts.Comments {
			return "", nil
		}
		lines := strings.Split(strings.TrimRight(n.Text, "\n"), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight("// "+strings.TrimPrefix(l, "#"), " ")
		}
		return strings.Join(lines, "\n"), nil
	case *ast.PackageDecl, *ast.Use, *ast.TypePragma:
		return "", nil
	}
	return "", unsupported("statement %T", s)
}

// expressionStatement renders an expression evaluated for its effect.
// Expressions that are not valid target statements are evaluated through
// the runtime; side-effect-free ones are dropped unless strict statements
// are requested.
func (g *Generator) expressionStatement(e ast.Expression) (string, error) {
	switch n := e.(type) {
	case *ast.Variable:
		if isLocalDecl(n) {
			return declaration(n.Binding, initial(n.Binding.Type)) + ";", nil
		}
		if n.Decl != ast.NoDecl {
			return "", nil
		}
	case *ast.List:
		if len(n.Elements) == 1 {
			return g.expressionStatement(n.Elements[0])
		}
		var lines []string
		for _, el := range n.Elements {
			code, err := g.expressionStatement(el)
			if err != nil {
				return "", err
			}
			if code != "" {
				lines = append(lines, code)
			}
		}
		return strings.Join(lines, "\n"), nil
	case *ast.Binary:
		if code, ok, err := g.guard(n); ok || err != nil {
			return code, err
		}
	}
	code := e.Output().Code
	switch {
	case code == "":
		return "", nil
	case g.isEffect(e):
		return code + ";", nil
	case ast.IsRepeatable(e) && !g.opts.StrictStatements:
		return "", nil
	}
	return call(config.PdClass, config.EvalFunc, unparen(code)) + ";", nil
}

// guard renders `a or b` and `a and b` statements as conditionals.
func (g *Generator) guard(n *ast.Binary) (string, bool, error) {
	negate := false
	switch n.Operator {
	case "||", "or":
		negate = true
	case "&&", "and":
	default:
		return "", false, nil
	}
	body, err := g.expressionStatement(n.Right)
	if err != nil || body == "" {
		return "", false, err
	}
	cond, err := g.caster.ConvertNonNull(OperandOf(n.Left), ts.BooleanType)
	if err != nil {
		return "", false, err
	}
	if negate {
		cond = "!" + cond
	}
	return "if (" + unparen(cond) + ") {\n" + indent(body) + "\n}", true, nil
}

func (g *Generator) isEffect(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Assign, *ast.IncDec:
		return true
	case *ast.Call:
		return g.effects[n]
	case *ast.Index, *ast.RefIndex, *ast.Deref:
		return g.effects[n]
	}
	return false
}

// block renders { ... } with optional leading lines. Statements that
// failed to generate leave no text.
func (g *Generator) block(b *ast.Block, prefix []string) string {
	lines := append([]string(nil), prefix...)
	if b != nil {
		for _, s := range b.Statements {
			if !s.Generated() {
				continue
			}
			if code := s.Output().Code; code != "" {
				lines = append(lines, code)
			}
		}
	}
	if len(lines) == 0 {
		return "{\n}"
	}
	return "{\n" + indent(strings.Join(lines, "\n")) + "\n}"
}

func (g *Generator) condition(e ast.Expression, negate bool) (string, error) {
	c, err := g.caster.ConvertNonNull(OperandOf(e), ts.BooleanType)
	if err != nil {
		return "", err
	}
	if negate {
		c = "!" + c
	}
	return unparen(c), nil
}

func (g *Generator) ifStatement(n *ast.If) (string, error) {
	cond, err := g.condition(n.Cond, n.Unless)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("if (" + cond + ") " + g.block(n.Then, nil))
	for _, ei := range n.ElseIfs {
		c, err := g.condition(ei.Cond, false)
		if err != nil {
			return "", err
		}
		sb.WriteString(" else if (" + c + ") " + g.block(ei.Body, nil))
	}
	if n.Else != nil {
		sb.WriteString(" else " + g.block(n.Else, nil))
	}
	return sb.String(), nil
}

func (g *Generator) while(n *ast.While) (string, error) {
	cond, err := g.condition(n.Cond, n.Until)
	if err != nil {
		return "", err
	}
	if n.DoWhile {
		return "do " + g.block(n.Body, nil) + " while (" + cond + ");", nil
	}
	return "while (" + cond + ") " + g.block(n.Body, nil), nil
}

func (g *Generator) forStatement(n *ast.For) (string, error) {
	parts := func(list []ast.Expression) string {
		codes := make([]string, 0, len(list))
		for _, e := range list {
			if c := e.Output().Code; c != "" {
				codes = append(codes, c)
			}
		}
		return strings.Join(codes, ", ")
	}
	var conds []string
	for _, e := range n.Cond {
		c, err := g.caster.ConvertNonNull(OperandOf(e), ts.BooleanType)
		if err != nil {
			return "", err
		}
		conds = append(conds, c)
	}
	cond := ""
	if len(conds) > 0 {
		cond = unparen(strings.Join(conds, " && "))
	}
	return "for (" + parts(n.Init) + "; " + cond + "; " + parts(n.Post) + ") " + g.block(n.Body, nil), nil
}

// foreach renders an enhanced for loop. A loop variable whose type differs
// from the element type, or that is not declared by the loop, is assigned
// from an auxiliary iteration variable.
func (g *Generator) foreach(n *ast.Foreach) (string, error) {
	list := OperandOf(n.List)
	code, t := list.Code, list.Type
	switch {
	case ts.IsArrayOrList(t):
	case ts.IsMap(t):
		t = ts.ListOf(ts.Elem(t))
		c, err := g.caster.Convert(list, t)
		if err != nil {
			return "", err
		}
		code = c
	default:
		t = ts.ArrayOf(list.Type)
		c, err := g.caster.BuildCollection([]Operand{list}, t)
		if err != nil {
			return "", err
		}
		code = c
	}
	elem := ts.Elem(t)
	if n.Var == nil || n.Var.Binding == nil {
		return "", unsupported("foreach without a resolved loop variable")
	}
	b := n.Var.Binding
	if isLocalDecl(n.Var) && ts.Equal(b.Type, elem) {
		return "for (" + JavaType(elem) + " " + b.Alias + " : " + code + ") " + g.block(n.Body, nil), nil
	}
	aux := g.symbols.NewAuxiliaryAlias("")
	v, err := g.caster.Convert(element(aux, elem), b.Type)
	if err != nil {
		return "", err
	}
	assign := g.qualify(b) + " = " + v + ";"
	if isLocalDecl(n.Var) {
		assign = declaration(b, v) + ";"
	}
	return "for (" + JavaType(elem) + " " + aux + " : " + code + ") " + g.block(n.Body, []string{assign}), nil
}

func (g *Generator) returnStatement(n *ast.Return) (string, error) {
	frame := g.currentSub()
	if frame == nil {
		if n.Value != nil {
			return "", unsupported("return with a value outside a subroutine")
		}
		return "return;", nil
	}
	returns := frame.sub.Returns
	if n.Value == nil {
		return "return " + initial(returns) + ";", nil
	}
	v, err := g.value(n.Value, OperandOf(n.Value), returns)
	if err != nil {
		return "", err
	}
	return "return " + v + ";", nil
}

// subDef records the method of a subroutine. The definition itself leaves
// no text in the enclosing code.
func (g *Generator) subDef(n *ast.SubDef) error {
	frame := g.currentSub()
	if frame == nil || n.Sub == nil {
		return unsupported("subroutine %s outside its scope", n.Name)
	}
	var tail []string
	if !endsWithReturn(n.Body) {
		tail = []string{"return " + initial(frame.sub.Returns) + ";"}
	}
	body := g.block(n.Body, nil)
	if len(tail) > 0 {
		body = strings.TrimSuffix(body, "}") + indent(strings.Join(tail, "\n")) + "\n}"
	}
	g.methods = append(g.methods, Method{Sub: n.Sub, Param: frame.param, Body: body})
	return nil
}

func endsWithReturn(b *ast.Block) bool {
	if b == nil || len(b.Statements) == 0 {
		return false
	}
	_, ok := b.Statements[len(b.Statements)-1].(*ast.Return)
	return ok
}
