package codegen

import (
	"fmt"
	"strings"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// Options configures a Generator.
type Options struct {
	NullChecks       bool
	StrictStatements bool
	Comments         bool
}

// Field is a class-level variable of the generated class.
type Field struct {
	Type   ts.Type
	Alias  string
	Public bool
}

// Method is a generated subroutine.
type Method struct {
	Sub   *symbols.Sub
	Param string
	Body  string
}

type subFrame struct {
	sub   *symbols.Sub
	param string
}

// Generator turns resolved nodes into target text. The driver walks the
// tree and calls Generate on every node after its children; each node reads
// its children's cached outputs and records its own once.
type Generator struct {
	caster  *Caster
	access  *AccessEngine
	symbols *symbols.SymbolTable
	pending *PendingQueue
	opts    Options

	marks   []int
	paths   map[ast.Node]Path
	effects map[ast.Node]bool

	fields   []Field
	fieldSet map[string]bool
	methods  []Method
	subs     []subFrame
}

func NewGenerator(st *symbols.SymbolTable, opts Options) *Generator {
	caster := NewCaster(opts.NullChecks)
	pending := &PendingQueue{}
	return &Generator{
		caster:   caster,
		access:   NewAccessEngine(caster, st, pending),
		symbols:  st,
		pending:  pending,
		opts:     opts,
		paths:    make(map[ast.Node]Path),
		effects:  make(map[ast.Node]bool),
		fieldSet: make(map[string]bool),
	}
}

func (g *Generator) Caster() *Caster               { return g.caster }
func (g *Generator) Access() *AccessEngine         { return g.access }
func (g *Generator) Pending() *PendingQueue        { return g.pending }
func (g *Generator) Fields() []Field               { return g.fields }
func (g *Generator) Methods() []Method             { return g.methods }
func (g *Generator) Symbols() *symbols.SymbolTable { return g.symbols }

// Begin marks the start of a statement. Declarations queued until the
// statement is generated are emitted in front of it.
func (g *Generator) Begin() {
	g.marks = append(g.marks, g.pending.Mark())
}

// Abort discards the declarations of the statement being generated.
func (g *Generator) Abort() {
	if n := len(g.marks); n > 0 {
		g.pending.Truncate(g.marks[n-1])
		g.marks = g.marks[:n-1]
	}
}

func (g *Generator) drain() []Declaration {
	n := len(g.marks)
	if n == 0 {
		return nil
	}
	mark := g.marks[n-1]
	g.marks = g.marks[:n-1]
	return g.pending.Drain(mark)
}

// EnterSub opens a subroutine body whose argument list is bound to param.
func (g *Generator) EnterSub(sub *symbols.Sub, param string) {
	g.subs = append(g.subs, subFrame{sub: sub, param: param})
}

func (g *Generator) ExitSub() {
	if n := len(g.subs); n > 0 {
		g.subs = g.subs[:n-1]
	}
}

func (g *Generator) currentSub() *subFrame {
	if n := len(g.subs); n > 0 {
		return &g.subs[n-1]
	}
	return nil
}

func (g *Generator) addField(b *symbols.Binding) {
	if g.fieldSet[b.Alias] {
		return
	}
	g.fieldSet[b.Alias] = true
	g.fields = append(g.fields, Field{Type: b.Type, Alias: b.Alias, Public: b.Public})
}

// Generate renders n for the given usage and records its output.
func (g *Generator) Generate(node ast.Node, u ast.Usage) error {
	var (
		out ast.Output
		err error
	)
	switch n := node.(type) {
	case *ast.Number:
		out, err = g.number(n)
	case *ast.String:
		out, err = g.stringLiteral(n)
	case *ast.Undef:
		out = ast.Output{Code: "null", Type: ts.BoxType}
	case *ast.Variable:
		out, err = g.variable(n, u)
	case *ast.Index:
		out, err = g.index(n, g.pathOf(n.Target, n.Key, false, n.Brace, n.Context), u)
	case *ast.RefIndex:
		out, err = g.index(n, g.pathOf(n.Target, n.Key, true, n.Brace, n.Context), u)
	case *ast.Deref:
		out, err = g.deref(n, u)
	case *ast.MakeRef:
		out = output(MakeRef(OperandOf(n.Target)))
	case *ast.AnonArray:
		out, err = g.anonArray(n)
	case *ast.AnonHash:
		out, err = g.anonHash(n)
	case *ast.List:
		out, err = g.list(n, u)
	case *ast.Assign:
		out, err = g.assign(n, u)
	case *ast.IncDec:
		out, err = g.incDec(n, u)
	case *ast.Binary:
		out, err = g.binary(n, u)
	case *ast.Unary:
		out, err = g.unary(n)
	case *ast.Ternary:
		out, err = g.ternary(n)
	case *ast.Call:
		out, err = g.call(n, u)
	case *ast.ElseIf:
		// rendered by its If
	case ast.Statement:
		out, err = g.statement(n)
	default:
		err = unsupported("node %T", node)
	}
	if err != nil {
		return err
	}
	return node.SetOutput(out)
}

func output(op Operand) ast.Output {
	return ast.Output{Code: op.Code, Type: op.Type, Raw: op.Raw}
}

func operands(list []ast.Expression) []Operand {
	out := make([]Operand, len(list))
	for i, e := range list {
		out[i] = OperandOf(e)
	}
	return out
}

// wrap parenthesizes code unless it stands alone as a statement.
func wrap(u ast.Usage, code string) string {
	if u.Context == ast.VoidContext {
		return code
	}
	return paren(code)
}

// qualify renders a binding, prefixed by its class when it belongs to
// another package.
func (g *Generator) qualify(b *symbols.Binding) string {
	if b.Package == "" {
		return b.Alias
	}
	if own := g.symbols.Package(); own != nil && own.Name == b.Package {
		return b.Alias
	}
	if p, ok := g.symbols.Registry().Package(b.Package); ok {
		return p.Class + "." + b.Alias
	}
	return b.Alias
}

func (g *Generator) subRef(s *symbols.Sub) string {
	if s.Package == "" {
		return s.Alias
	}
	if own := g.symbols.Package(); own != nil && own.Name == s.Package {
		return s.Alias
	}
	if p, ok := g.symbols.Registry().Package(s.Package); ok {
		return p.Class + "." + s.Alias
	}
	return s.Alias
}

// capture evaluates code once into an auxiliary variable.
func (g *Generator) capture(t ts.Type, code string) (string, string) {
	return g.access.capture(t, code)
}

// initial is the value of a freshly declared variable.
func initial(t ts.Type) string {
	if ts.IsAggregate(t) {
		return Empty(t)
	}
	return "null"
}

func declaration(b *symbols.Binding, value string) string {
	return JavaType(b.Type) + " " + b.Alias + " = " + value
}

// isLocalDecl reports whether v declares a method-local variable.
func isLocalDecl(v *ast.Variable) bool {
	return v.Decl == ast.My && v.Binding != nil && !v.Binding.Field()
}

// mergeTypes is the narrowest type both a and b convert to without loss of
// meaning.
func mergeTypes(a, b ts.Type) ts.Type {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case ts.Equal(a, b):
		return a
	case ts.IsNumeric(a) && ts.IsNumeric(b):
		if isIntegral(a) && isIntegral(b) {
			return ts.LongType
		}
		return ts.DoubleType
	case ts.IsAggregate(a) && ts.IsAggregate(b):
		return a
	}
	return ts.BoxType
}

func isIntegral(t ts.Type) bool {
	k := ts.KindOf(t)
	return k == ts.Integer || k == ts.Long
}

// elementType infers the element type of a list literal. Aggregates
// contribute their elements; undef contributes nothing.
func elementType(ops []Operand) ts.Type {
	var t ts.Type
	for _, op := range ops {
		if op.Undef {
			continue
		}
		et := op.Type
		if ts.IsAggregate(et) && !ts.IsMap(et) {
			et = ts.Elem(et)
		}
		t = mergeTypes(t, et)
	}
	if t == nil {
		return ts.BoxType
	}
	return t
}

// unparen strips one pair of parentheses enclosing the whole of code.
func unparen(code string) string {
	if len(code) < 2 || code[0] != '(' || code[len(code)-1] != ')' {
		return code
	}
	depth := 0
	inString, inChar := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inString || inChar:
			if c == '\\' {
				i++
			} else if (inString && c == '"') || (inChar && c == '\'') {
				inString, inChar = false, false
			}
		case c == '"':
			inString = true
		case c == '\'':
			inChar = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(code)-1 {
				return code
			}
		}
	}
	return code[1 : len(code)-1]
}

func indent(code string) string {
	if code == "" {
		return ""
	}
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join(lines, "\n")
}

func describe(e ast.Expression) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", e), "*ast.")
}
