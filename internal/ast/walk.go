package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(list []Expression) {
		for _, e := range list {
			add(e)
		}
	}
	switch n := n.(type) {
	case *String:
		for _, p := range n.Parts {
			if p.Expr != nil {
				add(p.Expr)
			}
		}
	case *Index:
		add(n.Target, n.Key)
	case *RefIndex:
		add(n.Target, n.Key)
	case *Deref:
		add(n.Target)
	case *MakeRef:
		add(n.Target)
	case *AnonArray:
		addExprs(n.Elements)
	case *AnonHash:
		addExprs(n.Elements)
	case *List:
		addExprs(n.Elements)
	case *Assign:
		add(n.Left, n.Right)
	case *IncDec:
		add(n.Target)
	case *Binary:
		add(n.Left, n.Right)
	case *Unary:
		add(n.Operand)
	case *Ternary:
		add(n.Cond, n.Then, n.Else)
	case *Call:
		addExprs(n.Args)
	case *ExpressionStatement:
		add(n.Expression)
	case *Block:
		for _, s := range n.Statements {
			add(s)
		}
	case *If:
		add(n.Cond, n.Then)
		for _, e := range n.ElseIfs {
			add(e)
		}
		add(n.Else)
	case *ElseIf:
		add(n.Cond, n.Body)
	case *While:
		add(n.Cond, n.Body)
	case *For:
		addExprs(n.Init)
		addExprs(n.Cond)
		addExprs(n.Post)
		add(n.Body)
	case *Foreach:
		add(n.Var, n.List, n.Body)
	case *Return:
		add(n.Value)
	case *SubDef:
		add(n.Body)
	}
	return out
}

// isNilNode catches typed nil pointers stored in interfaces.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Variable:
		return v == nil
	case *ElseIf:
		return v == nil
	}
	return false
}

// Inspect traverses the tree rooted at n in depth-first pre-order. If f
// returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
