package codegen

import (
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/config"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// ArgUsage is how argument i of a call to name is consumed.
func ArgUsage(name string, i int, isSub bool) ast.Usage {
	if isSub {
		return ast.Usage{Context: ast.ListContext, InCollection: true}
	}
	switch name {
	case config.DeleteBuiltin:
		return ast.Usage{Context: ast.ScalarContext, Delete: true}
	case config.ExistsBuiltin, config.DefinedBuiltin, config.ScalarBuiltin, config.LengthBuiltin:
		return ast.Scalar
	case config.PushBuiltin, config.UnshiftBuiltin, config.PopBuiltin, config.ShiftBuiltin,
		config.KeysBuiltin, config.ValuesBuiltin:
		if i == 0 {
			return ast.Usage{Context: ast.ListContext, AccessBase: true}
		}
	case config.JoinBuiltin:
		if i == 0 {
			return ast.Scalar
		}
	}
	return ast.Usage{Context: ast.ListContext, InCollection: true}
}

func (g *Generator) call(n *ast.Call, u ast.Usage) (ast.Output, error) {
	if n.Sub != nil {
		args, err := g.caster.BuildCollection(operands(n.Args), ts.ListOf(ts.BoxType))
		if err != nil {
			return ast.Output{}, err
		}
		g.effects[n] = true
		return ast.Output{Code: g.subRef(n.Sub) + "(" + args + ")", Type: n.Sub.Returns}, nil
	}
	op, effect, err := g.builtin(n, u)
	if err != nil {
		return ast.Output{}, err
	}
	g.effects[n] = effect
	return output(op), nil
}

func (g *Generator) builtin(n *ast.Call, u ast.Usage) (Operand, bool, error) {
	args := operands(n.Args)
	pd := func(fn string, a ...string) string { return call(config.PdClass, fn, a...) }
	stringList := func(list []Operand) (string, error) {
		return g.caster.BuildCollection(list, ts.ArrayOf(ts.StringType))
	}
	arity := func(want int) error {
		if len(args) < want {
			return unsupported("%s with %d arguments", n.Name, len(args))
		}
		return nil
	}

	switch n.Name {
	case config.PrintBuiltin, config.SayBuiltin, config.DieBuiltin, config.WarnBuiltin:
		list, err := stringList(args)
		if err != nil {
			return Operand{}, false, err
		}
		fn := map[string]string{
			config.PrintBuiltin: config.PrintFunc,
			config.SayBuiltin:   config.SayFunc,
			config.DieBuiltin:   config.DieFunc,
			config.WarnBuiltin:  config.WarnFunc,
		}[n.Name]
		return NonNull(pd(fn, list), ts.IntegerType), true, nil

	case config.JoinBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		sep, err := g.stringOperand(args[0])
		if err != nil {
			return Operand{}, false, err
		}
		list, err := stringList(args[1:])
		if err != nil {
			return Operand{}, false, err
		}
		return NonNull(pd(config.JoinFunc, sep, list), ts.StringType), false, nil

	case config.LengthBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		s, err := g.stringOperand(args[0])
		if err != nil {
			return Operand{}, false, err
		}
		return NonNull(pd(config.LengthFunc, s), ts.IntegerType), false, nil

	case config.DefinedBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		a := args[0]
		switch {
		case a.NotNull:
			return NonNull("true", ts.BooleanType), false, nil
		case ts.IsBox(a.Type):
			return NonNull(pd(config.DefinedFunc, a.Code), ts.BooleanType), false, nil
		}
		return NonNull(paren(a.Code+" != null"), ts.BooleanType), false, nil

	case config.ScalarBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		a := args[0]
		switch {
		case a.MultiValued:
			return reduce(a), false, nil
		case ts.IsAggregate(a.Type):
			c, err := g.caster.Convert(a, ts.IntegerType)
			return NonNull(c, ts.IntegerType), false, err
		}
		return a, false, nil

	case config.DeleteBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		if _, ok := g.paths[n.Args[0]]; !ok {
			return Operand{}, false, unsupported("delete of a %s", describe(n.Args[0]))
		}
		return args[0], true, nil

	case config.ExistsBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		p, ok := g.paths[n.Args[0]]
		if !ok {
			return Operand{}, false, unsupported("exists on a %s", describe(n.Args[0]))
		}
		op, err := g.access.Exists(p)
		return op, false, err

	case config.KeysBuiltin, config.ValuesBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		h := args[0]
		if !ts.IsMap(h.Type) {
			return Operand{}, false, ts.NewIncompatibleError(h.Type, ts.MapOf(ts.BoxType))
		}
		if u.Context == ast.ScalarContext || u.Context == ast.BooleanContext {
			c, err := g.caster.Convert(h, ts.IntegerType)
			return NonNull(c, ts.IntegerType), false, err
		}
		if n.Name == config.KeysBuiltin {
			return NonNull(pd(config.KeysFunc, h.Code), ts.ListOf(ts.StringType)), false, nil
		}
		return NonNull(pd(config.ValuesFunc, h.Code), ts.ListOf(ts.Elem(h.Type))), false, nil

	case config.PushBuiltin, config.UnshiftBuiltin:
		if err := arity(1); err != nil {
			return Operand{}, false, err
		}
		return g.grow(n, args, u)

	case config.PopBuiltin, config.ShiftBuiltin:
		fn := config.PopFunc
		if n.Name == config.ShiftBuiltin {
			fn = config.ShiftFunc
		}
		target := Operand{}
		switch {
		case len(args) > 0:
			target = args[0]
		case g.currentSub() != nil:
			target = Text(g.currentSub().param, ts.ListOf(ts.BoxType))
		default:
			return Operand{}, false, unsupported("%s without an array outside a subroutine", n.Name)
		}
		if !ts.IsList(target.Type) {
			return Operand{}, false, unsupported("%s on %s; declare it as a list", n.Name, ts.Describe(target.Type))
		}
		return element(pd(fn, target.Code), ts.Elem(target.Type)), true, nil
	}
	return Operand{}, false, unsupported("builtin %s", n.Name)
}

// grow renders push and unshift. Lists grow in place; arrays are replaced
// by a grown copy, which needs an assignable variable.
func (g *Generator) grow(n *ast.Call, args []Operand, u ast.Usage) (Operand, bool, error) {
	fn := config.PushFunc
	if n.Name == config.UnshiftBuiltin {
		fn = config.UnshiftFunc
	}
	target := args[0]
	if !ts.IsArrayOrList(target.Type) {
		return Operand{}, false, ts.NewIncompatibleError(target.Type, ts.ListOf(ts.BoxType))
	}
	values, err := g.caster.BuildCollection(args[1:], ts.ArrayOf(ts.Elem(target.Type)))
	if err != nil {
		return Operand{}, false, err
	}
	if ts.IsList(target.Type) {
		return NonNull(call(config.PdClass, fn, target.Code, values), ts.IntegerType), true, nil
	}
	v, ok := n.Args[0].(*ast.Variable)
	if !ok || v.Binding == nil {
		return Operand{}, false, unsupported("%s on an array that is not a variable", n.Name)
	}
	ref := g.qualify(v.Binding)
	code := ref + " = " + call(config.PdClass, fn, ref, values)
	if u.Context == ast.VoidContext {
		return NonNull(code, target.Type), true, nil
	}
	return NonNull(paren(code)+".length", ts.IntegerType), true, nil
}
