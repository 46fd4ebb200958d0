package codegen

import (
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// Path is an element access, a slice or a whole dereference, with its
// pieces already generated.
type Path struct {
	// Base is the aggregate for direct access, or a Ref or Box when
	// ThroughRef or Deref is set.
	Base       Operand
	ThroughRef bool
	Deref      bool
	Keys       []Operand
	Brace      bool
	Context    symbols.Sigil

	BaseRepeatable bool
	KeysRepeatable bool
}

func (p Path) multi() bool {
	return p.Context != symbols.ScalarSigil || len(p.Keys) != 1 || ts.IsAggregate(p.Keys[0].Type)
}

// AccessEngine renders reads, writes, read-writes and deletes of paths.
type AccessEngine struct {
	caster  *Caster
	symbols *symbols.SymbolTable
	pending *PendingQueue
}

func NewAccessEngine(c *Caster, st *symbols.SymbolTable, q *PendingQueue) *AccessEngine {
	return &AccessEngine{caster: c, symbols: st, pending: q}
}

// referent is the type a Box is assumed to point to at an access site.
func (p Path) referent() ts.Type {
	if p.Deref {
		switch p.Context {
		case symbols.ArraySigil:
			return ts.ListOf(ts.BoxType)
		case symbols.HashSigil:
			return ts.MapOf(ts.BoxType)
		}
		return ts.BoxType
	}
	if p.Brace {
		return ts.MapOf(ts.BoxType)
	}
	return ts.ListOf(ts.BoxType)
}

// cell renders the reference cell of a path through a reference.
func (p Path) cell() (string, ts.Type, bool) {
	switch {
	case ts.IsRef(p.Base.Type) && !p.Base.Raw:
		return p.Base.Code, p.Base.Type, true
	case ts.IsBox(p.Base.Type):
		t := ts.RefTo(p.referent())
		return castTo(t, helper(config.ToRefFunc, p.Base.Code)), t, true
	}
	return "", nil, false
}

// container resolves the aggregate (or, for Deref, the referent) a path
// operates on.
func (e *AccessEngine) container(p Path) (Operand, error) {
	var cont Operand
	switch {
	case !p.ThroughRef && !p.Deref:
		cont = p.Base
		// $a[0][1]: an element holding an aggregate is indexed directly
		if cont.Raw && ts.IsRef(cont.Type) {
			cont = deref(cont)
		}
	case ts.IsRef(p.Base.Type):
		cont = deref(p.Base)
	case ts.IsBox(p.Base.Type):
		t := p.referent()
		cont = Text(castTo(ts.RefTo(t), helper(config.ToRefFunc, p.Base.Code))+".get()", t)
	default:
		return Operand{}, ts.NewIncompatibleError(p.Base.Type, ts.RefTo(p.referent()))
	}
	if p.Deref {
		if !p.Context.Accepts(cont.Type) {
			return Operand{}, ts.NewIncompatibleError(p.Base.Type, ts.RefTo(p.referent()))
		}
		return cont, nil
	}
	if !ts.IsAggregate(cont.Type) || p.Brace != ts.IsMap(cont.Type) {
		return Operand{}, ts.NewIncompatibleError(cont.Type, p.referent())
	}
	return cont, nil
}

func (e *AccessEngine) key(p Path, cont ts.Type) (string, ts.Type, error) {
	if ts.IsMap(cont) {
		code, err := e.caster.Convert(p.Keys[0], ts.StringType)
		return code, ts.StringType, err
	}
	code, err := e.caster.ConvertNonNull(p.Keys[0], ts.IntegerType)
	return code, ts.IntegerType, err
}

func (e *AccessEngine) keys(p Path, cont ts.Type) (string, error) {
	if ts.IsMap(cont) {
		return e.caster.BuildCollection(p.Keys, ts.ArrayOf(ts.StringType))
	}
	return e.caster.BuildCollection(p.Keys, ts.ArrayOf(ts.NumberType))
}

func element(code string, elem ts.Type) Operand {
	if ts.IsAggregate(elem) {
		return Operand{Code: code, Type: ts.RefTo(elem), Raw: true}
	}
	return Text(code, elem)
}

func single(cont string, t ts.Type, key string) string {
	if ts.IsArray(t) {
		return cont + "[" + key + "]"
	}
	return cont + ".get(" + key + ")"
}

func store(cont string, t ts.Type, key, value string) string {
	switch {
	case ts.IsArray(t):
		return cont + "[" + key + "] = " + value
	case ts.IsList(t):
		return cont + ".set(" + key + ", " + value + ")"
	}
	return cont + ".put(" + key + ", " + value + ")"
}

// sliceType is the type of an @-slice of an aggregate.
func sliceType(cont ts.Type) ts.Type {
	if ts.IsArray(cont) {
		return cont
	}
	return ts.ListOf(ts.Elem(cont))
}

func boxer(elem ts.Type) string {
	if ts.IsAggregate(elem) {
		return "pd_v -> " + helper(config.BoxFunc, RefNew(elem, "pd_v"))
	}
	return "pd_v -> " + helper(config.BoxFunc, "pd_v")
}

// Target is the type a value written through p must have.
func (e *AccessEngine) Target(p Path) (ts.Type, error) {
	cont, err := e.container(p)
	if err != nil {
		return nil, err
	}
	if p.Deref {
		return cont.Type, nil
	}
	if !p.multi() || p.Context == symbols.ScalarSigil {
		return ts.Elem(cont.Type), nil
	}
	if p.Context == symbols.ArraySigil {
		return sliceType(cont.Type), nil
	}
	return nil, unsupported("assignment to a hash slice of %s", ts.Describe(cont.Type))
}

// Read renders the value at p.
func (e *AccessEngine) Read(p Path) (Operand, error) {
	cont, err := e.container(p)
	if err != nil {
		return Operand{}, err
	}
	if p.Deref {
		return cont, nil
	}
	elem := ts.Elem(cont.Type)
	if !p.multi() {
		k, _, err := e.key(p, cont.Type)
		if err != nil {
			return Operand{}, err
		}
		return element(single(cont.Code, cont.Type, k), elem), nil
	}
	ks, err := e.keys(p, cont.Type)
	if err != nil {
		return Operand{}, err
	}
	switch p.Context {
	case symbols.ScalarSigil:
		return element(call(config.PdClass, config.SAccessFunc, cont.Code, ks), elem), nil
	case symbols.ArraySigil:
		return NonNull(call(config.PdClass, config.AAccessFunc, cont.Code, ks), sliceType(cont.Type)), nil
	}
	return NonNull(call(config.PdClass, config.HAccessFunc, cont.Code, ks, boxer(elem)), ts.MapOf(ts.BoxType)), nil
}

// Write renders the store of value, already of type Target(p), at p.
func (e *AccessEngine) Write(p Path, value string) (string, error) {
	if p.Deref {
		cell, _, ok := p.cell()
		if !ok {
			return "", unsupported("assignment through a nested element dereference")
		}
		return cell + ".set(" + value + ")", nil
	}
	cont, err := e.container(p)
	if err != nil {
		return "", err
	}
	if !p.multi() {
		k, _, err := e.key(p, cont.Type)
		if err != nil {
			return "", err
		}
		return store(cont.Code, cont.Type, k, value), nil
	}
	ks, err := e.keys(p, cont.Type)
	if err != nil {
		return "", err
	}
	switch p.Context {
	case symbols.ScalarSigil:
		return call(config.PdClass, config.SAccessFunc, cont.Code, ks, value), nil
	case symbols.ArraySigil:
		return call(config.PdClass, config.AAccessFunc, cont.Code, ks, value), nil
	}
	return "", unsupported("assignment to a hash slice")
}

// ReadWrite renders a path that is read and then written in one
// expression. A base or key that cannot be evaluated twice is captured in
// an auxiliary variable: the write evaluates and stores it, the read reuses
// it.
func (e *AccessEngine) ReadWrite(p Path) (Operand, func(string) string, error) {
	if p.Deref {
		cell, t, ok := p.cell()
		if !ok {
			return Operand{}, nil, unsupported("assignment through a nested element dereference")
		}
		readCell, writeCell := cell, cell
		if !p.BaseRepeatable {
			readCell, writeCell = e.capture(t, cell)
		}
		read := Text(readCell+".get()", ts.Elem(t))
		return read, func(v string) string { return writeCell + ".set(" + v + ")" }, nil
	}
	if p.multi() {
		return Operand{}, nil, unsupported("compound assignment to a slice")
	}
	cont, err := e.container(p)
	if err != nil {
		return Operand{}, nil, err
	}
	k, kt, err := e.key(p, cont.Type)
	if err != nil {
		return Operand{}, nil, err
	}
	readBase, writeBase := cont.Code, cont.Code
	if !p.BaseRepeatable {
		readBase, writeBase = e.capture(cont.Type, cont.Code)
	}
	readKey, writeKey := k, k
	if !p.KeysRepeatable {
		readKey, writeKey = e.capture(kt, k)
	}
	read := element(single(readBase, cont.Type, readKey), ts.Elem(cont.Type))
	write := func(v string) string {
		return store(writeBase, cont.Type, writeKey, v)
	}
	return read, write, nil
}

// capture declares an auxiliary variable for code and returns its read
// and its assigning renderings.
func (e *AccessEngine) capture(t ts.Type, code string) (string, string) {
	alias := e.symbols.NewAuxiliaryAlias("")
	e.pending.Add(Declaration{Type: t, Alias: alias})
	return alias, paren(alias + " = " + code)
}

// Delete renders the removal of p, yielding the removed value.
func (e *AccessEngine) Delete(p Path) (Operand, error) {
	if p.Deref {
		return Operand{}, unsupported("delete of a whole dereference")
	}
	cont, err := e.container(p)
	if err != nil {
		return Operand{}, err
	}
	elem := ts.Elem(cont.Type)
	if !p.multi() {
		k, _, err := e.key(p, cont.Type)
		if err != nil {
			return Operand{}, err
		}
		return element(call(config.PdClass, config.DeleteFunc, cont.Code, k), elem), nil
	}
	ks, err := e.keys(p, cont.Type)
	if err != nil {
		return Operand{}, err
	}
	if p.Context != symbols.ScalarSigil {
		return NonNull(call(config.PdClass, config.DeleteFunc, cont.Code, ks), sliceType(cont.Type)), nil
	}
	if ts.IsMap(cont.Type) {
		return element(call(config.PdClass, config.DeleteFunc, cont.Code, ks, "true"), elem), nil
	}
	last, err := e.caster.ConvertNonNull(Operand{Code: ks, Type: ts.ArrayOf(ts.NumberType), NotNull: true, MultiValued: true}, ts.IntegerType)
	if err != nil {
		return Operand{}, err
	}
	return element(call(config.PdClass, config.DeleteFunc, cont.Code, last), elem), nil
}

// Exists renders the presence test of an element.
func (e *AccessEngine) Exists(p Path) (Operand, error) {
	if p.Deref || p.multi() {
		return Operand{}, unsupported("exists on a slice or dereference")
	}
	cont, err := e.container(p)
	if err != nil {
		return Operand{}, err
	}
	k, _, err := e.key(p, cont.Type)
	if err != nil {
		return Operand{}, err
	}
	if ts.IsMap(cont.Type) {
		return NonNull(cont.Code+".containsKey("+k+")", ts.BooleanType), nil
	}
	return NonNull(call(config.PdClass, config.ExistsFunc, cont.Code, k), ts.BooleanType), nil
}

// MakeRef renders \target. A reference to a reference is the reference
// itself.
func MakeRef(target Operand) Operand {
	if ts.IsRef(target.Type) {
		return target
	}
	return Operand{Code: RefNew(target.Type, target.Code), Type: ts.RefTo(target.Type), NotNull: true}
}
