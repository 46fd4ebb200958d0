package symbols

import (
	"github.com/funvibe/perldoop/internal/typesystem"
)

// SymbolTable is the scope stack of one compilation unit.
type SymbolTable struct {
	scopes   []*scope
	aliases  *AliasAllocator
	predecl  map[string]typesystem.Type
	subs     map[string]*Sub // subroutines of a unit without package
	registry *Registry
	pkg      *Package
	used     bool
}

// NewSymbolTable creates a table with the class-level scope open. A nil
// registry gets a private one.
func NewSymbolTable(registry *Registry) *SymbolTable {
	if registry == nil {
		registry = NewRegistry()
	}
	return &SymbolTable{
		scopes:   []*scope{newScope(ScopeClass)},
		aliases:  NewAliasAllocator(),
		predecl:  make(map[string]typesystem.Type),
		subs:     make(map[string]*Sub),
		registry: registry,
	}
}

func (st *SymbolTable) Registry() *Registry { return st.registry }

// EnterScope pushes a scope.
func (st *SymbolTable) EnterScope(t ScopeType) {
	st.scopes = append(st.scopes, newScope(t))
}

// ExitScope pops the innermost scope. The class scope is never popped.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// Depth is the number of open scopes above the class scope.
func (st *SymbolTable) Depth() int {
	return len(st.scopes) - 1
}

// Restore pops scopes until Depth() == depth.
func (st *SymbolTable) Restore(depth int) {
	for st.Depth() > depth && st.Depth() > 0 {
		st.ExitScope()
	}
}

// InFunction reports whether a subroutine scope is open.
func (st *SymbolTable) InFunction() bool {
	for i := len(st.scopes) - 1; i > 0; i-- {
		if st.scopes[i].scopeType == ScopeFunction {
			return true
		}
	}
	return false
}

// Used reports whether anything has been declared yet.
func (st *SymbolTable) Used() bool {
	return st.used
}

// Declare adds a binding to the innermost scope. The alias is the name
// itself unless another visible variable of any sigil shares the name or the
// name is reserved. Public bindings are also exported by the current package.
func (st *SymbolTable) Declare(name string, sigil Sigil, t typesystem.Type, public bool) *Binding {
	st.used = true
	b := &Binding{
		Name:   name,
		Sigil:  sigil,
		Type:   t,
		Alias:  st.aliases.Alias(name, st.nameVisible(name)),
		Public: public,
		Depth:  st.Depth(),
	}
	if public && st.pkg != nil {
		st.pkg.AddVar(b)
	}
	st.scopes[len(st.scopes)-1].bindings[bindingKey{name, sigil}] = b
	return b
}

// Bind declares a variable and returns its alias.
func (st *SymbolTable) Bind(name string, sigil Sigil, t typesystem.Type, public bool) string {
	return st.Declare(name, sigil, t, public).Alias
}

func (st *SymbolTable) nameVisible(name string) bool {
	for _, s := range st.scopes {
		for k := range s.bindings {
			if k.name == name {
				return true
			}
		}
	}
	return false
}

// Lookup finds the innermost binding of (name, sigil).
func (st *SymbolTable) Lookup(name string, sigil Sigil) (*Binding, bool) {
	key := bindingKey{name, sigil}
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if b, ok := st.scopes[i].bindings[key]; ok {
			return b, true
		}
	}
	return nil, false
}

// LookupQualified finds a public variable of a named package.
func (st *SymbolTable) LookupQualified(pkg, name string, sigil Sigil) (*Binding, bool) {
	p, ok := st.registry.Package(pkg)
	if !ok {
		return nil, false
	}
	return p.Var(name, sigil)
}

// NewAuxiliaryAlias returns a fresh identifier for a generated variable.
func (st *SymbolTable) NewAuxiliaryAlias(hint string) string {
	return st.aliases.Aux(hint)
}

// RegisterPredeclaration records the type announced by a pragma for the
// next declaration of name.
func (st *SymbolTable) RegisterPredeclaration(name string, t typesystem.Type) {
	st.predecl[name] = t
}

// ConsumePredeclaration returns and removes the predeclared type of name.
func (st *SymbolTable) ConsumePredeclaration(name string) (typesystem.Type, bool) {
	t, ok := st.predecl[name]
	if ok {
		delete(st.predecl, name)
	}
	return t, ok
}

// CreatePackage opens a package for the unit. It only succeeds while the
// unit has no package and nothing has been declared.
func (st *SymbolTable) CreatePackage(name string) bool {
	if st.pkg != nil || st.used {
		return false
	}
	st.pkg = NewPackage(name)
	st.registry.Put(st.pkg)
	return true
}

// Package returns the unit's package, or nil.
func (st *SymbolTable) Package() *Package {
	return st.pkg
}

// DeclareSub registers a subroutine of the unit.
func (st *SymbolTable) DeclareSub(name string, returns typesystem.Type) *Sub {
	st.used = true
	s := &Sub{Name: name, Alias: st.aliases.Alias(name, false), Returns: returns}
	if st.pkg != nil {
		st.pkg.AddSub(s)
	} else {
		st.subs[name] = s
	}
	return s
}

// LookupSub finds a subroutine of the unit, or of the named package when
// pkg is not empty.
func (st *SymbolTable) LookupSub(pkg, name string) (*Sub, bool) {
	if pkg == "" {
		if st.pkg != nil {
			return st.pkg.Sub(name)
		}
		s, ok := st.subs[name]
		return s, ok
	}
	p, ok := st.registry.Package(pkg)
	if !ok {
		return nil, false
	}
	return p.Sub(name)
}
