package symbols

import (
	"sort"
	"strings"
)

// Package holds the public variables and subroutines of one Perl package.
type Package struct {
	Name  string
	Class string // target class name
	vars  map[bindingKey]*Binding
	subs  map[string]*Sub
}

// NewPackage creates an empty package. Nested names (Foo::Bar) map to the
// normalized last segment as class name.
func NewPackage(name string) *Package {
	class := name
	if i := strings.LastIndex(name, "::"); i >= 0 {
		class = name[i+2:]
	}
	if IsReserved(class) {
		class = Normalize(name)
	}
	return &Package{
		Name:  name,
		Class: class,
		vars:  make(map[bindingKey]*Binding),
		subs:  make(map[string]*Sub),
	}
}

func (p *Package) AddVar(b *Binding) {
	b.Package = p.Name
	p.vars[bindingKey{b.Name, b.Sigil}] = b
}

func (p *Package) Var(name string, sigil Sigil) (*Binding, bool) {
	b, ok := p.vars[bindingKey{name, sigil}]
	return b, ok
}

func (p *Package) AddSub(s *Sub) {
	s.Package = p.Name
	p.subs[s.Name] = s
}

func (p *Package) Sub(name string) (*Sub, bool) {
	s, ok := p.subs[name]
	return s, ok
}

// Vars returns the public variables ordered by name and sigil.
func (p *Package) Vars() []*Binding {
	out := make([]*Binding, 0, len(p.vars))
	for _, b := range p.vars {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Sigil < out[j].Sigil
	})
	return out
}

// Subs returns the subroutines ordered by name.
func (p *Package) Subs() []*Sub {
	out := make([]*Sub, 0, len(p.subs))
	for _, s := range p.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Registry is the process-wide set of packages, shared by every unit
// translated in one run.
type Registry struct {
	packages map[string]*Package
}

func NewRegistry() *Registry {
	return &Registry{packages: make(map[string]*Package)}
}

func (r *Registry) Package(name string) (*Package, bool) {
	p, ok := r.packages[name]
	return p, ok
}

// Put registers p, replacing any package of the same name.
func (r *Registry) Put(p *Package) {
	r.packages[p.Name] = p
}

// Packages returns all packages ordered by name.
func (r *Registry) Packages() []*Package {
	out := make([]*Package, 0, len(r.packages))
	for _, p := range r.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Importer loads the exports of a package translated by another unit.
type Importer interface {
	Import(name string) (*Package, error)
}
