package symbols

import (
	"github.com/funvibe/perldoop/internal/typesystem"
)

// Sigil is the container prefix of a variable: $x, @x and %x are three
// independent variables.
type Sigil byte

const (
	NoSigil     Sigil = 0
	ScalarSigil Sigil = '$'
	ArraySigil  Sigil = '@'
	HashSigil   Sigil = '%'
	CodeSigil   Sigil = '&'
)

func (s Sigil) String() string {
	if s == NoSigil {
		return ""
	}
	return string(rune(s))
}

// ParseSigil converts a one-character string to a Sigil.
func ParseSigil(s string) (Sigil, bool) {
	if len(s) != 1 {
		return NoSigil, false
	}
	switch sig := Sigil(s[0]); sig {
	case ScalarSigil, ArraySigil, HashSigil, CodeSigil:
		return sig, true
	}
	return NoSigil, false
}

// Accepts reports whether a variable with this sigil may hold t.
func (s Sigil) Accepts(t typesystem.Type) bool {
	switch s {
	case ScalarSigil:
		return !typesystem.IsAggregate(t)
	case ArraySigil:
		return typesystem.IsArrayOrList(t)
	case HashSigil:
		return typesystem.IsMap(t)
	}
	return false
}

type ScopeType int

const (
	ScopeClass    ScopeType = iota // File level: bindings become class fields
	ScopeFunction                  // Subroutine body
	ScopeBlock
)

// Binding is a declared variable.
type Binding struct {
	Name    string
	Sigil   Sigil
	Type    typesystem.Type
	Alias   string // Identifier emitted in target code
	Public  bool   // Declared with our
	Depth   int    // Scope depth at declaration, 0 is the class level
	Package string // Owning package of public bindings
}

// Field reports whether the binding is emitted as a class field: file
// level lexicals and every package variable.
func (b *Binding) Field() bool {
	return b.Depth == 0 || b.Public
}

// Sub is a declared subroutine. Subroutines take a flat argument array of
// boxes and return Returns.
type Sub struct {
	Name    string
	Alias   string
	Package string
	Returns typesystem.Type
}

type bindingKey struct {
	name  string
	sigil Sigil
}

type scope struct {
	scopeType ScopeType
	bindings  map[bindingKey]*Binding
}

func newScope(t ScopeType) *scope {
	return &scope{scopeType: t, bindings: make(map[bindingKey]*Binding)}
}
