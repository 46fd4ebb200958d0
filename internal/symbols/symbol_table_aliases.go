package symbols

import (
	"strconv"
	"strings"

	"github.com/funvibe/perldoop/internal/config"
)

// AliasAllocator hands out target identifiers that never collide with each
// other, with target keywords, or with runtime class names.
type AliasAllocator struct {
	counters map[string]int
}

func NewAliasAllocator() *AliasAllocator {
	return &AliasAllocator{counters: make(map[string]int)}
}

// Alias returns id itself when it is free, otherwise a fresh pd_<n><id>.
func (a *AliasAllocator) Alias(id string, conflict bool) string {
	if !conflict && !IsReserved(id) {
		return id
	}
	n := a.counters[id] + 1
	a.counters[id] = n
	return config.AliasPrefix + strconv.Itoa(n) + id
}

// Aux returns a fresh auxiliary identifier, optionally hinted.
func (a *AliasAllocator) Aux(hint string) string {
	return a.Alias(hint, true)
}

// IsReserved reports whether id may not be emitted verbatim.
func IsReserved(id string) bool {
	return id == "" || id == "_" ||
		config.ReservedNames[id] ||
		config.JavaKeywords[id] ||
		strings.HasPrefix(id, config.AliasPrefix)
}

// Normalize turns a package or qualified name into a target identifier:
// underscores are doubled, a leading digit and every other non-alphanumeric
// character become an underscore.
func Normalize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_':
			sb.WriteString("__")
		case i == 0 && c >= '0' && c <= '9':
			sb.WriteByte('_')
		case isAlnum(c):
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
