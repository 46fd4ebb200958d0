package codegen

import (
	"strings"

	"github.com/funvibe/perldoop/internal/config"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

var scalarNames = map[ts.Kind]string{
	ts.Integer: "Integer",
	ts.Long:    "Long",
	ts.Float:   "Float",
	ts.Double:  "Double",
	ts.String:  "String",
	ts.Number:  "Number",
	ts.Boolean: "Boolean",
	ts.File:    config.FileClass,
	ts.Box:     config.BoxClass,
}

// JavaType renders the declaration type of t. Nested aggregates are stored
// directly: <array><list><integer> is PerlList<Integer>[].
func JavaType(t ts.Type) string {
	switch tt := t.(type) {
	case ts.TScalar:
		return scalarNames[tt.Kind]
	case ts.TOpaque:
		return tt.Name
	case ts.TRef:
		return config.RefClass + "<" + JavaType(tt.Elem) + ">"
	case ts.TAggregate:
		switch tt.Shape {
		case ts.Array:
			return JavaType(tt.Elem) + "[]"
		case ts.List:
			return config.ListClass + "<" + JavaType(tt.Elem) + ">"
		case ts.Map:
			return config.MapClass + "<" + JavaType(tt.Elem) + ">"
		}
	}
	return "Object"
}

// Erasure is JavaType without type arguments, as required by array
// creation and class literals.
func Erasure(t ts.Type) string {
	s := JavaType(t)
	var sb strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		default:
			if depth == 0 {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// NewArray renders the creation of an array of elem with the given length.
func NewArray(elem ts.Type, length string) string {
	dims := 0
	for ts.IsArray(elem) {
		elem = ts.Elem(elem)
		dims++
	}
	return "new " + Erasure(elem) + "[" + length + "]" + strings.Repeat("[]", dims)
}

// NewAggregate renders an empty aggregate of type t with capacity size.
func NewAggregate(t ts.Type, size string) string {
	switch {
	case ts.IsArray(t):
		return NewArray(ts.Elem(t), size)
	case ts.IsList(t):
		return "new " + config.ListClass + "<>(" + size + ")"
	case ts.IsMap(t):
		return "new " + config.MapClass + "<>(" + size + ")"
	}
	return "null"
}

// Empty renders the canonical empty instance of an aggregate type.
func Empty(t ts.Type) string {
	return NewAggregate(t, "0")
}

// ArrayInitializer renders new E[]{items...}.
func ArrayInitializer(elem ts.Type, items []string) string {
	return NewArray(elem, "") + "{" + strings.Join(items, ", ") + "}"
}

// ClassLiteral renders T.class for a union finalizer.
func ClassLiteral(t ts.Type) string {
	return Erasure(t) + ".class"
}

// RefNew wraps code in a new reference cell to t's referent.
func RefNew(refType ts.Type, code string) string {
	return "new " + JavaType(ts.RefTo(refType)) + "(" + code + ")"
}

func call(class, fn string, args ...string) string {
	return class + "." + fn + "(" + strings.Join(args, ", ") + ")"
}

func castTo(t ts.Type, code string) string {
	return "((" + JavaType(t) + ") " + code + ")"
}

func paren(code string) string {
	return "(" + code + ")"
}
