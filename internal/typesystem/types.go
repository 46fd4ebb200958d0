package typesystem

import "strings"

// Type is the static shape of a translated value.
//
// A Type is a linearized recursive sum: Scalar(kind) | Opaque(name) |
// Aggregate(shape, elem) | Ref(elem). Values are immutable; every operation
// returns a new Type.
type Type interface {
	String() string
	Equal(Type) bool
	// Depth is the number of tags in the linear form (1 for scalars).
	Depth() int
	isType()
}

// Kind identifies a terminal scalar type.
type Kind uint8

const (
	Integer Kind = iota + 1
	Long
	Float
	Double
	String
	Number // numeric of unknown precision
	Boolean
	File
	Box // dynamic value, used when inference cannot narrow further
)

var kindNames = map[Kind]string{
	Integer: "integer",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	String:  "string",
	Number:  "number",
	Boolean: "boolean",
	File:    "file",
	Box:     "box",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsNumeric reports whether k is Integer, Long, Float, Double or Number.
func (k Kind) IsNumeric() bool {
	return (k >= Integer && k <= Double) || k == Number
}

// Shape identifies an aggregate container.
type Shape uint8

const (
	Array Shape = iota + 1 // fixed array
	List                   // growable list
	Map                    // keyed map, keys are always strings
)

func (s Shape) String() string {
	switch s {
	case Array:
		return "array"
	case List:
		return "list"
	case Map:
		return "map"
	}
	return "invalid"
}

// TScalar is a terminal scalar type.
type TScalar struct {
	Kind Kind
}

func (t TScalar) String() string { return "<" + t.Kind.String() + ">" }
func (t TScalar) Depth() int     { return 1 }
func (t TScalar) isType()        {}

func (t TScalar) Equal(o Type) bool {
	other, ok := o.(TScalar)
	return ok && other.Kind == t.Kind
}

// TOpaque is a terminal target-language object type (e.g. a Hadoop Text).
type TOpaque struct {
	Name string
}

func (t TOpaque) String() string { return "<" + t.Name + ">" }
func (t TOpaque) Depth() int     { return 1 }
func (t TOpaque) isType()        {}

func (t TOpaque) Equal(o Type) bool {
	other, ok := o.(TOpaque)
	return ok && other.Name == t.Name
}

// TAggregate is an array, list or map of Elem.
type TAggregate struct {
	Shape Shape
	Elem  Type
}

func (t TAggregate) String() string { return "<" + t.Shape.String() + ">" + t.Elem.String() }
func (t TAggregate) Depth() int     { return 1 + t.Elem.Depth() }
func (t TAggregate) isType()        {}

func (t TAggregate) Equal(o Type) bool {
	other, ok := o.(TAggregate)
	return ok && other.Shape == t.Shape && other.Elem.Equal(t.Elem)
}

// TRef is a handle to a mutable cell holding Elem. It only ever appears as
// the outermost level of a Type.
type TRef struct {
	Elem Type
}

func (t TRef) String() string { return "<ref>" + t.Elem.String() }
func (t TRef) Depth() int     { return 1 + t.Elem.Depth() }
func (t TRef) isType()        {}

func (t TRef) Equal(o Type) bool {
	other, ok := o.(TRef)
	return ok && other.Elem.Equal(t.Elem)
}

// Common scalar types.
var (
	IntegerType = TScalar{Kind: Integer}
	LongType    = TScalar{Kind: Long}
	FloatType   = TScalar{Kind: Float}
	DoubleType  = TScalar{Kind: Double}
	StringType  = TScalar{Kind: String}
	NumberType  = TScalar{Kind: Number}
	BooleanType = TScalar{Kind: Boolean}
	FileType    = TScalar{Kind: File}
	BoxType     = TScalar{Kind: Box}
)

// Scalar returns the scalar type of kind k.
func Scalar(k Kind) Type {
	return TScalar{Kind: k}
}

// Opaque returns the opaque object type name.
func Opaque(name string) Type {
	return TOpaque{Name: name}
}

// Wrap returns shape(elem). A reference element is absorbed: aggregates hold
// nested containers by reference already.
func Wrap(shape Shape, elem Type) Type {
	if r, ok := elem.(TRef); ok {
		elem = r.Elem
	}
	return TAggregate{Shape: shape, Elem: elem}
}

// Prepend adds an outer aggregate level to t. It is Wrap with the
// arguments in linear order.
func Prepend(t Type, shape Shape) Type {
	return Wrap(shape, t)
}

func ArrayOf(elem Type) Type { return Wrap(Array, elem) }
func ListOf(elem Type) Type  { return Wrap(List, elem) }
func MapOf(elem Type) Type   { return Wrap(Map, elem) }

// RefTo returns Ref(elem). RefTo is idempotent on reference types.
func RefTo(elem Type) Type {
	if r, ok := elem.(TRef); ok {
		return r
	}
	return TRef{Elem: elem}
}

// Append inserts an aggregate level directly above the terminal of t:
// Append(<array><integer>, List) == <array><list><integer>.
func Append(t Type, shape Shape) Type {
	switch tt := t.(type) {
	case TAggregate:
		return TAggregate{Shape: tt.Shape, Elem: Append(tt.Elem, shape)}
	case TRef:
		return TRef{Elem: Append(tt.Elem, shape)}
	default:
		return TAggregate{Shape: shape, Elem: t}
	}
}

// Subtype strips i levels of nesting. Stripping past the terminal yields the
// terminal itself.
func Subtype(t Type, i int) Type {
	for ; i > 0; i-- {
		switch tt := t.(type) {
		case TAggregate:
			t = tt.Elem
		case TRef:
			t = tt.Elem
		default:
			return t
		}
	}
	return t
}

// Elem is Subtype(t, 1).
func Elem(t Type) Type {
	return Subtype(t, 1)
}

// Terminal returns the innermost scalar or opaque type of t.
func Terminal(t Type) Type {
	return Subtype(t, t.Depth()-1)
}

// WithTerminal replaces the terminal of t, keeping its shape.
func WithTerminal(t Type, terminal Type) Type {
	switch tt := t.(type) {
	case TAggregate:
		return TAggregate{Shape: tt.Shape, Elem: WithTerminal(tt.Elem, terminal)}
	case TRef:
		return TRef{Elem: WithTerminal(tt.Elem, terminal)}
	default:
		return terminal
	}
}

// Equal reports structural equality; nil types are only equal to nil.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// IsSimple reports whether t is a single terminal tag.
func IsSimple(t Type) bool {
	return t != nil && t.Depth() == 1
}

// IsAggregate reports whether t is an array, list or map.
func IsAggregate(t Type) bool {
	_, ok := t.(TAggregate)
	return ok
}

func IsRef(t Type) bool {
	_, ok := t.(TRef)
	return ok
}

func shapeOf(t Type) Shape {
	if agg, ok := t.(TAggregate); ok {
		return agg.Shape
	}
	return 0
}

func IsArray(t Type) bool       { return shapeOf(t) == Array }
func IsList(t Type) bool        { return shapeOf(t) == List }
func IsMap(t Type) bool         { return shapeOf(t) == Map }
func IsArrayOrList(t Type) bool { s := shapeOf(t); return s == Array || s == List }

// KindOf returns the scalar kind of t, or 0 when t is not a scalar.
func KindOf(t Type) Kind {
	if s, ok := t.(TScalar); ok {
		return s.Kind
	}
	return 0
}

func IsKind(t Type, k Kind) bool { return KindOf(t) == k }
func IsBox(t Type) bool          { return KindOf(t) == Box }
func IsString(t Type) bool       { return KindOf(t) == String }
func IsBoolean(t Type) bool      { return KindOf(t) == Boolean }
func IsFile(t Type) bool         { return KindOf(t) == File }

// IsNumeric reports whether t is a numeric scalar (Number included).
func IsNumeric(t Type) bool {
	return KindOf(t).IsNumeric()
}

// IsDecimal reports whether t is Float or Double.
func IsDecimal(t Type) bool {
	k := KindOf(t)
	return k == Float || k == Double
}

func IsOpaque(t Type) bool {
	_, ok := t.(TOpaque)
	return ok
}

// Tag is one position of the linear form of a Type.
type Tag uint8

const (
	TagInteger Tag = iota + 1
	TagLong
	TagFloat
	TagDouble
	TagString
	TagNumber
	TagBoolean
	TagFile
	TagBox
	TagOpaque
	TagArray
	TagList
	TagMap
	TagRef
)

// Tags returns the linear form of t, outermost first.
func Tags(t Type) []Tag {
	tags := make([]Tag, 0, t.Depth())
	for {
		switch tt := t.(type) {
		case TRef:
			tags = append(tags, TagRef)
			t = tt.Elem
		case TAggregate:
			tags = append(tags, TagArray+Tag(tt.Shape-Array))
			t = tt.Elem
		case TScalar:
			return append(tags, Tag(tt.Kind))
		default:
			return append(tags, TagOpaque)
		}
	}
}

// FromTags builds a Type from its linear form. opaque names the terminal when
// the last tag is TagOpaque.
func FromTags(tags []Tag, opaque string) (Type, error) {
	if len(tags) == 0 {
		return nil, &TagError{Reason: "empty type"}
	}
	last := tags[len(tags)-1]
	var t Type
	switch {
	case last >= TagInteger && last <= TagBox:
		t = TScalar{Kind: Kind(last)}
	case last == TagOpaque:
		if opaque == "" {
			return nil, &TagError{Reason: "opaque type without a name"}
		}
		t = TOpaque{Name: opaque}
	default:
		return nil, &TagError{Reason: "type does not end in a terminal"}
	}
	for i := len(tags) - 2; i >= 0; i-- {
		switch tag := tags[i]; {
		case tag >= TagArray && tag <= TagMap:
			t = TAggregate{Shape: Array + Shape(tag-TagArray), Elem: t}
		case tag == TagRef:
			if i != 0 {
				return nil, &TagError{Reason: "ref must be the outermost tag"}
			}
			t = TRef{Elem: t}
		default:
			return nil, &TagError{Reason: "terminal tag in non-terminal position"}
		}
	}
	return t, nil
}

// Describe renders a type in a compact human form for diagnostics,
// e.g. "ref to array of integer".
func Describe(t Type) string {
	var parts []string
	for {
		switch tt := t.(type) {
		case TRef:
			parts = append(parts, "ref to")
			t = tt.Elem
			continue
		case TAggregate:
			parts = append(parts, tt.Shape.String()+" of")
			t = tt.Elem
			continue
		case TScalar:
			parts = append(parts, tt.Kind.String())
		case TOpaque:
			parts = append(parts, tt.Name)
		}
		return strings.Join(parts, " ")
	}
}
