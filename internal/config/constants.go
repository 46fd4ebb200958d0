package config

const SourceFileExt = ".pl"

// TreeFileExtensions are the recognized extensions of parsed tree documents.
var TreeFileExtensions = []string{".pdt.yaml", ".pdt.yml", ".yaml", ".yml"}

const TargetFileExt = ".java"

// AliasPrefix starts every generated auxiliary or collision alias.
const AliasPrefix = "pd_"

// Runtime support classes
const (
	CastingClass  = "Casting"
	PdClass       = "Pd"
	PerlClass     = "Perl"
	RefClass      = "Ref"
	BoxClass      = "Box"
	ListClass     = "PerlList"
	MapClass      = "PerlMap"
	FileClass     = "PerlFile"
	RegexClass    = "Regex"
	RuntimePkg    = "perldoop.lib"
	IOException   = "IOException"
	ArityErrClass = "IllegalArgumentException"
)

// Box view accessors
const (
	BooleanView = "booleanValue"
	IntView     = "intValue"
	LongView    = "longValue"
	FloatView   = "floatValue"
	DoubleView  = "doubleValue"
	StringView  = "stringValue"
	NumberView  = "numberValue"
	RefView     = "refValue"
	FileView    = "fileValue"
)

// Casting helpers
const (
	ToBooleanFunc   = "toBoolean"
	ToIntegerFunc   = "toInteger"
	ToLongFunc      = "toLong"
	ToFloatFunc     = "toFloat"
	ToDoubleFunc    = "toDouble"
	ToStringFunc    = "toString"
	ToNumberFunc    = "toNumber"
	ToRefFunc       = "toRef"
	ToFileFunc      = "toFile"
	ParseDoubleFunc = "parseDouble"
	BoxFunc         = "box"
	CastFunc        = "cast"
)

// Pd helpers
const (
	CheckNullFunc = "checkNull"
	LastFunc      = "last"
	FirstFunc     = "first"
	UnionFunc     = "union"
	SAccessFunc   = "sAccess"
	AAccessFunc   = "aAccess"
	HAccessFunc   = "hAccess"
	DeleteFunc    = "delete"
	ExistsFunc    = "exists"
	DefinedFunc   = "defined"
	EvalFunc      = "eval"
	RepeatFunc    = "repeat"
	PowFunc       = "pow"
	CompareFunc   = "compare"
	KeysFunc      = "keys"
	ValuesFunc    = "values"
	JoinFunc      = "join"
	PrintFunc     = "print"
	DieFunc       = "die"
	WarnFunc      = "warn"
	PushFunc      = "push"
	PopFunc       = "pop"
	ShiftFunc     = "shift"
	UnshiftFunc   = "unshift"
	LengthFunc    = "length"
	SayFunc       = "say"
	RangeFunc     = "range"
	AtFunc        = "at"
	RestFunc      = "rest"
)

// ArityMessage is raised by generated code when a hash is assigned from an
// odd number of elements.
const ArityMessage = "Odd number of elements in hash assignment"

// Reserved target names that are never emitted as bare identifiers.
var ReservedNames = map[string]bool{
	IOException:  true,
	BoxClass:     true,
	CastingClass: true,
	PdClass:      true,
	PerlClass:    true,
	FileClass:    true,
	ListClass:    true,
	MapClass:     true,
	RefClass:     true,
	RegexClass:   true,
	"__":         true,
	"Text":       true,
	"Mapper":     true,
	"Reducer":    true,
}

// JavaKeywords lists the target language keywords.
var JavaKeywords = map[string]bool{
	"abstract": true, "continue": true, "for": true, "new": true, "switch": true,
	"assert": true, "default": true, "goto": true, "package": true, "synchronized": true,
	"boolean": true, "do": true, "if": true, "private": true, "this": true,
	"break": true, "double": true, "implements": true, "protected": true, "throw": true,
	"byte": true, "else": true, "import": true, "public": true, "throws": true,
	"case": true, "enum": true, "instanceof": true, "return": true, "transient": true,
	"catch": true, "extends": true, "int": true, "short": true, "try": true,
	"char": true, "final": true, "interface": true, "static": true, "void": true,
	"class": true, "finally": true, "long": true, "strictfp": true, "volatile": true,
	"const": true, "float": true, "native": true, "super": true, "while": true,
	"true": true, "false": true, "null": true,
}

// Builtin function names routed through the code generator.
const (
	DeleteBuiltin  = "delete"
	ExistsBuiltin  = "exists"
	DefinedBuiltin = "defined"
	PushBuiltin    = "push"
	PopBuiltin     = "pop"
	ShiftBuiltin   = "shift"
	UnshiftBuiltin = "unshift"
	KeysBuiltin    = "keys"
	ValuesBuiltin  = "values"
	ScalarBuiltin  = "scalar"
	JoinBuiltin    = "join"
	PrintBuiltin   = "print"
	LengthBuiltin  = "length"
	DieBuiltin     = "die"
	WarnBuiltin    = "warn"
	SayBuiltin     = "say"
)

// Builtins is the set of builtin names a call may resolve to.
var Builtins = map[string]bool{
	DeleteBuiltin: true, ExistsBuiltin: true, DefinedBuiltin: true,
	PushBuiltin: true, PopBuiltin: true, ShiftBuiltin: true, UnshiftBuiltin: true,
	KeysBuiltin: true, ValuesBuiltin: true, ScalarBuiltin: true, JoinBuiltin: true,
	PrintBuiltin: true, LengthBuiltin: true, DieBuiltin: true, WarnBuiltin: true,
	SayBuiltin: true,
}

// Logger names
const (
	TranslatorLog = "perldoop.translator"
	CatalogLog    = "perldoop.catalog"
	CLILog        = "perldoop.cli"
)
