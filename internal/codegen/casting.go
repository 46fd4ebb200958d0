package codegen

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/perldoop/internal/config"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// Caster renders conversions between any two types of the model.
type Caster struct {
	// NullChecks wraps numeric and string conversions of possibly-null
	// operands in a runtime check where a null would fail.
	NullChecks bool
}

func NewCaster(nullChecks bool) *Caster {
	return &Caster{NullChecks: nullChecks}
}

// Convert renders op as a value of type dest.
func (c *Caster) Convert(op Operand, dest ts.Type) (string, error) {
	return c.convert(op, dest, 0)
}

// ConvertNonNull is Convert for consumers that cannot accept null, such as
// arithmetic operands and conditions.
func (c *Caster) ConvertNonNull(op Operand, dest ts.Type) (string, error) {
	if op.Undef {
		if z, ok := zeroValue(dest); ok {
			return z, nil
		}
	}
	code, err := c.Convert(op, dest)
	if err != nil {
		return "", err
	}
	if c.NullChecks && !op.NotNull && !op.Constant && (ts.IsNumeric(dest) || ts.IsString(dest)) {
		return call(config.PdClass, config.CheckNullFunc, code), nil
	}
	return code, nil
}

func (c *Caster) convert(op Operand, dest ts.Type, depth int) (string, error) {
	if op.MultiValued && !ts.IsAggregate(dest) {
		op = reduce(op)
	}
	if op.Undef {
		if ts.IsBoolean(dest) {
			return "false", nil
		}
		return "null", nil
	}
	switch d := dest.(type) {
	case ts.TScalar:
		switch d.Kind {
		case ts.Boolean:
			return c.toBoolean(op)
		case ts.Integer, ts.Long, ts.Float, ts.Double:
			return c.toNumeric(op, d.Kind)
		case ts.String:
			return c.toString(op)
		case ts.Box:
			return c.toBox(op), nil
		case ts.Number:
			return c.toNumber(op)
		case ts.File:
			return c.toFile(op)
		}
	case ts.TOpaque:
		if ts.Equal(op.Type, dest) {
			return op.Code, nil
		}
	case ts.TRef:
		return c.toRef(op, d, depth)
	case ts.TAggregate:
		return c.toAggregate(op, d, depth)
	}
	return "", ts.NewIncompatibleError(op.Type, dest)
}

// reduce turns a multi-valued operand into its last (or first) element. An
// aggregate element is referenced.
func reduce(op Operand) Operand {
	fn := config.LastFunc
	if op.FirstOfMany {
		fn = config.FirstFunc
	}
	elem := ts.Elem(op.Type)
	code := call(config.PdClass, fn, op.Code)
	if ts.IsAggregate(elem) {
		return Operand{Code: code, Type: ts.RefTo(elem), Raw: true}
	}
	return Operand{Code: code, Type: elem}
}

// materialize renders a Ref operand as a reference cell.
func materialize(op Operand) string {
	if op.Raw {
		return RefNew(op.Type, op.Code)
	}
	return op.Code
}

// deref renders the referent of a Ref operand.
func deref(op Operand) Operand {
	if op.Raw {
		return Operand{Code: op.Code, Type: ts.Elem(op.Type), NotNull: op.NotNull}
	}
	return Operand{Code: op.Code + ".get()", Type: ts.Elem(op.Type)}
}

// count renders the element count of a non-null aggregate operand.
func count(op Operand) string {
	if ts.IsArray(op.Type) {
		return op.Code + ".length"
	}
	return op.Code + ".size()"
}

// isHandle reports types whose truth is their non-nullness.
func isHandle(t ts.Type) bool {
	return ts.IsRef(t) || ts.IsFile(t) || ts.IsOpaque(t)
}

func helper(fn string, code string) string {
	return call(config.CastingClass, fn, code)
}

func (c *Caster) toBoolean(op Operand) (string, error) {
	t, x := op.Type, op.Code
	switch {
	case ts.IsAggregate(t):
		if !op.NotNull {
			return helper(config.ToBooleanFunc, x), nil
		}
		if ts.IsArray(t) {
			return paren(x + ".length > 0"), nil
		}
		return paren("!" + x + ".isEmpty()"), nil
	case isHandle(t):
		return paren(x + " != null"), nil
	}
	switch ts.KindOf(t) {
	case ts.Boolean:
		return x, nil
	case ts.Integer, ts.Long, ts.Float, ts.Double:
		if op.Constant {
			if n, ok := parseNumber(x); ok {
				return strconv.FormatBool(n.float() != 0), nil
			}
		}
		if op.NotNull {
			return paren(x + " != 0"), nil
		}
	case ts.String:
		if op.Constant {
			if s, err := strconv.Unquote(x); err == nil {
				return strconv.FormatBool(s != "" && s != "0"), nil
			}
		}
	case ts.Box:
		if op.NotNull {
			return x + "." + config.BooleanView + "()", nil
		}
	case ts.Number:
		if op.NotNull {
			return paren(x + "." + config.DoubleView + "() != 0"), nil
		}
	}
	return helper(config.ToBooleanFunc, x), nil
}

var (
	numericHelpers = map[ts.Kind]string{
		ts.Integer: config.ToIntegerFunc,
		ts.Long:    config.ToLongFunc,
		ts.Float:   config.ToFloatFunc,
		ts.Double:  config.ToDoubleFunc,
	}
	numericViews = map[ts.Kind]string{
		ts.Integer: config.IntView,
		ts.Long:    config.LongView,
		ts.Float:   config.FloatView,
		ts.Double:  config.DoubleView,
	}
	numericSuffixes = map[ts.Kind]string{
		ts.Long:   "L",
		ts.Float:  "f",
		ts.Double: "d",
	}
	primitives = map[ts.Kind]string{
		ts.Integer: "int",
		ts.Long:    "long",
		ts.Float:   "float",
		ts.Double:  "double",
	}
)

// widen renders an int expression as a value of kind k.
func widen(code string, k ts.Kind) string {
	if k == ts.Integer {
		return code
	}
	return "((" + primitives[k] + ") " + code + ")"
}

func (c *Caster) toNumeric(op Operand, k ts.Kind) (string, error) {
	t, x := op.Type, op.Code
	one, zero := "1"+numericSuffixes[k], "0"+numericSuffixes[k]
	switch {
	case ts.IsAggregate(t):
		if op.NotNull {
			return widen(count(op), k), nil
		}
		return helper(numericHelpers[k], x), nil
	case isHandle(t):
		return paren(x + " != null ? " + one + " : " + zero), nil
	}
	switch ts.KindOf(t) {
	case k:
		return x, nil
	case ts.Boolean:
		if op.NotNull {
			return paren(x + " ? " + one + " : " + zero), nil
		}
	case ts.Integer, ts.Long, ts.Float, ts.Double:
		if op.Constant {
			if lit, ok := numericLiteral(x, k); ok {
				return lit, nil
			}
		}
	case ts.Box, ts.Number:
		if op.NotNull {
			return x + "." + numericViews[k] + "()", nil
		}
	}
	return helper(numericHelpers[k], x), nil
}

func (c *Caster) toString(op Operand) (string, error) {
	t, x := op.Type, op.Code
	switch {
	case ts.IsAggregate(t):
		if op.NotNull {
			return helper(config.ToStringFunc, count(op)), nil
		}
		return helper(config.ToStringFunc, helper(config.ToIntegerFunc, x)), nil
	case isHandle(t):
		return paren(x + ` != null ? "1" : "0"`), nil
	}
	switch ts.KindOf(t) {
	case ts.String:
		return x, nil
	case ts.Boolean:
		if op.NotNull {
			return paren(x + ` ? "1" : "0"`), nil
		}
	case ts.Integer, ts.Long:
		if op.Constant {
			if n, ok := parseNumber(x); ok && n.isInt {
				return strconv.Quote(strconv.FormatInt(n.i, 10)), nil
			}
		}
	case ts.Box:
		if op.NotNull {
			return x + "." + config.StringView + "()", nil
		}
	case ts.Number:
		if op.NotNull {
			return x + ".toString()", nil
		}
	}
	return helper(config.ToStringFunc, x), nil
}

func (c *Caster) toBox(op Operand) string {
	t, x := op.Type, op.Code
	switch {
	case ts.IsAggregate(t):
		if op.NotNull {
			return helper(config.BoxFunc, count(op))
		}
		return helper(config.BoxFunc, helper(config.ToIntegerFunc, x))
	case ts.IsRef(t):
		return helper(config.BoxFunc, materialize(op))
	case ts.IsBox(t):
		return x
	}
	return helper(config.BoxFunc, x)
}

func (c *Caster) toNumber(op Operand) (string, error) {
	t, x := op.Type, op.Code
	switch {
	case ts.IsAggregate(t):
		if op.NotNull {
			return count(op), nil
		}
		return helper(config.ToIntegerFunc, x), nil
	case isHandle(t):
		return paren(x + " != null ? 1 : 0"), nil
	}
	switch ts.KindOf(t) {
	case ts.Integer, ts.Long, ts.Float, ts.Double, ts.Number:
		return x, nil
	case ts.Boolean:
		if op.NotNull {
			return paren(x + " ? 1 : 0"), nil
		}
		return helper(config.ToIntegerFunc, x), nil
	case ts.String:
		return helper(config.ParseDoubleFunc, x), nil
	case ts.Box:
		if op.NotNull {
			return x + "." + config.NumberView + "()", nil
		}
		return helper(config.ToNumberFunc, x), nil
	}
	return "", ts.NewIncompatibleError(t, ts.NumberType)
}

func (c *Caster) toFile(op Operand) (string, error) {
	switch {
	case ts.IsFile(op.Type):
		return op.Code, nil
	case ts.IsBox(op.Type):
		if op.NotNull {
			return op.Code + "." + config.FileView + "()", nil
		}
		return helper(config.ToFileFunc, op.Code), nil
	}
	return "", ts.NewIncompatibleError(op.Type, ts.FileType)
}

func (c *Caster) toRef(op Operand, dest ts.TRef, depth int) (string, error) {
	switch {
	case ts.IsRef(op.Type):
		if ts.Equal(op.Type, dest) {
			return materialize(op), nil
		}
		inner, err := c.convert(deref(op), dest.Elem, depth)
		if err != nil {
			return "", ts.NewIncompatibleError(op.Type, dest)
		}
		return RefNew(dest, inner), nil
	case ts.IsBox(op.Type):
		if op.NotNull {
			return castTo(dest, op.Code+"."+config.RefView+"()"), nil
		}
		return castTo(dest, helper(config.ToRefFunc, op.Code)), nil
	}
	return "", ts.NewIncompatibleError(op.Type, dest)
}

func (c *Caster) toAggregate(op Operand, dest ts.TAggregate, depth int) (string, error) {
	src := op.Type
	switch {
	case ts.Equal(src, dest):
		return op.Code, nil
	case ts.IsRef(src):
		code, err := c.convert(deref(op), dest, depth)
		if err != nil {
			return "", ts.NewIncompatibleError(src, dest)
		}
		return code, nil
	case ts.IsBox(src):
		return castTo(ts.RefTo(dest), helper(config.ToRefFunc, op.Code)) + ".get()", nil
	case !ts.IsAggregate(src):
		return "", ts.NewIncompatibleError(src, dest)
	}
	sa := src.(ts.TAggregate)
	if sa.Shape != ts.Map && dest.Shape != ts.Map && sa.Shape != dest.Shape && ts.Equal(sa.Elem, dest.Elem) {
		if dest.Shape == ts.Array {
			return op.Code + ".toArray(" + NewArray(dest.Elem, "0") + ")", nil
		}
		return "new " + JavaType(dest) + "(" + op.Code + ")", nil
	}
	if sa.Shape == dest.Shape && ts.IsNumeric(ts.Terminal(src)) && ts.Equal(ts.WithTerminal(src, ts.NumberType), dest) {
		switch dest.Shape {
		case ts.List:
			return castTo(dest, "("+config.ListClass+") "+op.Code), nil
		case ts.Map:
			return castTo(dest, "("+config.MapClass+") "+op.Code), nil
		}
		return castTo(dest, op.Code), nil
	}
	return c.loop(op, sa, dest, depth)
}

// loop renders an element-wise conversion as a lambda applied by the
// runtime. Names carry the nesting depth so inner loops do not shadow
// outer ones.
func (c *Caster) loop(op Operand, src, dest ts.TAggregate, depth int) (string, error) {
	n := strconv.Itoa(depth)
	arg, col, res, idx, ent := "pd_arg"+n, "pd_col"+n, "pd_res"+n, "pd_i"+n, "pd_e"+n
	srcType, destType := JavaType(src), JavaType(dest)

	var length string
	switch src.Shape {
	case ts.Array:
		length = col + ".length"
	case ts.List:
		length = col + ".size()"
	default:
		length = col + ".size() * 2"
	}
	capacity := length
	if dest.Shape == ts.Map {
		capacity = paren(length) + " / 2"
	}

	var sb strings.Builder
	sb.WriteString(srcType + " " + col + " = (" + srcType + ") " + arg + "; ")
	sb.WriteString(destType + " " + res + " = " + NewAggregate(dest, capacity) + "; ")

	elem := func(e Operand, t ts.Type) (string, error) {
		return c.convert(e, t, depth+1)
	}

	if src.Shape == ts.Map {
		entry := "java.util.Map.Entry<String, " + JavaType(src.Elem) + ">"
		key := NonNull(ent+".getKey()", ts.StringType)
		val := Text(ent+".getValue()", src.Elem)
		if dest.Shape == ts.Array {
			sb.WriteString("int " + idx + " = 0; ")
		}
		sb.WriteString("for (" + entry + " " + ent + " : " + col + ".entrySet()) { ")
		v, err := elem(val, dest.Elem)
		if err != nil {
			return "", err
		}
		switch dest.Shape {
		case ts.Map:
			sb.WriteString(res + ".put(" + key.Code + ", " + v + "); ")
		default:
			k, err := elem(key, dest.Elem)
			if err != nil {
				return "", err
			}
			if dest.Shape == ts.Array {
				sb.WriteString(res + "[" + idx + "++] = " + k + "; " + res + "[" + idx + "++] = " + v + "; ")
			} else {
				sb.WriteString(res + ".add(" + k + "); " + res + ".add(" + v + "); ")
			}
		}
		sb.WriteString("} ")
	} else {
		read := func(i string) Operand {
			if src.Shape == ts.Array {
				return Text(col+"["+i+"]", src.Elem)
			}
			return Text(col+".get("+i+")", src.Elem)
		}
		if dest.Shape == ts.Map {
			k, err := elem(read(idx), ts.StringType)
			if err != nil {
				return "", err
			}
			v, err := elem(read(idx+" + 1"), dest.Elem)
			if err != nil {
				return "", err
			}
			sb.WriteString("if (" + length + " % 2 != 0) { throw new " + config.ArityErrClass + "(" + strconv.Quote(config.ArityMessage) + "); } ")
			sb.WriteString("for (int " + idx + " = 0; " + idx + " < " + length + "; " + idx + " += 2) { ")
			sb.WriteString(res + ".put(" + k + ", " + v + "); } ")
		} else {
			v, err := elem(read(idx), dest.Elem)
			if err != nil {
				return "", err
			}
			sb.WriteString("for (int " + idx + " = 0; " + idx + " < " + length + "; " + idx + "++) { ")
			if dest.Shape == ts.Array {
				sb.WriteString(res + "[" + idx + "] = " + v + "; } ")
			} else {
				sb.WriteString(res + ".add(" + v + "); } ")
			}
		}
	}
	sb.WriteString("return " + res + "; ")
	lambda := "(Object " + arg + ") -> { " + sb.String() + "}"
	return castTo(dest, call(config.CastingClass, config.CastFunc, op.Code, lambda)), nil
}

// zeroValue is what undef becomes where null is not acceptable.
func zeroValue(t ts.Type) (string, bool) {
	switch ts.KindOf(t) {
	case ts.Integer, ts.Number:
		return "0", true
	case ts.Long, ts.Float, ts.Double:
		k := ts.KindOf(t)
		return "0" + numericSuffixes[k], true
	case ts.String:
		return `""`, true
	case ts.Boolean:
		return "false", true
	}
	return "", false
}

type number struct {
	isInt bool
	i     int64
	f     float64
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// parseNumber reads a target numeric literal as rendered by the generator.
func parseNumber(code string) (number, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(code), "_", "")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	}
	lower := strings.ToLower(s)
	radix := strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b")
	lower = strings.TrimSuffix(lower, "l")
	if !radix {
		lower = strings.TrimRight(lower, "df")
	}
	if lower == "" {
		return number{}, false
	}
	if radix || !strings.ContainsAny(lower, ".e") {
		i, err := strconv.ParseInt(lower, 0, 64)
		if err != nil {
			return number{}, false
		}
		if neg {
			i = -i
		}
		return number{isInt: true, i: i}, true
	}
	f, err := strconv.ParseFloat(lower, 64)
	if err != nil {
		return number{}, false
	}
	if neg {
		f = -f
	}
	return number{f: f}, true
}

// numericLiteral re-renders a literal as a literal of kind k, when the
// value is representable.
func numericLiteral(code string, k ts.Kind) (string, bool) {
	n, ok := parseNumber(code)
	if !ok {
		return "", false
	}
	switch k {
	case ts.Integer, ts.Long:
		i := n.i
		if !n.isInt {
			t := math.Trunc(n.f)
			if t < math.MinInt64 || t > math.MaxInt64 {
				return "", false
			}
			i = int64(t)
		}
		if k == ts.Integer {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return "", false
			}
			return strconv.FormatInt(i, 10), true
		}
		return strconv.FormatInt(i, 10) + "L", true
	case ts.Float:
		f := float64(float32(n.float()))
		if math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatFloat(f, 'g', -1, 32) + "f", true
	case ts.Double:
		f := n.float()
		if math.IsInf(f, 0) {
			return "", false
		}
		return strconv.FormatFloat(f, 'g', -1, 64) + "d", true
	}
	return "", false
}
