package codegen

import (
	"errors"
	"testing"

	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

func newAccess() (*AccessEngine, *PendingQueue) {
	q := &PendingQueue{}
	return NewAccessEngine(NewCaster(false), symbols.NewSymbolTable(nil), q), q
}

var (
	intArray = ts.ArrayOf(ts.IntegerType)
	intList  = ts.ListOf(ts.IntegerType)
	strMap   = ts.MapOf(ts.StringType)
)

func scalarPath(base Operand, key Operand, brace bool) Path {
	return Path{
		Base:           base,
		Keys:           []Operand{key},
		Brace:          brace,
		Context:        symbols.ScalarSigil,
		BaseRepeatable: true,
		KeysRepeatable: true,
	}
}

func TestAccessRead(t *testing.T) {
	e, _ := newAccess()
	zero, k := lit("0", ts.IntegerType), lit(`"k"`, ts.StringType)
	throughRef := scalarPath(Text("r", ts.RefTo(intList)), lit("1", ts.IntegerType), false)
	throughRef.ThroughRef = true
	throughBox := scalarPath(Text("b", ts.BoxType), k, true)
	throughBox.ThroughRef = true
	slice := Path{
		Base:    NonNull("a", intArray),
		Keys:    []Operand{zero, lit("1", ts.IntegerType)},
		Context: symbols.ArraySigil,
	}
	hashSlice := Path{
		Base:    NonNull("h", strMap),
		Keys:    []Operand{k},
		Brace:   true,
		Context: symbols.HashSigil,
	}

	tests := []struct {
		name string
		path Path
		code string
		typ  ts.Type
	}{
		{"array element", scalarPath(NonNull("a", intArray), zero, false), "a[0]", ts.IntegerType},
		{"list element", scalarPath(NonNull("l", intList), Text("i", ts.IntegerType), false), "l.get(i)", ts.IntegerType},
		{"map element", scalarPath(NonNull("h", strMap), k, true), `h.get("k")`, ts.StringType},
		{"through a reference", throughRef, "r.get().get(1)", ts.IntegerType},
		{"through a box", throughBox, `((Ref<PerlMap<Box>>) Casting.toRef(b)).get().get("k")`, ts.BoxType},
		{"array slice", slice, "Pd.aAccess(a, new Number[]{0, 1})", intArray},
		{"hash slice", hashSlice, `Pd.hAccess(h, new String[]{"k"}, pd_v -> Casting.box(pd_v))`, ts.MapOf(ts.BoxType)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := e.Read(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if op.Code != tt.code || !ts.Equal(op.Type, tt.typ) {
				t.Errorf("Read = %s %s, want %s %s", op.Code, op.Type, tt.code, tt.typ)
			}
		})
	}
}

func TestAccessNestedElementIsRaw(t *testing.T) {
	e, _ := newAccess()
	nested := ts.ArrayOf(intList)
	op, err := e.Read(scalarPath(NonNull("a", nested), lit("2", ts.IntegerType), false))
	if err != nil {
		t.Fatal(err)
	}
	if !op.Raw || !ts.Equal(op.Type, ts.RefTo(intList)) || op.Code != "a[2]" {
		t.Errorf("Read = %+v", op)
	}
	ref, err := e.caster.Convert(op, ts.RefTo(intList))
	if err != nil {
		t.Fatal(err)
	}
	if ref != "new Ref<PerlList<Integer>>(a[2])" {
		t.Errorf("materialized = %s", ref)
	}
}

func TestAccessIndexOfNestedElement(t *testing.T) {
	// $a[0][1] on an array of arrays
	e, q := newAccess()
	inner, err := e.Read(scalarPath(NonNull("a", ts.ArrayOf(intArray)), lit("0", ts.IntegerType), false))
	if err != nil {
		t.Fatal(err)
	}
	outer := scalarPath(inner, lit("1", ts.IntegerType), false)
	op, err := e.Read(outer)
	if err != nil {
		t.Fatal(err)
	}
	if op.Code != "a[0][1]" || !ts.Equal(op.Type, ts.IntegerType) {
		t.Errorf("Read = %s %s", op.Code, op.Type)
	}
	read, write, err := e.ReadWrite(outer)
	if err != nil {
		t.Fatal(err)
	}
	if read.Code != "a[0][1]" || write("x") != "a[0][1] = x" || q.Len() != 0 {
		t.Errorf("ReadWrite = %s, %s, %d aux", read.Code, write("x"), q.Len())
	}
}

func TestAccessShapeMismatch(t *testing.T) {
	e, _ := newAccess()
	_, err := e.Read(scalarPath(NonNull("a", intArray), lit(`"k"`, ts.StringType), true))
	var inc *ts.IncompatibleError
	if !errors.As(err, &inc) {
		t.Errorf("brace on an array: %v", err)
	}
	_, err = e.Read(scalarPath(NonNull("h", strMap), lit("0", ts.IntegerType), false))
	if !errors.As(err, &inc) {
		t.Errorf("bracket on a map: %v", err)
	}
	deref := Path{Base: Text("r", ts.RefTo(strMap)), Deref: true, Context: symbols.ArraySigil}
	if _, err := e.Read(deref); !errors.As(err, &inc) {
		t.Errorf("array deref of a map reference: %v", err)
	}
}

func TestAccessWrite(t *testing.T) {
	e, _ := newAccess()
	zero := lit("0", ts.IntegerType)
	tests := []struct {
		name string
		path Path
		want string
	}{
		{"array", scalarPath(NonNull("a", intArray), zero, false), "a[0] = v"},
		{"list", scalarPath(NonNull("l", intList), zero, false), "l.set(0, v)"},
		{"map", scalarPath(NonNull("h", strMap), lit(`"k"`, ts.StringType), true), `h.put("k", v)`},
		{"whole dereference", Path{Base: Text("r", ts.RefTo(intArray)), Deref: true, Context: symbols.ArraySigil}, "r.set(v)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Write(tt.path, "v")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Write = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAccessTarget(t *testing.T) {
	e, _ := newAccess()
	target, err := e.Target(scalarPath(NonNull("l", ts.ListOf(strMap)), lit("0", ts.IntegerType), false))
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(target, strMap) {
		t.Errorf("Target = %s", target)
	}
	hashSlice := Path{Base: NonNull("h", strMap), Keys: []Operand{lit(`"a"`, ts.StringType)}, Brace: true, Context: symbols.HashSigil}
	var unsup *UnsupportedError
	if _, err := e.Target(hashSlice); !errors.As(err, &unsup) {
		t.Errorf("hash slice target: %v", err)
	}
}

func TestAccessReadWriteCapturesOnce(t *testing.T) {
	tests := []struct {
		name      string
		path      Path
		wantAux   int
		wantRead  string
		wantWrite string
	}{
		{
			name:      "variable base",
			path:      scalarPath(NonNull("a", intArray), lit("0", ts.IntegerType), false),
			wantAux:   0,
			wantRead:  "a[0]",
			wantWrite: "a[0] = x",
		},
		{
			name: "call base",
			path: Path{
				Base:           NonNull("f()", intArray),
				Keys:           []Operand{lit("0", ts.IntegerType)},
				Context:        symbols.ScalarSigil,
				KeysRepeatable: true,
			},
			wantAux:   1,
			wantRead:  "pd_1[0]",
			wantWrite: "(pd_1 = f())[0] = x",
		},
		{
			name: "call base and call key",
			path: Path{
				Base:    NonNull("f()", intList),
				Keys:    []Operand{NonNull("g()", ts.IntegerType)},
				Context: symbols.ScalarSigil,
			},
			wantAux:   2,
			wantRead:  "pd_1.get(pd_2)",
			wantWrite: "(pd_1 = f()).set((pd_2 = g()), x)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, q := newAccess()
			read, write, err := e.ReadWrite(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if q.Len() != tt.wantAux {
				t.Errorf("aux declarations = %d, want %d", q.Len(), tt.wantAux)
			}
			if read.Code != tt.wantRead {
				t.Errorf("read = %s, want %s", read.Code, tt.wantRead)
			}
			if got := write("x"); got != tt.wantWrite {
				t.Errorf("write = %s, want %s", got, tt.wantWrite)
			}
		})
	}
}

func TestAccessDeleteAndExists(t *testing.T) {
	e, _ := newAccess()
	h := NonNull("h", strMap)
	op, err := e.Delete(scalarPath(h, lit(`"a"`, ts.StringType), true))
	if err != nil {
		t.Fatal(err)
	}
	if op.Code != `Pd.delete(h, "a")` || !ts.Equal(op.Type, ts.StringType) {
		t.Errorf("Delete = %s %s", op.Code, op.Type)
	}

	multi := Path{Base: h, Keys: []Operand{lit(`"a"`, ts.StringType), lit(`"b"`, ts.StringType)}, Brace: true, Context: symbols.ScalarSigil}
	op, err = e.Delete(multi)
	if err != nil {
		t.Fatal(err)
	}
	if op.Code != `Pd.delete(h, new String[]{"a", "b"}, true)` {
		t.Errorf("Delete of the last key = %s", op.Code)
	}

	requested := Path{Base: h, Keys: []Operand{lit(`"b"`, ts.StringType), lit(`"a"`, ts.StringType)}, Brace: true, Context: symbols.ArraySigil}
	op, err = e.Delete(requested)
	if err != nil {
		t.Fatal(err)
	}
	if op.Code != `Pd.delete(h, new String[]{"b", "a"})` || !ts.Equal(op.Type, ts.ListOf(ts.StringType)) {
		t.Errorf("Delete of a key list = %s %s", op.Code, op.Type)
	}

	slots := []struct {
		name string
		base Operand
		want string
	}{
		{"array slot", NonNull("a", intArray), "Pd.delete(a, 1)"},
		{"list slot", NonNull("l", intList), "Pd.delete(l, 1)"},
	}
	for _, tt := range slots {
		t.Run(tt.name, func(t *testing.T) {
			op, err := e.Delete(scalarPath(tt.base, lit("1", ts.IntegerType), false))
			if err != nil {
				t.Fatal(err)
			}
			if op.Code != tt.want || !ts.Equal(op.Type, ts.IntegerType) {
				t.Errorf("Delete = %s %s, want %s", op.Code, op.Type, tt.want)
			}
		})
	}
	op, err = e.Delete(Path{Base: NonNull("a", intArray), Keys: []Operand{lit("0", ts.IntegerType), lit("2", ts.IntegerType)}, Context: symbols.ArraySigil})
	if err != nil {
		t.Fatal(err)
	}
	if op.Code != "Pd.delete(a, new Number[]{0, 2})" || !ts.Equal(op.Type, intArray) {
		t.Errorf("Delete of an array slice = %s %s", op.Code, op.Type)
	}

	ex, err := e.Exists(scalarPath(h, lit(`"a"`, ts.StringType), true))
	if err != nil {
		t.Fatal(err)
	}
	if ex.Code != `h.containsKey("a")` {
		t.Errorf("Exists = %s", ex.Code)
	}
	ex, err = e.Exists(scalarPath(NonNull("l", intList), lit("3", ts.IntegerType), false))
	if err != nil {
		t.Fatal(err)
	}
	if ex.Code != "Pd.exists(l, 3)" {
		t.Errorf("Exists = %s", ex.Code)
	}
}

func TestMakeRef(t *testing.T) {
	r := MakeRef(Text("x", intArray))
	if r.Code != "new Ref<Integer[]>(x)" || !ts.Equal(r.Type, ts.RefTo(intArray)) || !r.NotNull {
		t.Errorf("MakeRef = %+v", r)
	}
	existing := Text("r", ts.RefTo(ts.IntegerType))
	if got := MakeRef(existing); got != existing {
		t.Errorf("MakeRef of a reference = %+v", got)
	}
}
