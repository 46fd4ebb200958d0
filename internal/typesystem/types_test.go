package typesystem

import (
	"errors"
	"testing"
)

func TestStructuralEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"array vs list", ArrayOf(StringType), ListOf(StringType), false},
		{"same array", ArrayOf(StringType), ArrayOf(StringType), true},
		{"nested", MapOf(ListOf(IntegerType)), MapOf(ListOf(IntegerType)), true},
		{"terminal differs", MapOf(ListOf(IntegerType)), MapOf(ListOf(LongType)), false},
		{"ref vs plain", RefTo(MapOf(IntegerType)), MapOf(IntegerType), false},
		{"opaque", Opaque("Text"), Opaque("Text"), true},
		{"opaque names", Opaque("Text"), Opaque("IntWritable"), false},
		{"scalar vs opaque", StringType, Opaque("String"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSubtype(t *testing.T) {
	ref := RefTo(MapOf(IntegerType))
	if got := Subtype(ref, 1); !Equal(got, MapOf(IntegerType)) {
		t.Errorf("Subtype(%s, 1) = %s, want <map><integer>", ref, got)
	}
	if got := Subtype(ref, 2); !Equal(got, IntegerType) {
		t.Errorf("Subtype(%s, 2) = %s, want <integer>", ref, got)
	}
	if got := Subtype(ref, 9); !Equal(got, IntegerType) {
		t.Errorf("Subtype past terminal = %s, want <integer>", got)
	}
	if got := Subtype(ref, 0); !Equal(got, ref) {
		t.Errorf("Subtype(%s, 0) = %s", ref, got)
	}
}

func TestPredicates(t *testing.T) {
	arr := ArrayOf(IntegerType)
	if !IsAggregate(arr) || IsSimple(arr) || !IsArrayOrList(arr) || IsMap(arr) {
		t.Errorf("predicates wrong for %s", arr)
	}
	ref := RefTo(arr)
	if IsAggregate(ref) || !IsRef(ref) {
		t.Errorf("a reference is not an aggregate: %s", ref)
	}
	if !IsSimple(BoxType) || !IsBox(BoxType) || IsNumeric(BoxType) {
		t.Errorf("predicates wrong for box")
	}
	for _, k := range []Kind{Integer, Long, Float, Double, Number} {
		if !IsNumeric(Scalar(k)) {
			t.Errorf("IsNumeric(%s) = false", k)
		}
	}
	if IsNumeric(StringType) || IsNumeric(BooleanType) {
		t.Errorf("string and boolean are not numeric")
	}
}

func TestNormalisation(t *testing.T) {
	ref := RefTo(ListOf(StringType))
	if got := RefTo(ref); !Equal(got, ref) {
		t.Errorf("RefTo(RefTo(x)) = %s, want %s", got, ref)
	}
	if got := ArrayOf(ref); !Equal(got, ArrayOf(ListOf(StringType))) {
		t.Errorf("ArrayOf(ref) = %s, want the ref absorbed", got)
	}
}

func TestAppendAndTerminal(t *testing.T) {
	base := RefTo(ArrayOf(NumberType))
	got := Append(base, List)
	want := RefTo(ArrayOf(ListOf(NumberType)))
	if !Equal(got, want) {
		t.Errorf("Append = %s, want %s", got, want)
	}
	if got := Terminal(want); !Equal(got, NumberType) {
		t.Errorf("Terminal = %s, want <number>", got)
	}
	narrowed := WithTerminal(want, DoubleType)
	if !Equal(narrowed, RefTo(ArrayOf(ListOf(DoubleType)))) {
		t.Errorf("WithTerminal = %s", narrowed)
	}
	if got := Prepend(IntegerType, Map); !Equal(got, MapOf(IntegerType)) {
		t.Errorf("Prepend = %s", got)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	types := []Type{
		IntegerType,
		Opaque("Text"),
		ArrayOf(ListOf(MapOf(DoubleType))),
		RefTo(MapOf(BoxType)),
	}
	for _, typ := range types {
		opaque := ""
		if o, ok := Terminal(typ).(TOpaque); ok {
			opaque = o.Name
		}
		got, err := FromTags(Tags(typ), opaque)
		if err != nil {
			t.Fatalf("FromTags(%s): %v", typ, err)
		}
		if !Equal(got, typ) {
			t.Errorf("FromTags(Tags(%s)) = %s", typ, got)
		}
		if len(Tags(typ)) != typ.Depth() {
			t.Errorf("len(Tags(%s)) = %d, want %d", typ, len(Tags(typ)), typ.Depth())
		}
	}
}

func TestFromTagsInvalid(t *testing.T) {
	cases := [][]Tag{
		nil,
		{TagArray},
		{TagArray, TagRef, TagInteger},
		{TagInteger, TagInteger},
	}
	for _, tags := range cases {
		if _, err := FromTags(tags, ""); err == nil {
			t.Errorf("FromTags(%v) succeeded, want error", tags)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"<integer>", IntegerType},
		{"<ref><array><integer>", RefTo(ArrayOf(IntegerType))},
		{"<hash><list><string>", MapOf(ListOf(StringType))},
		{" <map> <Text> ", MapOf(Opaque("Text"))},
		{"<Double>", DoubleType},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
			again, err := Parse(got.String())
			if err != nil || !Equal(again, got) {
				t.Errorf("Parse(String()) = %v, %v", again, err)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "integer", "<array>", "<foo>", "<Text><integer>", "<array><ref><integer>", "<list"} {
		_, err := Parse(input)
		var te *TagError
		if !errors.As(err, &te) {
			t.Errorf("Parse(%q) error = %v, want *TagError", input, err)
		}
	}
}

func TestMarshal(t *testing.T) {
	for _, typ := range []Type{RefTo(ArrayOf(Opaque("IntWritable"))), MapOf(ListOf(LongType))} {
		data, err := Marshal(typ)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", typ, err)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if !Equal(got, typ) {
			t.Errorf("Unmarshal(Marshal(%s)) = %s", typ, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(RefTo(ArrayOf(IntegerType))); got != "ref to array of integer" {
		t.Errorf("Describe = %q", got)
	}
}
