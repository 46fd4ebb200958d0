package typesystem

import (
	"strings"
	"unicode"
)

var tagsByName = map[string]Tag{
	"integer": TagInteger,
	"int":     TagInteger,
	"long":    TagLong,
	"float":   TagFloat,
	"double":  TagDouble,
	"string":  TagString,
	"number":  TagNumber,
	"boolean": TagBoolean,
	"file":    TagFile,
	"box":     TagBox,
	"array":   TagArray,
	"list":    TagList,
	"map":     TagMap,
	"hash":    TagMap,
	"ref":     TagRef,
}

// Parse reads the pragma type syntax, e.g. "<ref><array><integer>".
// Tag names are case-insensitive; any other capitalized name in terminal
// position is an opaque object type.
func Parse(input string) (Type, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, &TagError{Input: input, Reason: "empty type"}
	}
	var tags []Tag
	var opaque string
	for len(s) > 0 {
		if s[0] != '<' {
			return nil, &TagError{Input: input, Reason: "expected '<'"}
		}
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return nil, &TagError{Input: input, Reason: "unterminated tag"}
		}
		name := strings.TrimSpace(s[1:end])
		s = strings.TrimSpace(s[end+1:])
		if tag, ok := tagsByName[strings.ToLower(name)]; ok {
			tags = append(tags, tag)
			continue
		}
		if !isObjectName(name) {
			return nil, &TagError{Input: input, Reason: "unknown tag <" + name + ">"}
		}
		if s != "" {
			return nil, &TagError{Input: input, Reason: "object type <" + name + "> must be terminal"}
		}
		tags = append(tags, TagOpaque)
		opaque = name
	}
	t, err := FromTags(tags, opaque)
	if err != nil {
		if te, ok := err.(*TagError); ok {
			te.Input = input
		}
		return nil, err
	}
	return t, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(input string) Type {
	t, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return t
}

// isObjectName reports whether name looks like a target class name
// (Text, IntWritable, ...).
func isObjectName(name string) bool {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}
	return true
}
