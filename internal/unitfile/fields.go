package unitfile

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// fieldSet is the decoded keys of one mapping node.
type fieldSet struct {
	d    *decoder
	node *yaml.Node
	m    map[string]*yaml.Node
}

func (d *decoder) fields(n *yaml.Node) (*fieldSet, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping, got %s", nodeKind(n))
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return &fieldSet{d: d, node: n, m: m}, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a list"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.DocumentNode:
		return "a document"
	}
	return "nothing"
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// get returns the value of key, or nil when it is absent or null.
func (f *fieldSet) get(key string) *yaml.Node {
	n := f.m[key]
	if isNull(n) {
		return nil
	}
	return n
}

func (f *fieldSet) str(key string) (string, error) {
	n := f.get(key)
	if n == nil {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", f.d.errorf(n, "%s must be a scalar, got %s", key, nodeKind(n))
	}
	return n.Value, nil
}

func (f *fieldSet) required(key string) (string, error) {
	s, err := f.str(key)
	if err == nil && s == "" {
		err = f.d.errorf(f.node, "missing %s", key)
	}
	return s, err
}

func (f *fieldSet) flag(key string) (bool, error) {
	n := f.get(key)
	if n == nil {
		return false, nil
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, f.d.errorf(n, "%s must be a boolean", key)
	}
	return b, nil
}

func (f *fieldSet) number(key string) (int, error) {
	n := f.get(key)
	if n == nil {
		return 0, nil
	}
	var i int
	if err := n.Decode(&i); err != nil {
		return 0, f.d.errorf(n, "%s must be an integer", key)
	}
	return i, nil
}

// typ parses a type in pragma syntax. An absent type is nil.
func (f *fieldSet) typ(key string) (ts.Type, error) {
	s, err := f.str(key)
	if err != nil || s == "" {
		return nil, err
	}
	t, err := ts.Parse(s)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrL001, f.d.at(f.get(key)), err)
	}
	return t, nil
}

func (f *fieldSet) sigil(key string, def symbols.Sigil) (symbols.Sigil, error) {
	s, err := f.str(key)
	if err != nil || s == "" {
		return def, err
	}
	sig, ok := symbols.ParseSigil(s)
	if !ok {
		return 0, f.d.errorf(f.get(key), "invalid sigil %q", s)
	}
	return sig, nil
}

func (f *fieldSet) kind() (string, error) {
	return f.required("kind")
}

// base is the source position given by the line and col keys.
func (f *fieldSet) base() (ast.Base, error) {
	line, err := f.number("line")
	if err != nil {
		return ast.Base{}, err
	}
	col, err := f.number("col")
	if err != nil {
		return ast.Base{}, err
	}
	return ast.Base{Pos: diagnostics.Pos{File: f.d.file, Line: line, Column: col}}, nil
}

// at is the position of a node in the tree document.
func (d *decoder) at(n *yaml.Node) diagnostics.Pos {
	if n == nil {
		return diagnostics.Pos{File: d.name}
	}
	return diagnostics.Pos{File: d.name, Line: n.Line, Column: n.Column}
}
