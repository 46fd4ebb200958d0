// Package unitfile reads parsed, type-annotated syntax trees from YAML tree
// documents.
//
// A document has the shape
//
//	file: wordcount.pl
//	class: WordCount
//	statements:
//	  - kind: expr
//	    line: 3
//	    expr:
//	      kind: assign
//	      left: {kind: var, sigil: "$", name: n, decl: my, type: "<integer>"}
//	      right: {kind: number, value: 0}
//
// Every node is a mapping with a kind discriminator. The optional line and
// col fields give the position in the source program.
package unitfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/diagnostics"
	"github.com/funvibe/perldoop/internal/pipeline"
)

// Load reads and decodes the tree document at path.
func Load(path string) (*ast.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree %s: %w", path, err)
	}
	return Decode(data, path)
}

// Decode decodes a tree document. The name is used in error positions and
// as the source file name when the document has none.
func Decode(data []byte, name string) (*ast.Unit, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrL001, diagnostics.Pos{File: name}, err)
	}
	d := &decoder{name: name}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, d.errorf(&doc, "empty tree document")
	}
	return d.unit(doc.Content[0])
}

// SourceName derives the source program name of a tree document path:
// job.pdt.yaml is the tree of job.pl.
func SourceName(path string) string {
	base := filepath.Base(path)
	for _, ext := range config.TreeFileExtensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext) + config.SourceFileExt
		}
	}
	return base
}

// IsTreeFile reports whether path has a tree document extension.
func IsTreeFile(path string) bool {
	for _, ext := range config.TreeFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

type decoder struct {
	name string // document name
	file string // source program name
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return diagnostics.NewError(diagnostics.ErrL001, d.at(n), format, args...)
}

func (d *decoder) unit(n *yaml.Node) (*ast.Unit, error) {
	f, err := d.fields(n)
	if err != nil {
		return nil, err
	}
	u := &ast.Unit{}
	if u.File, err = f.str("file"); err != nil {
		return nil, err
	}
	if u.File == "" {
		u.File = SourceName(d.name)
	}
	d.file = u.File
	if u.Class, err = f.str("class"); err != nil {
		return nil, err
	}
	if u.Statements, err = d.statementList(f.get("statements")); err != nil {
		return nil, err
	}
	return u, nil
}

// LoadProcessor decodes the tree document at the context's path.
type LoadProcessor struct{}

func (lp *LoadProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	unit, err := Load(ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Unit = unit
	return ctx
}
