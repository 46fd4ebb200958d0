// Package emitter assembles the generated fields, methods and top-level
// statements of a unit into a class file.
package emitter

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/codegen"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/pipeline"
	"github.com/funvibe/perldoop/internal/symbols"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// argsType is the parameter type of every generated method.
var argsType = ts.ListOf(ts.BoxType)

// Class is the content of one generated class file.
type Class struct {
	Package string // target package, empty for the default package
	Runtime string // runtime package imported on demand
	Name    string
	Source  string
	Fields  []codegen.Field
	Methods []codegen.Method
	Main    []string
}

// Render returns the text of c.
func Render(c *Class) []byte {
	p := NewClassPrinter()
	p.PrintClass(c)
	return p.Bytes()
}

// ClassName is the class generated for unit: the class of the unit's
// package, which other units refer to, else the explicit class, else the
// capitalized file name.
func ClassName(unit *ast.Unit, pkg *symbols.Package) string {
	switch {
	case pkg != nil:
		return pkg.Class
	case unit.Class != "":
		return unit.Class
	}
	base := filepath.Base(unit.File)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	name := symbols.Normalize(base)
	if name == "" {
		return "Main"
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	name = string(r)
	if symbols.IsReserved(name) {
		name = config.AliasPrefix + name
	}
	return name
}

// OutputPath is where the class named name is written: the target package
// becomes a directory path below out.
func OutputPath(out, javaPackage, name string) string {
	dir := out
	if javaPackage != "" {
		dir = filepath.Join(append([]string{out}, strings.Split(javaPackage, ".")...)...)
	}
	return filepath.Join(dir, name+config.TargetFileExt)
}

// Processor renders the class of a translated unit.
type Processor struct{}

func (ep *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Unit == nil || ctx.Generator == nil {
		return ctx
	}
	c := &Class{
		Package: ctx.Settings.Package,
		Runtime: ctx.Settings.RuntimePackage,
		Name:    ClassName(ctx.Unit, ctx.SymbolTable.Package()),
		Source:  ctx.Unit.File,
		Fields:  ctx.Generator.Fields(),
		Methods: ctx.Generator.Methods(),
		Main:    ctx.Main,
	}
	ctx.Output = Render(c)
	ctx.OutputPath = OutputPath(ctx.Settings.OutPath(), c.Package, c.Name)
	return ctx
}
