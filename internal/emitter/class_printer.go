package emitter

import (
	"bytes"
	"strings"

	"github.com/funvibe/perldoop/internal/codegen"
)

// ClassPrinter writes a class file line by line at an indentation level.
type ClassPrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewClassPrinter() *ClassPrinter {
	return &ClassPrinter{}
}

func (p *ClassPrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

func (p *ClassPrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *ClassPrinter) writeln() {
	p.buf.WriteString("\n")
}

// line writes s on its own line.
func (p *ClassPrinter) line(s string) {
	p.writeIndent()
	p.write(s)
	p.writeln()
}

// code writes generated text whose first line continues the current one
// and whose following lines are indented at the current level.
func (p *ClassPrinter) code(text string) {
	lines := strings.Split(text, "\n")
	p.write(lines[0])
	p.writeln()
	for _, l := range lines[1:] {
		if l == "" {
			p.writeln()
			continue
		}
		p.line(l)
	}
}

func (p *ClassPrinter) Bytes() []byte {
	return p.buf.Bytes()
}

func (p *ClassPrinter) String() string {
	return p.buf.String()
}

// PrintClass renders c as a complete class file.
func (p *ClassPrinter) PrintClass(c *Class) {
	if c.Source != "" {
		p.line("// Generated from " + c.Source)
	}
	if c.Package != "" {
		p.line("package " + c.Package + ";")
		p.writeln()
	}
	if c.Runtime != "" {
		p.line("import " + c.Runtime + ".*;")
		p.writeln()
	}
	p.line("public class " + c.Name + " {")
	p.indent++

	for _, f := range c.Fields {
		p.field(f)
	}
	for i, m := range c.Methods {
		if i > 0 || len(c.Fields) > 0 {
			p.writeln()
		}
		p.method(m)
	}
	if len(c.Main) > 0 {
		if len(c.Fields) > 0 || len(c.Methods) > 0 {
			p.writeln()
		}
		p.line("public static void main(String[] args) throws Exception {")
		p.indent++
		for _, s := range c.Main {
			p.writeIndent()
			p.code(s)
		}
		p.indent--
		p.line("}")
	}

	p.indent--
	p.line("}")
}

func (p *ClassPrinter) field(f codegen.Field) {
	visibility := "private"
	if f.Public {
		visibility = "public"
	}
	init := "null"
	if v := codegen.Empty(f.Type); v != "null" {
		init = v
	}
	p.line(visibility + " static " + codegen.JavaType(f.Type) + " " + f.Alias + " = " + init + ";")
}

func (p *ClassPrinter) method(m codegen.Method) {
	p.writeIndent()
	p.write("public static " + codegen.JavaType(m.Sub.Returns) + " " + m.Sub.Alias +
		"(" + codegen.JavaType(argsType) + " " + m.Param + ") ")
	p.code(m.Body)
}
