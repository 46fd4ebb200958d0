package translator

import (
	"github.com/funvibe/perldoop/internal/analyzer"
	"github.com/funvibe/perldoop/internal/codegen"
	"github.com/funvibe/perldoop/internal/pipeline"
)

// Processor translates the unit of the context. It needs the symbol table
// opened by the prepass.
type Processor struct{}

func (tp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Unit == nil || ctx.SymbolTable == nil {
		return ctx
	}
	g := codegen.NewGenerator(ctx.SymbolTable, codegen.Options{
		NullChecks:       ctx.Settings.NullChecks,
		StrictStatements: ctx.Settings.StrictStatements,
		Comments:         ctx.Settings.Comments,
	})
	tr := New(analyzer.New(ctx.SymbolTable, ctx.Importer), g)
	ctx.Main = tr.Translate(ctx.Unit)
	ctx.Generator = g
	ctx.Errors = append(ctx.Errors, tr.Errors()...)
	return ctx
}
