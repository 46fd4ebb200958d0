package analyzer

import (
	"github.com/funvibe/perldoop/internal/pipeline"
	"github.com/funvibe/perldoop/internal/symbols"
)

// PrepassProcessor opens the unit's symbol table over the run's package
// registry and declares the unit's package and subroutines.
type PrepassProcessor struct{}

func (pp *PrepassProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Unit == nil {
		return ctx
	}
	if ctx.SymbolTable == nil {
		ctx.SymbolTable = symbols.NewSymbolTable(ctx.Registry)
	}
	New(ctx.SymbolTable, ctx.Importer).Prepare(ctx.Unit)
	return ctx
}
