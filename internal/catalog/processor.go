package catalog

import (
	"github.com/funvibe/perldoop/internal/pipeline"
)

// ExportProcessor stores the exports of a unit's package. Units with
// errors are not exported.
type ExportProcessor struct {
	Catalog *Catalog
}

func (ep *ExportProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ep.Catalog == nil || ctx.Failed() || ctx.SymbolTable == nil {
		return ctx
	}
	p := ctx.SymbolTable.Package()
	if p == nil {
		return ctx
	}
	source := ctx.FilePath
	if ctx.Unit != nil && ctx.Unit.File != "" {
		source = ctx.Unit.File
	}
	if err := ep.Catalog.Export(p, source); err != nil {
		ctx.Errors = append(ctx.Errors, err)
	}
	return ctx
}
