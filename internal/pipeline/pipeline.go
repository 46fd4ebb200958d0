package pipeline

import (
	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/codegen"
	"github.com/funvibe/perldoop/internal/config"
	"github.com/funvibe/perldoop/internal/symbols"
)

// PipelineContext carries one compilation unit through the stages.
type PipelineContext struct {
	FilePath string
	Settings *config.Settings

	// Registry is shared by every unit of a run; Importer reaches packages
	// translated by earlier runs. Importer may be nil.
	Registry *symbols.Registry
	Importer symbols.Importer

	Unit        *ast.Unit
	SymbolTable *symbols.SymbolTable
	Generator   *codegen.Generator
	Main        []string // top-level statement text in source order

	Output     []byte // rendered class
	OutputPath string

	Errors []error
}

// NewContext returns a context for the unit at path.
func NewContext(path string, settings *config.Settings, registry *symbols.Registry, importer symbols.Importer) *PipelineContext {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if registry == nil {
		registry = symbols.NewRegistry()
	}
	return &PipelineContext{
		FilePath: path,
		Settings: settings,
		Registry: registry,
		Importer: importer,
	}
}

// Failed reports whether any stage recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors: later stages skip what they cannot use and
		// still report their own diagnostics.
	}
	return ctx
}
