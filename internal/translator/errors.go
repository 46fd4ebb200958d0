package translator

import (
	"errors"

	"github.com/funvibe/perldoop/internal/ast"
	"github.com/funvibe/perldoop/internal/diagnostics"
	ts "github.com/funvibe/perldoop/internal/typesystem"
)

// diagnose attaches a code and the position of n to err. Errors that are
// already diagnostics keep their code and position.
func diagnose(n ast.Node, err error) error {
	var (
		d   *diagnostics.DiagnosticError
		inc *ts.IncompatibleError
	)
	code := diagnostics.ErrG001
	switch {
	case errors.As(err, &d):
		code = d.Code
	case errors.As(err, &inc):
		code = diagnostics.ErrT001
	}
	return diagnostics.Wrap(code, n.Position(), err)
}
