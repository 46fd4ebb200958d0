// Package diagnostics carries positioned translation errors.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	ErrT001 ErrorCode = "T001" // type incompatible
	ErrS001 ErrorCode = "S001" // undeclared variable
	ErrS002 ErrorCode = "S002" // declaration without a type
	ErrS003 ErrorCode = "S003" // unknown package
	ErrS004 ErrorCode = "S004" // our outside a package
	ErrS005 ErrorCode = "S005" // unknown subroutine
	ErrG001 ErrorCode = "G001" // unsupported construct
	ErrL001 ErrorCode = "L001" // tree decode error
)

var codeTitles = map[ErrorCode]string{
	ErrT001: "incompatible types",
	ErrS001: "undeclared variable",
	ErrS002: "untyped declaration",
	ErrS003: "unknown package",
	ErrS004: "our outside package",
	ErrS005: "unknown subroutine",
	ErrG001: "unsupported construct",
	ErrL001: "invalid tree",
}

// Title is a short name for the code.
func (c ErrorCode) Title() string {
	return codeTitles[c]
}

// Pos is a source position. Zero fields are unknown.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	var sb strings.Builder
	sb.WriteString(p.File)
	if p.Line > 0 {
		fmt.Fprintf(&sb, ":%d", p.Line)
		if p.Column > 0 {
			fmt.Fprintf(&sb, ":%d", p.Column)
		}
	}
	return sb.String()
}

// DiagnosticError is an error at a source position.
type DiagnosticError struct {
	Code    ErrorCode
	Pos     Pos
	Message string
	Err     error // cause, may be nil
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	if pos := e.Pos.String(); pos != "" {
		sb.WriteString(pos)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "error [%s]: %s", e.Code, e.Message)
	return sb.String()
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, pos Pos, format string, args ...any) *DiagnosticError {
	return &DiagnosticError{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and position to err. An err that already carries a
// diagnostic is returned with its position filled in when missing.
func Wrap(code ErrorCode, pos Pos, err error) *DiagnosticError {
	var d *DiagnosticError
	if errors.As(err, &d) {
		if d.Pos == (Pos{}) {
			d.Pos = pos
		}
		return d
	}
	return &DiagnosticError{Code: code, Pos: pos, Message: err.Error(), Err: err}
}

const (
	ansiRed   = "\x1b[31;1m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Format renders err for a terminal. Non-diagnostic errors are rendered
// verbatim.
func Format(err error, color bool) string {
	var d *DiagnosticError
	if !errors.As(err, &d) {
		return err.Error()
	}
	var sb strings.Builder
	if pos := d.Pos.String(); pos != "" {
		if color {
			sb.WriteString(ansiBold + pos + ansiReset)
		} else {
			sb.WriteString(pos)
		}
		sb.WriteString(": ")
	}
	label := fmt.Sprintf("error [%s]", d.Code)
	if color {
		label = ansiRed + label + ansiReset
	}
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}
