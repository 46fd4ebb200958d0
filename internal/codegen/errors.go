package codegen

import "fmt"

// UnsupportedError reports a construct the generator has no translation
// for.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return "unsupported: " + e.What
}

func unsupported(format string, args ...interface{}) error {
	return &UnsupportedError{What: fmt.Sprintf(format, args...)}
}
