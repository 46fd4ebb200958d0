package typesystem

import "fmt"

// IncompatibleError reports that no conversion rule reaches To from From.
type IncompatibleError struct {
	From Type
	To   Type
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

func NewIncompatibleError(from, to Type) *IncompatibleError {
	return &IncompatibleError{From: from, To: to}
}

// TagError indicates an invalid linear type form.
type TagError struct {
	Input  string
	Reason string
}

func (e *TagError) Error() string {
	if e.Input == "" {
		return "invalid type: " + e.Reason
	}
	return fmt.Sprintf("invalid type %q: %s", e.Input, e.Reason)
}
