package dat

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedMarkup    = errors.New("malformed markup")
	ErrMissingTitle       = errors.New("missing title")
	ErrEmptyReleaseImages = errors.New("release has no rom images")
	ErrUnknownConsole     = errors.New("unknown console")
)

// ParseError locates a parse failure in the catalog. Kind is one of the
// sentinel errors above, so errors.Is works on the wrapped value.
type ParseError struct {
	Kind   error
	Offset int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("dat: %v at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("dat: %v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

func malformed(offset int, format string, args ...any) error {
	return &ParseError{Kind: ErrMalformedMarkup, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// UnknownConsoleError reports a header console name with no registry match.
type UnknownConsoleError struct {
	Name string
}

func (e *UnknownConsoleError) Error() string {
	return fmt.Sprintf("dat: %v %q", ErrUnknownConsole, e.Name)
}

func (e *UnknownConsoleError) Unwrap() error { return ErrUnknownConsole }
