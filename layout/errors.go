package layout

import "fmt"

// ErrorKind categorizes layout errors.
type ErrorKind uint8

const (
	// ErrBindingConflict indicates two parameters claiming the same
	// binding slot.
	ErrBindingConflict ErrorKind = iota

	// ErrBadDeclaration indicates a declaration the allocator cannot
	// lay out, such as an entry point that is not a function.
	ErrBadDeclaration
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrBindingConflict:
		return "BindingConflict"
	case ErrBadDeclaration:
		return "BadDeclaration"
	default:
		return "Unknown"
	}
}

// Error represents a layout error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Symbol optionally identifies the linkage name involved.
	Symbol string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("layout %s: %s (symbol %q)", e.Kind, e.Message, e.Symbol)
	}
	return fmt.Sprintf("layout %s: %s", e.Kind, e.Message)
}

// NewError creates a new layout error without symbol context.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// NewSymbolError creates a new layout error tied to a linkage name.
func NewSymbolError(kind ErrorKind, message, symbol string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Symbol:  symbol,
	}
}

// IsBindingConflict returns true if the error is ErrBindingConflict.
func (e *Error) IsBindingConflict() bool {
	return e.Kind == ErrBindingConflict
}
