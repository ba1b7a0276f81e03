package link

import "fmt"

// ErrorKind categorizes linking errors.
type ErrorKind uint8

const (
	// ErrUnresolvedSymbol indicates a linkage name with no registered
	// candidates.
	ErrUnresolvedSymbol ErrorKind = iota

	// ErrCircularDefinition indicates a symbol whose definition
	// depends on resolving itself.
	ErrCircularDefinition

	// ErrBadSpecialize indicates a specialize instruction that cannot
	// be reduced: wrong argument count, a non-generic operand, or a
	// generic without a body.
	ErrBadSpecialize

	// ErrBadEntryPoint indicates an entry point that did not reduce to
	// a function, or whose parameters do not fit the supplied layout.
	ErrBadEntryPoint

	// ErrDuplicateSymbol indicates two destination instructions
	// sharing one linkage name, found by the debug checks.
	ErrDuplicateSymbol

	// ErrInternalError indicates a defect in the linker itself, such
	// as a phase violation.
	ErrInternalError
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnresolvedSymbol:
		return "UnresolvedSymbol"
	case ErrCircularDefinition:
		return "CircularDefinition"
	case ErrBadSpecialize:
		return "BadSpecialize"
	case ErrBadEntryPoint:
		return "BadEntryPoint"
	case ErrDuplicateSymbol:
		return "DuplicateSymbol"
	case ErrInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Error represents a linking error.
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
		return fmt.Sprintf("link %s: %s (symbol %q)", e.Kind, e.Message, e.Symbol)
	}
	return fmt.Sprintf("link %s: %s", e.Kind, e.Message)
}

// NewError creates a new linking error without symbol context.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// NewSymbolError creates a new linking error tied to a linkage name.
func NewSymbolError(kind ErrorKind, message, symbol string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Symbol:  symbol,
	}
}

// IsUnresolvedSymbol returns true if the error is ErrUnresolvedSymbol.
func (e *Error) IsUnresolvedSymbol() bool {
	return e.Kind == ErrUnresolvedSymbol
}

// IsCircularDefinition returns true if the error is ErrCircularDefinition.
func (e *Error) IsCircularDefinition() bool {
	return e.Kind == ErrCircularDefinition
}

// IsBadSpecialize returns true if the error is ErrBadSpecialize.
func (e *Error) IsBadSpecialize() bool {
	return e.Kind == ErrBadSpecialize
}
