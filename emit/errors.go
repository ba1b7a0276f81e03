// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import "fmt"

// ErrorKind categorizes emission errors.
type ErrorKind uint8

const (
	// ErrUnsupportedFeature indicates IR the selected dialect cannot
	// express.
	ErrUnsupportedFeature ErrorKind = iota

	// ErrMalformedModule indicates input that is not a well-formed
	// linked module.
	ErrMalformedModule

	// ErrBadEntryPoint indicates an entry point the writer cannot
	// render.
	ErrBadEntryPoint
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrMalformedModule:
		return "MalformedModule"
	case ErrBadEntryPoint:
		return "BadEntryPoint"
	default:
		return "Unknown"
	}
}

// Error represents an emission error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("emit %s: %s", e.Kind, e.Message)
}

// NewError creates a new emission error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// Errorf creates a new emission error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsUnsupportedFeature returns true if the error is ErrUnsupportedFeature.
func (e *Error) IsUnsupportedFeature() bool {
	return e.Kind == ErrUnsupportedFeature
}
