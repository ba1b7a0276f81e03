// Package mangle computes linkage names.
//
// A linkage name identifies one external symbol across module
// boundaries: declarations of the same symbol in different modules
// produce the same string, while overloads of one source name produce
// distinct strings. The scheme is readable on purpose, since linkage
// names surface in diagnostics and disassembly.
package mangle

import "strings"

// Qualify joins namespace path segments into a qualified name.
func Qualify(parts ...string) string {
	return strings.Join(parts, "::")
}

// Function returns the linkage name of a function overload. The
// parameter type names distinguish overloads sharing one source name.
func Function(qualified string, params ...string) string {
	var sb strings.Builder
	sb.WriteString(qualified)
	sb.WriteString("#(")
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Generic returns the linkage name of a parametric declaration.
func Generic(qualified string, params ...string) string {
	var sb strings.Builder
	sb.WriteString(qualified)
	sb.WriteString("#<")
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p)
	}
	sb.WriteByte('>')
	return sb.String()
}

// Global returns the linkage name of a module-scope variable,
// constant or shader parameter.
func Global(qualified string) string {
	return qualified + "#g"
}

// Type returns the linkage name of a named type.
func Type(qualified string) string {
	return qualified + "#t"
}

// Field returns the linkage name of a struct field key.
func Field(owner, field string) string {
	return owner + "::" + field + "#k"
}
