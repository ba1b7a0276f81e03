// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package emit

import (
	"github.com/gogpu/shade/ir"
)

// Options configure one compilation.
type Options struct {
	// Target selects the output dialect.
	Target ir.Target

	// Stage is the pipeline stage to render the entry point for. An
	// entry point decoration on the function takes precedence.
	Stage ir.Stage

	// EntryPointName overrides the rendered entry point name. GLSL
	// ignores it; the entry point there is always main.
	EntryPointName string

	// GLSLVersion is the #version directive value.
	GLSLVersion int
}

// DefaultOptions returns the default compilation options for target.
func DefaultOptions(target ir.Target) Options {
	return Options{
		Target:      target,
		Stage:       ir.StageFragment,
		GLSLVersion: 450,
	}
}

// ResourceBinding reports where one global shader parameter was bound
// in the generated source.
type ResourceBinding struct {
	// Name is the identifier used in the output.
	Name string

	// Linkage is the parameter's linkage name.
	Linkage string

	// Info is the bound register range.
	Info ir.ResourceInfo
}

// Info describes the generated source.
type Info struct {
	// EntryPoint is the rendered entry point name.
	EntryPoint string

	// Stage is the stage the entry point was rendered for.
	Stage ir.Stage

	// Target is the dialect the source was generated in.
	Target ir.Target

	// Resources lists the bound shader parameters in declaration
	// order.
	Resources []ResourceBinding
}
