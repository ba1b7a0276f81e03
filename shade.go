// Package shade links and specializes shader modules and renders
// entry points as per-target source text.
//
// A program is a set of ir modules built with ir.Builder or produced
// by a front end. Modules declare and export symbols under mangled
// linkage names; linking resolves imports against the whole set,
// clones the entry point's transitive closure into a fresh module,
// picks per-target candidates among competing definitions, and
// eagerly specializes generic declarations. Emission then renders the
// linked module as HLSL, GLSL or C.
//
// Example usage:
//
//	lib := ir.NewModule("lib")
//	// ... build and export definitions ...
//	user := ir.NewModule("user")
//	// ... build an entry point named "main#()" ...
//
//	src, info, err := shade.CompileEntryPoint(
//	    []*ir.Module{lib, user},
//	    "main#()",
//	    shade.DefaultOptions(ir.TargetHLSL),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info.EntryPoint, len(src))
//
// For whole-program compilation (several entry points, several
// targets, manifests and diagnostics) use the request package. The
// individual stages are available in link, layout and emit.
package shade

import (
	"fmt"

	"github.com/gogpu/shade/emit"
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/layout"
	"github.com/gogpu/shade/link"
)

// Version is the shade release version.
const Version = "0.1.0-dev"

// CompileOptions configures CompileEntryPoint.
type CompileOptions struct {
	// Target selects the output dialect and decides which
	// target-restricted definitions win candidate selection.
	Target ir.Target

	// Stage is the pipeline stage the entry point renders for. An
	// entry point decoration takes precedence.
	Stage ir.Stage

	// EntryPointName overrides the rendered entry point name.
	EntryPointName string

	// GLSLVersion is the #version directive of GLSL output.
	GLSLVersion int

	// DebugChecks enables the linker's consistency scans: duplicate
	// linkage names and structural validation of the linked module.
	DebugChecks bool
}

// DefaultOptions returns sensible default options for target.
func DefaultOptions(target ir.Target) CompileOptions {
	return CompileOptions{
		Target:      target,
		Stage:       ir.StageFragment,
		GLSLVersion: 450,
	}
}

// CompileEntryPoint compiles one entry point of a module set to
// source text.
//
// The pipeline is:
//  1. Build the symbol table over all modules
//  2. Compute resource layouts (globals, then the entry's varyings)
//  3. Link the entry point's transitive closure, specializing
//     generics and selecting per-target candidates
//  4. Render the linked module in the target dialect
func CompileEntryPoint(modules []*ir.Module, entryName string, opts CompileOptions) (string, *emit.Info, error) {
	symbols := link.BuildSymbolTable(modules)

	candidates := symbols.Lookup(entryName)
	if len(candidates) == 0 {
		return "", nil, fmt.Errorf("link error: no module declares %q", entryName)
	}
	seed := candidates[0]
	for _, c := range candidates {
		if c.Module.IsDefinition(c.Inst) {
			seed = c
			break
		}
	}

	globals, err := layout.ComputeGlobalLayouts(modules, opts.Target)
	if err != nil {
		return "", nil, fmt.Errorf("layout error: %w", err)
	}
	entryLayout, err := layout.ComputeEntryPointLayout(seed.Module, seed.Inst, opts.Target)
	if err != nil {
		return "", nil, fmt.Errorf("layout error: %w", err)
	}

	linked, entry, err := link.LinkEntryPoint(symbols, entryName, link.Options{
		Target:        opts.Target,
		EntryLayout:   entryLayout,
		GlobalLayouts: globals,
		DebugChecks:   opts.DebugChecks,
	})
	if err != nil {
		return "", nil, fmt.Errorf("link error: %w", err)
	}

	emitOpts := emit.Options{
		Target:         opts.Target,
		Stage:          opts.Stage,
		EntryPointName: opts.EntryPointName,
		GLSLVersion:    opts.GLSLVersion,
	}
	src, info, err := emit.Compile(linked, entry, emitOpts)
	if err != nil {
		return "", nil, fmt.Errorf("emit error: %w", err)
	}
	return src, info, nil
}
