package request

import (
	"fmt"

	"gopkg.in/guregu/null.v3"

	"github.com/gogpu/shade/ir"
)

// Options are the tunable settings of a compile request. Unset fields
// fall back to manifest values and built-in defaults; consolidation
// happens through Apply.
type Options struct {
	// Targets restricts compilation to these dialect names. Nil means
	// every target the manifest lists.
	Targets []string `json:"targets"`

	// EntryPoint restricts compilation to the entry point with this
	// linkage name.
	EntryPoint null.String `json:"entryPoint"`

	// Stage overrides the stage of the selected entry points.
	Stage null.String `json:"stage"`

	// GLSLVersion sets the #version directive of GLSL output.
	GLSLVersion null.Int `json:"glslVersion"`

	// DebugChecks enables the linker's consistency scans.
	DebugChecks null.Bool `json:"debugChecks"`

	// OutputDir is where artifacts are written.
	OutputDir null.String `json:"outputDir"`

	// Verbose enables debug-level pipeline logging.
	Verbose null.Bool `json:"verbose"`
}

// Apply returns the result of overwriting any fields with any that
// are set on the argument.
//
// Example:
//
//	a := Options{GLSLVersion: null.IntFrom(450)}
//	b := Options{GLSLVersion: null.IntFrom(330)}
//	a.Apply(b) // Options{GLSLVersion: null.IntFrom(330)}
func (o Options) Apply(opts Options) Options {
	if opts.Targets != nil {
		o.Targets = append([]string(nil), opts.Targets...)
	}
	if opts.EntryPoint.Valid {
		o.EntryPoint = opts.EntryPoint
	}
	if opts.Stage.Valid {
		o.Stage = opts.Stage
	}
	if opts.GLSLVersion.Valid {
		o.GLSLVersion = opts.GLSLVersion
	}
	if opts.DebugChecks.Valid {
		o.DebugChecks = opts.DebugChecks
	}
	if opts.OutputDir.Valid {
		o.OutputDir = opts.OutputDir
	}
	if opts.Verbose.Valid {
		o.Verbose = opts.Verbose
	}
	return o
}

// Validate checks the consolidated options and returns every problem
// found.
func (o Options) Validate() []error {
	var errs []error
	for _, name := range o.Targets {
		if _, ok := ir.TargetFromName(name); !ok {
			errs = append(errs, fmt.Errorf("unknown target %q", name))
		}
	}
	if o.Stage.Valid {
		if _, ok := ir.StageFromName(o.Stage.String); !ok {
			errs = append(errs, fmt.Errorf("unknown stage %q", o.Stage.String))
		}
	}
	if o.GLSLVersion.Valid && o.GLSLVersion.Int64 < 110 {
		errs = append(errs, fmt.Errorf("GLSL version %d is below the supported minimum", o.GLSLVersion.Int64))
	}
	return errs
}
