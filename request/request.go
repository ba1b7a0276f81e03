// Package request orchestrates whole compile requests: manifest plus
// modules in, per-target artifacts out.
package request

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/gogpu/shade/diag"
	"github.com/gogpu/shade/emit"
	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/layout"
	"github.com/gogpu/shade/link"
)

// Artifact is one generated source file.
type Artifact struct {
	// EntryPoint is the linkage name the artifact was linked for.
	EntryPoint string

	// Target is the dialect of Source.
	Target ir.Target

	// Source is the generated text.
	Source string

	// Info describes the rendered interface.
	Info *emit.Info
}

// FileName returns the conventional output file name: the entry
// point's base name with the target name as extension.
func (a Artifact) FileName() string {
	base := a.EntryPoint
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	base = strings.ReplaceAll(base, "::", "_")
	return base + "." + a.Target.Name()
}

// Request is one compilation of a program: every requested entry
// point for every requested target, over a fixed set of modules.
type Request struct {
	Manifest *Manifest
	Modules  []*ir.Module

	// Options override manifest settings; see Options.Apply.
	Options Options

	// Logger receives pipeline progress. Defaults to the standard
	// logger.
	Logger logrus.FieldLogger

	// Sink collects diagnostics across stages. A fresh sink is
	// created by New.
	Sink *diag.Sink
}

// New returns a request over manifest and modules with default
// logging and a fresh diagnostic sink.
func New(manifest *Manifest, modules []*ir.Module) *Request {
	return &Request{
		Manifest: manifest,
		Modules:  modules,
		Logger:   logrus.StandardLogger(),
		Sink:     diag.NewSink(),
	}
}

// targets returns the effective target names.
func (r *Request) targets() []string {
	if r.Options.Targets != nil {
		return r.Options.Targets
	}
	return r.Manifest.Targets
}

// entries returns the effective entry points. An entry-point override
// in the options replaces the manifest list.
func (r *Request) entries() []ManifestEntry {
	if r.Options.EntryPoint.Valid {
		stage := ""
		if r.Options.Stage.Valid {
			stage = r.Options.Stage.String
		}
		return []ManifestEntry{{Name: r.Options.EntryPoint.String, Stage: stage}}
	}
	return r.Manifest.Entries
}

// Run executes the pipeline: one symbol table, then layout, link and
// emit per target and entry point. Artifacts for entry points that
// compiled are returned even when others failed; the error summarizes
// the sink.
func (r *Request) Run() ([]Artifact, error) {
	log := r.Logger.WithField("component", "request")

	if errs := r.Options.Validate(); len(errs) > 0 {
		for _, err := range errs {
			r.Sink.ReportError("options", err)
		}
		return nil, fmt.Errorf("program %q: invalid options", r.Manifest.Name)
	}

	symbols := link.BuildSymbolTable(r.Modules)
	log.WithFields(logrus.Fields{
		"program": r.Manifest.Name,
		"modules": len(r.Modules),
		"symbols": symbols.Len(),
	}).Debug("symbol table built")

	var artifacts []Artifact
	for _, tname := range r.targets() {
		target, ok := ir.TargetFromName(tname)
		if !ok {
			r.Sink.Errorf("request", "unknown target %q", tname)
			continue
		}
		globals, err := layout.ComputeGlobalLayouts(r.Modules, target)
		if err != nil {
			r.Sink.ReportError("layout", err)
			continue
		}
		for _, entry := range r.entries() {
			if a, ok := r.compileOne(symbols, globals, target, entry); ok {
				artifacts = append(artifacts, a)
			}
		}
	}

	if r.Sink.HasErrors() {
		return artifacts, fmt.Errorf("program %q: %d errors", r.Manifest.Name, r.Sink.ErrorCount())
	}
	return artifacts, nil
}

// compileOne runs layout, link and emit for one entry point and one
// target, reporting failures to the sink.
func (r *Request) compileOne(symbols *link.SymbolTable, globals map[string]*ir.VarLayout, target ir.Target, entry ManifestEntry) (Artifact, bool) {
	log := r.Logger.WithFields(logrus.Fields{
		"entry":  entry.Name,
		"target": target.Name(),
	})

	candidates := symbols.Lookup(entry.Name)
	if len(candidates) == 0 {
		r.Sink.Report(diag.Diagnostic{
			Severity: diag.SeverityError,
			Stage:    "link",
			Message:  "no module declares this entry point",
			Symbol:   entry.Name,
		})
		return Artifact{}, false
	}
	seed := candidates[0]
	for _, c := range candidates {
		if c.Module.IsDefinition(c.Inst) {
			seed = c
			break
		}
	}

	entryLayout, err := layout.ComputeEntryPointLayout(seed.Module, seed.Inst, target)
	if err != nil {
		r.Sink.ReportError("layout", err)
		return Artifact{}, false
	}

	linked, entryInst, err := link.LinkEntryPoint(symbols, entry.Name, link.Options{
		Target:        target,
		EntryLayout:   entryLayout,
		GlobalLayouts: globals,
		Logger:        r.Logger,
		DebugChecks:   r.Options.DebugChecks.Bool,
	})
	if err != nil {
		r.Sink.ReportError("link", err)
		return Artifact{}, false
	}

	opts := emit.DefaultOptions(target)
	opts.Stage = entry.StageOf()
	if r.Options.Stage.Valid {
		if s, ok := ir.StageFromName(r.Options.Stage.String); ok {
			opts.Stage = s
		}
	}
	if r.Options.GLSLVersion.Valid {
		opts.GLSLVersion = int(r.Options.GLSLVersion.Int64)
	}

	src, info, err := emit.Compile(linked, entryInst, opts)
	if err != nil {
		r.Sink.ReportError("emit", err)
		return Artifact{}, false
	}
	log.WithField("bytes", len(src)).Debug("entry point compiled")

	return Artifact{
		EntryPoint: entry.Name,
		Target:     target,
		Source:     src,
		Info:       info,
	}, true
}

// WriteArtifacts writes every artifact into dir on fs, creating the
// directory when needed.
func WriteArtifacts(fs afero.Fs, dir string, artifacts []Artifact) error {
	if dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	for _, a := range artifacts {
		path := filepath.Join(dir, a.FileName())
		if err := afero.WriteFile(fs, path, []byte(a.Source), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
