// Package diag collects severity-tagged diagnostics from the
// compilation pipeline and renders them for terminals.
package diag

import (
	"fmt"
	"sync"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the display name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "Note"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Diagnostic is one message produced by a pipeline stage.
type Diagnostic struct {
	Severity Severity

	// Stage names the pipeline stage that produced the diagnostic:
	// manifest, layout, link, emit.
	Stage string

	// Message is the human-readable description.
	Message string

	// Symbol carries the linkage name the diagnostic is about, when
	// one is known.
	Symbol string
}

// Sink accumulates diagnostics. Stages may report concurrently.
type Sink struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report adds one diagnostic.
func (s *Sink) Report(d Diagnostic) {
	s.mu.Lock()
	s.diags = append(s.diags, d)
	s.mu.Unlock()
}

// Errorf reports a formatted error diagnostic for stage.
func (s *Sink) Errorf(stage, format string, args ...any) {
	s.Report(Diagnostic{Severity: SeverityError, Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// Warningf reports a formatted warning diagnostic for stage.
func (s *Sink) Warningf(stage, format string, args ...any) {
	s.Report(Diagnostic{Severity: SeverityWarning, Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// Notef reports a formatted note for stage.
func (s *Sink) Notef(stage, format string, args ...any) {
	s.Report(Diagnostic{Severity: SeverityNote, Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// ReportError records err as an error diagnostic for stage.
func (s *Sink) ReportError(stage string, err error) {
	if err == nil {
		return
	}
	s.Report(Diagnostic{Severity: SeverityError, Stage: stage, Message: err.Error()})
}

// HasErrors reports whether any error-severity diagnostic was
// recorded.
func (s *Sink) HasErrors() bool {
	return s.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (s *Sink) ErrorCount() int {
	return s.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (s *Sink) WarningCount() int {
	return s.count(SeverityWarning)
}

func (s *Sink) count(sev Severity) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Diagnostics returns a copy of everything reported so far, in report
// order.
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}
