package diag

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_Counts(t *testing.T) {
	t.Parallel()

	s := NewSink()
	assert.False(t, s.HasErrors())

	s.Errorf("link", "no definition for %q", "sqr#(float)")
	s.Warningf("layout", "binding %d unused", 3)
	s.Notef("emit", "rendered %d functions", 2)

	assert.True(t, s.HasErrors())
	assert.Equal(t, 1, s.ErrorCount())
	assert.Equal(t, 1, s.WarningCount())

	diags := s.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "link", diags[0].Stage)
	assert.Equal(t, `no definition for "sqr#(float)"`, diags[0].Message)
	assert.Equal(t, SeverityNote, diags[2].Severity)
}

func TestSink_ReportError(t *testing.T) {
	t.Parallel()

	s := NewSink()
	s.ReportError("link", errors.New("boom"))
	s.ReportError("link", nil)

	require.Equal(t, 1, s.ErrorCount())
	assert.Equal(t, "boom", s.Diagnostics()[0].Message)
}

func TestSink_DiagnosticsCopy(t *testing.T) {
	t.Parallel()

	s := NewSink()
	s.Errorf("link", "first")

	got := s.Diagnostics()
	got[0].Message = "mutated"
	assert.Equal(t, "first", s.Diagnostics()[0].Message)
}

func TestSink_Concurrent(t *testing.T) {
	t.Parallel()

	s := NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Errorf("link", "e")
				s.Warningf("emit", "w")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, s.ErrorCount())
	assert.Equal(t, 400, s.WarningCount())
}

func TestSeverity_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Note", SeverityNote.String())
	assert.Equal(t, "Warning", SeverityWarning.String())
	assert.Equal(t, "Error", SeverityError.String())
	assert.Equal(t, "Unknown", Severity(9).String())
}
