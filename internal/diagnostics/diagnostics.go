// Package diagnostics turns pipeline errors into user-facing reports with
// source excerpts, and collects them across the files of a build.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticNote
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticNote:
		return "note"
	default:
		return "unknown"
	}
}

// codes assigns a stable code to each error kind.
var codes = map[jerrors.Kind]string{
	jerrors.KindParse:       "E001",
	jerrors.KindSyntax:      "E002",
	jerrors.KindNotDefined:  "E003",
	jerrors.KindUnknownData: "E004",
	jerrors.KindAst:         "E005",
}

// Diagnostic is one report about one source file
type Diagnostic struct {
	Level      DiagnosticLevel
	Code       string
	Kind       jerrors.Kind
	Message    string
	Span       position.Span
	SourceFile string
	// Excerpt is the highlighted source around Span, if known.
	Excerpt string
}

// FromError builds a diagnostic for err. source may be nil when the text is
// not available.
func FromError(err error, source *position.SourceFile) Diagnostic {
	d := Diagnostic{Level: DiagnosticError, Message: err.Error()}
	if source != nil {
		d.SourceFile = source.Filename
	}

	se, ok := jerrors.As(err)
	if !ok {
		return d
	}
	d.Kind = se.Kind
	d.Code = codes[se.Kind]
	d.Message = se.Message
	if se.Cause != nil {
		d.Message += ": " + se.Cause.Error()
	}
	d.Span = se.Span
	if se.Span.Start.Filename != "" {
		d.SourceFile = se.Span.Start.Filename
	}
	if source != nil && se.Span.IsValid() {
		d.Excerpt = source.Highlight(se.Span, 1)
	}
	return d
}

// Manager collects diagnostics. It is safe for concurrent use.
type Manager struct {
	mu           sync.Mutex
	diagnostics  []Diagnostic
	errorCount   int
	warningCount int
}

// NewManager creates an empty Manager
func NewManager() *Manager {
	return &Manager{}
}

// Add records a diagnostic
func (m *Manager) Add(d Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch d.Level {
	case DiagnosticError:
		m.errorCount++
	case DiagnosticWarning:
		m.warningCount++
	}
	m.diagnostics = append(m.diagnostics, d)
}

// AddError records err as an error diagnostic.
func (m *Manager) AddError(err error, source *position.SourceFile) {
	m.Add(FromError(err, source))
}

// Diagnostics returns the collected diagnostics sorted by file and position.
func (m *Manager) Diagnostics() []Diagnostic {
	m.mu.Lock()
	out := append([]Diagnostic(nil), m.diagnostics...)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Level < b.Level
	})
	return out
}

// ErrorCount returns the number of errors
func (m *Manager) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorCount
}

// HasErrors returns true if there are any errors
func (m *Manager) HasErrors() bool { return m.ErrorCount() > 0 }

// Format renders a diagnostic for display
func Format(d Diagnostic, colorize bool) string {
	var result strings.Builder

	if colorize {
		result.WriteString(colorizeLevel(d.Level))
	}
	result.WriteString(d.Level.String())
	if d.Code != "" {
		result.WriteString("[" + d.Code + "]")
	}
	if colorize {
		result.WriteString(colorReset)
	}
	result.WriteString(": " + d.Message)

	if d.SourceFile != "" || d.Span.IsValid() {
		result.WriteString("\n  --> " + d.SourceFile)
		if d.Span.IsValid() {
			result.WriteString(fmt.Sprintf(":%d:%d", d.Span.Start.Line, d.Span.Start.Column))
		}
	}
	result.WriteString("\n")

	if d.Excerpt != "" {
		result.WriteString(d.Excerpt)
	}
	return result.String()
}

const colorReset = "\033[0m"

// colorizeLevel adds color codes for terminal display
func colorizeLevel(level DiagnosticLevel) string {
	switch level {
	case DiagnosticError:
		return "\033[31m" // Red
	case DiagnosticWarning:
		return "\033[33m" // Yellow
	case DiagnosticNote:
		return "\033[34m" // Blue
	default:
		return ""
	}
}

// FormatSummary formats a summary of all diagnostics
func (m *Manager) FormatSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.diagnostics) == 0 {
		return "No diagnostics."
	}
	return fmt.Sprintf("Found %d error(s) and %d warning(s).", m.errorCount, m.warningCount)
}
