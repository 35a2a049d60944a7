// Copyright © 2024 The ELPS authors

// Package diagnostic renders annotated source snippets for the jsscope
// CLI. It does not depend on the parser or the semantic model so that any
// command can build diagnostics from its own positions.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of one source line to highlight.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column, in runes
	EndCol int    // 1-based column just past the region (0 = the token at Col)
	Label  string // text shown after the underline
}

// Diagnostic is a single error, warning, or note with optional source
// annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string // the check that produced it, shown as error[code]
	Spans    []Span
	Notes    []string
}
