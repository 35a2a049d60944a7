// Copyright © 2024 The ELPS authors

package lint

import "github.com/luthersystems/jsscope/diagnostic"

// Annotated converts d for the source snippet renderer.
func (d Diagnostic) Annotated() diagnostic.Diagnostic {
	out := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Message:  d.Message,
		Code:     d.Analyzer,
		Notes:    append([]string(nil), d.Notes...),
	}
	switch d.Severity {
	case SeverityError:
		out.Severity = diagnostic.SeverityError
	case SeverityInfo:
		out.Severity = diagnostic.SeverityNote
	}
	if d.Pos.Line > 0 {
		out.Spans = append(out.Spans, diagnostic.Span{
			File:   d.Pos.File,
			Line:   d.Pos.Line,
			Col:    d.Pos.Col,
			EndCol: d.Pos.EndCol,
		})
	}
	if d.Analyzer != "" {
		out.Notes = append(out.Notes, "to suppress: add \"// jsscope-disable-next-line "+d.Analyzer+"\" above this line")
	}
	return out
}

// Annotate converts a batch of diagnostics.
func Annotate(diags []Diagnostic) []diagnostic.Diagnostic {
	out := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = d.Annotated()
	}
	return out
}
