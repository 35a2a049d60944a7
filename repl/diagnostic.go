// Copyright © 2024 The ELPS authors

package repl

import (
	"github.com/luthersystems/jsscope/diagnostic"
	"github.com/luthersystems/jsscope/parser"
)

// renderError prints a syntax error against the source it occurred in.
func (s *session) renderError(src []byte, err error) {
	d := diagnostic.Diagnostic{Severity: diagnostic.SeverityError, Message: err.Error()}
	if lerr, ok := parser.IsSyntaxError(err); ok && lerr.Source != nil {
		d.Message = lerr.Err.Error()
		d.Spans = []diagnostic.Span{{File: s.file, Line: lerr.Source.Line, Col: lerr.Source.Col}}
	}
	r := &diagnostic.Renderer{
		Color:        s.cfg.color,
		SourceReader: func(string) ([]byte, error) { return src, nil },
	}
	_ = r.Render(s.out, d)
}
