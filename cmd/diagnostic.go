// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/luthersystems/jsscope/diagnostic"
	"github.com/luthersystems/jsscope/lint"
	"github.com/luthersystems/jsscope/parser"
)

func colorMode() diagnostic.ColorMode {
	mode, ok := diagnostic.ParseColorMode(viper.GetString("color"))
	if !ok {
		return diagnostic.ColorAuto
	}
	return mode
}

// newRenderer returns a renderer that reads source from sources first and
// from disk otherwise. Sources holds input that never touched the disk,
// like stdin.
func newRenderer(sources map[string][]byte) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: colorMode(),
		SourceReader: func(path string) ([]byte, error) {
			if src, ok := sources[path]; ok {
				return src, nil
			}
			return os.ReadFile(path) //nolint:gosec // files named on the command line
		},
	}
}

// syntaxErrorDiagnostic converts a parse failure of file to a Diagnostic
// for display.
func syntaxErrorDiagnostic(file string, err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  err.Error(),
		Code:     "syntax",
	}
	if lerr, ok := parser.IsSyntaxError(err); ok && lerr.Source != nil {
		d.Message = lerr.Err.Error()
		span := diagnostic.Span{
			File: file,
			Line: lerr.Source.Line,
			Col:  lerr.Source.Col,
		}
		// Prefer physical path for reading source
		if lerr.Source.Path != "" {
			span.File = lerr.Source.Path
		}
		d.Spans = append(d.Spans, span)
	}
	return d
}

// renderSyntaxError renders a parse failure of file.
func renderSyntaxError(w io.Writer, file string, err error, sources map[string][]byte) {
	_ = newRenderer(sources).Render(w, syntaxErrorDiagnostic(file, err))
}

// renderLintDiagnostics renders lint diagnostics with source excerpts.
func renderLintDiagnostics(w io.Writer, diags []lint.Diagnostic, sources map[string][]byte) {
	_ = newRenderer(sources).RenderAll(w, lint.Annotate(diags))
}
