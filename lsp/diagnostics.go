// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/lint"
	"github.com/luthersystems/jsscope/parser"
	"github.com/luthersystems/jsscope/parser/token"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer s.recoverPanic("diagnostics")
		if d := s.docs.Get(doc.URI); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	// Cancel any pending debounce and publish immediately.
	s.cancelDebounce(params.TextDocument.URI)

	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.analyzeAndPublish(doc)
	}

	go func() {
		defer s.recoverPanic("workspace update")
		s.updateFileRefs(params.TextDocument.URI)
	}()
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish runs analysis and lint on a document and publishes
// the resulting diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	v := s.ensureAnalysis(doc)
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         v.uri,
		Diagnostics: s.diagnostics(v),
	})
}

// diagnostics reports a syntax error, or the lint results of a document
// that parses.
func (s *Server) diagnostics(v view) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	if v.parseErr != nil {
		diags = append(diags, protocol.Diagnostic{
			Range:    parseErrorRange(v, v.parseErr),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr("jsscope"),
			Message:  syntaxMessage(v.parseErr),
		})
		return diags
	}
	if v.sem == nil {
		return diags
	}
	lintDiags, err := s.currentLinter().LintSemantic(context.Background(), v.sem)
	if err != nil {
		s.log.WithError(err).WithField("uri", v.uri).Warn("lint failed")
		return diags
	}
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(v, d))
	}
	return diags
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(v view, d lint.Diagnostic) protocol.Diagnostic {
	sev := mapLintSeverity(d.Severity)
	msg := d.Message
	for _, n := range d.Notes {
		msg += "\n" + n
	}
	return protocol.Diagnostic{
		Range:    lintRange(v.lines, v.content, d.Pos.Line, d.Pos.Col, d.Pos.EndCol),
		Severity: &sev,
		Source:   strPtr("jsscope-lint"),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  msg,
		// Code does not survive a JSON round trip in glsp, so the
		// analyzer travels in Data as well.
		Data: d.Analyzer,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

// parseErrorRange places a syntax error at its reported offset.
func parseErrorRange(v view, err error) protocol.Range {
	loc := errorLocation(err)
	if loc == nil {
		return protocol.Range{}
	}
	start := offsetToPosition(v.lines, v.content, loc.Pos)
	end := offsetToPosition(v.lines, v.content, loc.Pos+1)
	if end.Line != start.Line {
		end = start
	}
	return protocol.Range{Start: start, End: end}
}

func errorLocation(err error) *token.Location {
	if lerr, ok := parser.IsSyntaxError(err); ok && lerr.Source != nil {
		return lerr.Source
	}
	return nil
}

// syntaxMessage drops the location prefix that the editor already shows.
func syntaxMessage(err error) string {
	if lerr, ok := parser.IsSyntaxError(err); ok && lerr.Err != nil {
		return lerr.Err.Error()
	}
	return err.Error()
}

func strPtr(s string) *string {
	return &s
}
