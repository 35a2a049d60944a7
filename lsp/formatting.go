// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/formatter"
)

// textDocumentFormatting handles textDocument/formatting requests.
// It re-indents the document and returns a single whole-document text
// edit, or nil if no changes are needed.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	v := doc.view()
	if v.content == "" {
		return nil, nil
	}

	formatted, err := formatter.FormatFile([]byte(v.content), uriToPath(v.uri), formatConfig(params.Options))
	if err != nil {
		// Parse error: return nil edits (not an error) so the editor
		// doesn't show an error dialog for incomplete code.
		return nil, nil
	}
	if string(formatted) == v.content {
		return nil, nil
	}

	// Return a single edit replacing the entire document.
	return []protocol.TextEdit{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   offsetToPosition(v.lines, v.content, len(v.content)),
			},
			NewText: string(formatted),
		},
	}, nil
}

// formatConfig reads the editor's tabSize and insertSpaces options.
func formatConfig(opts protocol.FormattingOptions) *formatter.Config {
	cfg := formatter.DefaultConfig()
	switch v := opts[protocol.FormattingOptionTabSize].(type) {
	case float64:
		if v > 0 {
			cfg.IndentSize = int(v)
		}
	case int:
		if v > 0 {
			cfg.IndentSize = v
		}
	}
	if spaces, ok := opts[protocol.FormattingOptionInsertSpaces].(bool); ok {
		cfg.UseTabs = !spaces
	}
	return cfg
}
