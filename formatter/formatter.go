// Copyright © 2024 The ELPS authors

// Package formatter re-indents JavaScript source. The source is parsed so
// that string, template, regexp and JSX text as well as comments are
// known, then every line is indented by bracket depth. Tokens are never
// moved between lines and literal text is left as written.
package formatter

import (
	"bytes"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser"
)

// Format formats JavaScript source read from stdin. The source is parsed
// as a script and, failing that, as a module with JSX enabled. If cfg is
// nil, DefaultConfig() is used.
func Format(source []byte, cfg *Config) ([]byte, error) {
	return FormatFile(source, "<stdin>", cfg)
}

// FormatFile formats JavaScript source, using filename to pick the source
// type and in error messages.
func FormatFile(source []byte, filename string, cfg *Config) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	src := bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	prog, err := parseForFormat(filename, src)
	if err != nil {
		return nil, err
	}
	p := newPrinter(cfg, prog)
	p.run()
	return p.buf.Bytes(), nil
}

func parseForFormat(filename string, src []byte) (*ast.Program, error) {
	prog, err := parser.Parse(filename, src)
	if err == nil {
		return prog, nil
	}
	st := ast.SourceTypeFromPath(filename)
	if st.Module {
		return nil, err
	}
	st.Module = true
	st.JSX = true
	if prog, merr := parser.Parse(filename, src, parser.WithSourceType(st)); merr == nil {
		return prog, nil
	}
	return nil, err
}
