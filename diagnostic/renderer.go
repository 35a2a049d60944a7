// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Renderer formats diagnostics as annotated source snippets:
//
//	error[no-undef]: 'fo' is not defined
//	  --> app.js:3:5
//	   |
//	 3 |  if (fo) {
//	   |      ^^ did you mean foo?
//	   |
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	// TabWidth is the number of columns a tab expands to. Zero means 4.
	TabWidth int

	sources map[string][][]byte
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := newPalette(r.Color.Enabled(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	r.writeHeader(ew, d, p)
	for _, span := range d.Spans {
		r.writeSpan(ew, span, d.Severity, p)
	}
	for _, note := range d.Notes {
		ew.printf("   %s note: %s\n", p.note("="), note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	sev := d.Severity.String()
	if d.Code != "" {
		sev += "[" + d.Code + "]"
	}
	ew.printf("%s%s %s\n", p.severity(d.Severity)(sev), p.bold(":"), p.bold(d.Message))
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, sev Severity, p palette) {
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	ew.printf("  %s %s\n", p.gutter("-->"), loc)

	source, ok := r.sourceLine(span.File, span.Line)
	if !ok {
		ew.printf("   %s\n", p.gutter("|"))
		return
	}

	lineStr := fmt.Sprint(span.Line)
	pad := strings.Repeat(" ", len(lineStr))
	ew.printf(" %s\n", p.gutter(pad+" |"))
	ew.printf(" %s  %s\n", p.gutter(lineStr+" |"), r.expandTabs(source))

	col := max(span.Col, 1)
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = detectEndCol(source, col)
	}
	endCol = max(endCol, col+1)

	before := prefixRunes(source, col-1)
	marked := prefixRunes(source[len(before):], endCol-col)
	underPad := strings.Repeat(" ", r.displayWidth(before))
	underline := strings.Repeat("^", max(r.displayWidth(marked), 1))

	label := ""
	if span.Label != "" {
		label = " " + p.severity(sev)(span.Label)
	}
	ew.printf(" %s  %s%s%s\n", p.gutter(pad+" |"), underPad, p.severity(sev)(underline), label)
	ew.printf(" %s\n", p.gutter(pad+" |"))
}

// sourceLine returns the text of a 1-based line. Files are read once per
// Renderer.
func (r *Renderer) sourceLine(file string, line int) (string, bool) {
	if line <= 0 || file == "" {
		return "", false
	}
	lines, ok := r.sources[file]
	if !ok {
		reader := r.SourceReader
		if reader == nil {
			reader = os.ReadFile
		}
		data, err := reader(file)
		if err == nil {
			lines = bytes.Split(data, []byte("\n"))
		}
		if r.sources == nil {
			r.sources = make(map[string][][]byte)
		}
		r.sources[file] = lines
	}
	if line > len(lines) {
		return "", false
	}
	return strings.TrimRight(string(lines[line-1]), "\r"), true
}

// detectEndCol finds the end of the token starting at col: an identifier,
// a private name, a number, or a single character.
func detectEndCol(source string, col int) int {
	start := len(prefixRunes(source, col-1))
	if start >= len(source) {
		return col + 1
	}
	end := start
	first, size := utf8.DecodeRuneInString(source[end:])
	if !isIdentRune(first) && first != '#' {
		return col + 1
	}
	end += size
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if !isIdentRune(ch) {
			break
		}
		end += size
	}
	return col + utf8.RuneCountInString(source[start:end])
}

func isIdentRune(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

func (r *Renderer) tabWidth() int {
	if r.TabWidth <= 0 {
		return 4
	}
	return r.TabWidth
}

func (r *Renderer) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", r.tabWidth()))
}

// displayWidth returns the number of columns s occupies once tabs are
// expanded.
func (r *Renderer) displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += r.tabWidth()
		} else {
			w++
		}
	}
	return w
}
