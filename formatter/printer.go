// Copyright © 2024 The ELPS authors

package formatter

import (
	"bytes"
	"strings"

	"github.com/luthersystems/jsscope/ast"
)

// byteClass tells the printer how a source byte may be treated.
type byteClass uint8

const (
	classCode         byteClass = iota
	classVerbatim               // string, template, regexp and JSX text
	classBlockComment           // /* ... */
	classLineComment            // // ...
)

// frame is an open bracket.
type frame struct {
	outer      int // indent of the line holding the opener
	inner      int // indent of lines inside the brackets
	line       int
	switchBody bool
}

type printer struct {
	cfg   *Config
	src   []byte
	class []byteClass

	// switchBraces holds the offsets of the '{' that open switch bodies.
	switchBraces map[int]bool

	buf           bytes.Buffer
	stack         []frame
	blank         int  // pending blank lines
	wrote         bool // a non-blank line has been written
	commentIndent string
}

func newPrinter(cfg *Config, prog *ast.Program) *printer {
	p := &printer{
		cfg:          cfg,
		src:          prog.Source,
		class:        make([]byteClass, len(prog.Source)),
		switchBraces: make(map[int]bool),
	}
	p.classify(prog)
	return p
}

func (p *printer) mark(span ast.Span, c byteClass) {
	end := min(span.End, len(p.class))
	for i := max(span.Start, 0); i < end; i++ {
		p.class[i] = c
	}
}

func (p *printer) classify(prog *ast.Program) {
	if bytes.HasPrefix(p.src, []byte("#!")) {
		end := bytes.IndexByte(p.src, '\n')
		if end < 0 {
			end = len(p.src)
		}
		p.mark(ast.Span{End: end}, classVerbatim)
	}
	var switches []ast.NodeID
	prog.Arena.Each(func(id ast.NodeID, n *ast.Node) {
		switch n.Kind {
		case ast.StringLiteral, ast.TemplateLiteral, ast.RegExpLiteral,
			ast.JSXElement, ast.JSXFragment:
			p.mark(n.Span, classVerbatim)
		case ast.SwitchStatement:
			switches = append(switches, id)
		}
	})
	for _, c := range prog.Comments {
		if c.Block {
			p.mark(c.Span, classBlockComment)
		} else {
			p.mark(c.Span, classLineComment)
		}
	}
	for _, id := range switches {
		n := prog.Node(id)
		from := n.Span.Start
		if n.A != ast.NoNode {
			from = prog.Node(n.A).Span.End
		}
		for i := from; i < n.Span.End; i++ {
			if p.src[i] == '{' && p.class[i] == classCode {
				p.switchBraces[i] = true
				break
			}
		}
	}
}

// run re-indents every line of the source.
func (p *printer) run() {
	lineNo := 0
	for start := 0; start < len(p.src); lineNo++ {
		end := bytes.IndexByte(p.src[start:], '\n')
		if end < 0 {
			end = len(p.src)
		} else {
			end += start
		}
		p.line(lineNo, start, end)
		start = end + 1
	}
}

// continues reports whether the line at start begins inside a token or
// comment opened on an earlier line.
func (p *printer) continues(start int, c byteClass) bool {
	return start > 0 && p.class[start-1] == c && start < len(p.src) && p.class[start] == c
}

func (p *printer) line(lineNo, start, end int) {
	text := p.src[start:end]
	first := start + len(text) - len(bytes.TrimLeft(text, " \t"))

	var out string
	raw := false
	level := p.level(first, end)
	switch {
	case p.continues(start, classVerbatim):
		out, raw = string(text), true
	case p.continues(start, classBlockComment):
		content := string(p.src[first:end])
		if strings.HasPrefix(content, "*") {
			out = p.commentIndent + " " + content
		} else {
			out = string(text)
		}
		raw = true
	case first == end:
		out = ""
	default:
		out = p.cfg.indent(level) + string(p.src[first:end])
	}
	if end == start || p.class[end-1] != classVerbatim {
		out = strings.TrimRight(out, " \t")
	}
	p.scan(lineNo, first, end, level)
	p.emit(out, raw)
}

// level computes the indent of a line whose first non-blank byte is at
// first.
func (p *printer) level(first, end int) int {
	if len(p.stack) == 0 {
		return 0
	}
	top := p.stack[len(p.stack)-1]
	if first == end {
		return top.inner
	}
	if p.class[first] == classCode && isCloser(p.src[first]) {
		return top.outer
	}
	level := top.inner
	content := string(p.src[first:end])
	if top.switchBody && p.cfg.IndentCaseBodies && !isCaseLabel(content) {
		level += p.cfg.step()
	}
	if p.class[first] == classCode && isContinuation(content) {
		level += p.cfg.step()
	}
	return level
}

// scan updates the bracket stack with the code bytes of a line.
func (p *printer) scan(lineNo, from, end, level int) {
	for i := from; i < end; i++ {
		c := p.class[i]
		if c == classBlockComment && (i == 0 || p.class[i-1] != classBlockComment) {
			p.commentIndent = p.cfg.indent(level)
		}
		if c != classCode {
			continue
		}
		switch ch := p.src[i]; {
		case ch == '(' || ch == '[' || ch == '{':
			inner := level + p.cfg.step()
			if n := len(p.stack); n > 0 && p.stack[n-1].line == lineNo {
				inner = p.stack[n-1].inner
			}
			p.stack = append(p.stack, frame{
				outer:      level,
				inner:      inner,
				line:       lineNo,
				switchBody: p.switchBraces[i],
			})
		case isCloser(ch):
			if len(p.stack) > 0 {
				p.stack = p.stack[:len(p.stack)-1]
			}
		}
	}
}

// emit writes one output line. Blank lines are held back so that runs can
// be collapsed; raw lines belong to a literal or comment and are always
// written.
func (p *printer) emit(line string, raw bool) {
	if line == "" && !raw {
		p.blank++
		return
	}
	if p.wrote {
		for n := min(p.blank, p.cfg.MaxBlankLines); n > 0; n-- {
			p.buf.WriteByte('\n')
		}
	}
	p.blank = 0
	p.wrote = true
	p.buf.WriteString(line)
	p.buf.WriteByte('\n')
}

func isCloser(ch byte) bool {
	return ch == ')' || ch == ']' || ch == '}'
}
