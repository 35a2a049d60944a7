// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"strings"

	parsec "github.com/prataprc/goparsec"

	"github.com/luthersystems/jsscope/ast"
)

// Inline directives are read from comments:
//
//	/* global name, other:writable, gone:off */
//	// jsscope-disable-line no-undef
//	// jsscope-disable-next-line
//	/* jsscope-disable no-shadow */ ... /* jsscope-enable no-shadow */
//	// nolint:no-unused-vars
//
// Global directives are only honored in block comments. A directive without
// check names applies to every check.

// suppression silences diagnostics on lines [from, to].
type suppression struct {
	from, to int
	checks   map[string]bool // nil means all checks
}

func (s suppression) matches(d Diagnostic) bool {
	if d.Pos.Line < s.from || d.Pos.Line > s.to {
		return false
	}
	return s.checks == nil || s.checks[d.Analyzer]
}

type badDirective struct {
	span ast.Span
	msg  string
}

type directives struct {
	globals      map[string]bool
	off          []string
	suppressions []suppression
	invalid      []badDirective
}

func (d *directives) filter(diags []Diagnostic) []Diagnostic {
	if len(d.suppressions) == 0 {
		return diags
	}
	var out []Diagnostic
	for _, diag := range diags {
		if !d.suppressed(diag) {
			out = append(out, diag)
		}
	}
	return out
}

func (d *directives) suppressed(diag Diagnostic) bool {
	for _, s := range d.suppressions {
		if s.matches(diag) {
			return true
		}
	}
	return false
}

const (
	kwGlobal          = "GLOBAL"
	kwDisableLine     = "DISABLELINE"
	kwDisableNextLine = "DISABLENEXTLINE"
	kwDisable         = "DISABLE"
	kwEnable          = "ENABLE"
	kwNolint          = "NOLINT"
	tokName           = "NAME"
	tokValue          = "VALUE"
	tokCheck          = "CHECK"
)

var (
	directiveKeyword parsec.Parser
	directiveGrammar parsec.Parser
)

func init() {
	directiveKeyword, directiveGrammar = newDirectiveParser()
}

func newDirectiveParser() (keyword, grammar parsec.Parser) {
	global := parsec.Token(`globals?\b`, kwGlobal)
	// Longer keywords come first; OrdChoice takes the first match.
	disableNextLine := parsec.Token(`jsscope-disable-next-line\b`, kwDisableNextLine)
	disableLine := parsec.Token(`jsscope-disable-line\b`, kwDisableLine)
	disable := parsec.Token(`jsscope-disable\b`, kwDisable)
	enable := parsec.Token(`jsscope-enable\b`, kwEnable)
	nolint := parsec.Token(`nolint\b`, kwNolint)

	comma := parsec.Atom(",", "COMMA")
	colon := parsec.Atom(":", "COLON")
	name := parsec.Token(`[\pL$_][\pL\pN$_]*`, tokName)
	value := parsec.Token(`[a-z]+`, tokValue)
	check := parsec.Token(`[a-z][a-z0-9-]*`, tokCheck)

	entry := parsec.And(nil, name, parsec.Maybe(nil, parsec.And(nil, colon, value)))
	entries := parsec.Kleene(nil, entry, comma)
	checks := parsec.Kleene(nil, check, comma)

	suppressKw := parsec.OrdChoice(nil, disableNextLine, disableLine, disable, enable)
	keyword = parsec.OrdChoice(nil, global, suppressKw, nolint)
	grammar = parsec.OrdChoice(nil,
		parsec.And(nil, global, entries),
		parsec.And(nil, suppressKw, checks),
		parsec.And(nil, nolint, parsec.Maybe(nil, parsec.And(nil, colon, checks))),
	)
	return keyword, grammar
}

// terminals flattens a parse result into its terminal tokens.
func terminals(node parsec.ParsecNode) []*parsec.Terminal {
	switch n := node.(type) {
	case *parsec.Terminal:
		return []*parsec.Terminal{n}
	case []parsec.ParsecNode:
		var out []*parsec.Terminal
		for _, c := range n {
			out = append(out, terminals(c)...)
		}
		return out
	}
	return nil
}

// directive is one parsed comment directive.
type directive struct {
	keyword string
	globals [][2]string // name, value
	checks  []string
}

// parseDirective parses the body of a comment. It returns nil, nil when
// the comment is not a directive. Global directives need a block comment.
func parseDirective(body string, block bool) (*directive, error) {
	text := []byte(strings.TrimSpace(body))
	if len(text) == 0 {
		return nil, nil
	}
	kw, _ := directiveKeyword(parsec.NewScanner(text))
	if kw == nil {
		return nil, nil
	}
	if kws := terminals(kw); len(kws) == 0 || (kws[0].Name == kwGlobal && !block) {
		return nil, nil
	}
	node, rest := directiveGrammar(parsec.NewScanner(text))
	if node == nil {
		return nil, fmt.Errorf("malformed directive")
	}
	if _, rest = rest.SkipWS(); !rest.Endof() {
		b, _ := rest.Match(`.{1,16}`)
		return nil, fmt.Errorf("malformed directive near %q", b)
	}
	terms := terminals(node)
	d := &directive{keyword: terms[0].Name}
	for i := 1; i < len(terms); i++ {
		switch t := terms[i]; t.Name {
		case tokName:
			g := [2]string{t.Value, "readonly"}
			if i+2 < len(terms) && terms[i+1].Name == "COLON" {
				g[1] = terms[i+2].Value
				i += 2
			}
			d.globals = append(d.globals, g)
		case tokCheck:
			d.checks = append(d.checks, t.Value)
		}
	}
	return d, nil
}

// parseDirectives collects the directives of every comment in prog. Check
// names outside known are reported as invalid.
func parseDirectives(prog *ast.Program, known map[string]bool) *directives {
	dirs := &directives{globals: make(map[string]bool)}
	open := make(map[string]int) // check ("" for all) -> first disabled line
	lastLine := prog.Lines.LineCount()
	for _, c := range prog.Comments {
		d, err := parseDirective(c.Body(), c.Block)
		if err != nil {
			dirs.invalid = append(dirs.invalid, badDirective{c.Span, err.Error()})
			continue
		}
		if d == nil {
			continue
		}
		for _, name := range d.checks {
			if !known[name] {
				dirs.invalid = append(dirs.invalid, badDirective{c.Span, fmt.Sprintf("unknown check %q in directive", name)})
			}
		}
		startLine := prog.Location(c.Span.Start).Line
		endLine := prog.Location(c.Span.End).Line
		switch d.keyword {
		case kwGlobal:
			for _, g := range d.globals {
				switch g[1] {
				case "writable", "writeable", "true":
					dirs.globals[g[0]] = true
				case "readonly", "false":
					dirs.globals[g[0]] = false
				case "off":
					dirs.off = append(dirs.off, g[0])
				default:
					dirs.invalid = append(dirs.invalid, badDirective{c.Span, fmt.Sprintf("invalid global value %q for %s", g[1], g[0])})
				}
			}
		case kwDisableLine, kwNolint:
			dirs.suppressions = append(dirs.suppressions, suppression{startLine, endLine, checkSet(d.checks)})
		case kwDisableNextLine:
			dirs.suppressions = append(dirs.suppressions, suppression{endLine + 1, endLine + 1, checkSet(d.checks)})
		case kwDisable:
			for _, name := range keysOrAll(d.checks) {
				if _, ok := open[name]; !ok {
					open[name] = startLine
				}
			}
		case kwEnable:
			for _, name := range keysOrAll(d.checks) {
				if from, ok := open[name]; ok {
					dirs.suppressions = append(dirs.suppressions, suppression{from, endLine, checkSet(nonEmpty(name))})
					delete(open, name)
				}
			}
		}
	}
	for name, from := range open {
		dirs.suppressions = append(dirs.suppressions, suppression{from, lastLine, checkSet(nonEmpty(name))})
	}
	return dirs
}

func checkSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func keysOrAll(names []string) []string {
	if len(names) == 0 {
		return []string{""}
	}
	return names
}

func nonEmpty(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}
