// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for JavaScript source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a parsed program together with its resolved scope model and
// reports diagnostics. The framework handles parsing, semantic analysis,
// running analyzers, inline directives, and formatting output.
//
// Analyzers only read the semantic model, so the Linter runs them
// concurrently over a single *semantic.Semantic.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/astutil"
	"github.com/luthersystems/jsscope/semantic"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name back into a Severity.
func ParseSeverity(str string) (Severity, error) {
	switch str {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	}
	return severityUnset, fmt.Errorf("unknown severity: %q", str)
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	sev, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "no-undef").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer. The program and semantic
// model are shared with the other analyzers of the same file and must not
// be modified.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Program is the parsed file.
	Program *ast.Program

	// Semantic is the resolved scope model of Program.
	Semantic *semantic.Semantic

	// Globals are the names predefined for this file, mapped to whether
	// the program may assign them.
	Globals map[string]bool

	parents     []ast.NodeID
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic covering span.
func (p *Pass) Reportf(span ast.Span, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     p.Position(span),
		Message: fmt.Sprintf(format, args...),
	})
}

// Position converts span into a diagnostic position.
func (p *Pass) Position(span ast.Span) Position {
	return positionOf(p.Program, span)
}

// Parent returns the parent of node, or ast.NoNode for the root. The
// parent table is shared by the analyzers of a file.
func (p *Pass) Parent(node ast.NodeID) ast.NodeID {
	if int(node) >= len(p.parents) {
		return ast.NoNode
	}
	return p.parents[node]
}

func positionOf(prog *ast.Program, span ast.Span) Position {
	start := prog.Location(span.Start)
	end := prog.Location(span.End)
	pos := Position{File: prog.File, Line: start.Line, Col: start.Col}
	if end.Line == start.Line && end.Col > start.Col {
		pos.EndCol = end.Col
	}
	return pos
}

// parentTable maps every node id to its parent.
func parentTable(prog *ast.Program) []ast.NodeID {
	parents := make([]ast.NodeID, prog.Arena.Len())
	astutil.Walk(prog.Arena, prog.Root, func(id, parent ast.NodeID, _ int) bool {
		parents[id] = parent
		return true
	})
	return parents
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Col    int    `json:"col,omitempty"`
	EndCol int    `json:"endCol,omitempty"`
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line:col: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Globals are the predefined names for every file. Nil means the
	// ECMAScript builtins only.
	Globals map[string]bool

	// Workspace holds declarations from other files of the project. Script
	// declarations among them are treated as writable globals.
	Workspace []semantic.ExternalSymbol

	// Analysis configures parsing and semantic analysis.
	Analysis *semantic.Config
}

func (l *Linter) logger() logrus.FieldLogger {
	if l.Analysis == nil || l.Analysis.Logger == nil {
		return logrus.StandardLogger()
	}
	return l.Analysis.Logger
}

func (l *Linter) tracer() trace.Tracer {
	if l.Analysis == nil || l.Analysis.TracerProvider == nil {
		return otel.GetTracerProvider().Tracer("jsscope/lint")
	}
	return l.Analysis.TracerProvider.Tracer("jsscope/lint")
}

// LintFile parses, analyzes, and lints a single source file. Syntax errors
// are returned as errors, not diagnostics.
func (l *Linter) LintFile(ctx context.Context, source []byte, filename string) ([]Diagnostic, error) {
	sem, err := semantic.ParseAndAnalyze(ctx, filename, source, l.Analysis)
	if err != nil {
		return nil, err
	}
	return l.LintSemantic(ctx, sem)
}

// LintSemantic runs the analyzers over an analyzed program. The analyzers
// run concurrently and the diagnostics are returned sorted by position.
func (l *Linter) LintSemantic(ctx context.Context, sem *semantic.Semantic) ([]Diagnostic, error) {
	prog := sem.Program
	ctx, span := l.tracer().Start(ctx, "lint", trace.WithAttributes(
		attribute.String("file", prog.File),
		attribute.Int("analyzers", len(l.Analyzers)),
	))
	defer span.End()

	dirs := parseDirectives(prog, l.knownChecks())
	globals := l.fileGlobals(dirs)
	parents := parentTable(prog)

	passes := make([]*Pass, len(l.Analyzers))
	g, ctx := errgroup.WithContext(ctx)
	for i, analyzer := range l.Analyzers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pass := &Pass{
				Analyzer: analyzer,
				Program:  prog,
				Semantic: sem,
				Globals:  globals,
				parents:  parents,
			}
			if err := analyzer.Run(pass); err != nil {
				return fmt.Errorf("%s: analyzer %s: %w", prog.File, analyzer.Name, err)
			}
			passes[i] = pass
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	var all []Diagnostic
	for _, pass := range passes {
		all = append(all, pass.diagnostics...)
	}
	all = dirs.filter(all)
	for _, bad := range dirs.invalid {
		all = append(all, Diagnostic{
			Pos:      positionOf(prog, bad.span),
			Message:  bad.msg,
			Analyzer: "directive",
			Severity: SeverityWarning,
		})
	}
	SortDiagnostics(all)

	span.SetAttributes(attribute.Int("diagnostics", len(all)))
	l.logger().WithFields(logrus.Fields{
		"file":        prog.File,
		"phase":       "lint",
		"diagnostics": len(all),
	}).Debug("lint complete")
	return all, nil
}

// FileResult is the lint outcome for one file.
type FileResult struct {
	Path        string
	Diagnostics []Diagnostic
	Err         error
}

// LintFiles analyzes files concurrently and lints each one. Per-file parse
// failures are reported in FileResult.Err.
func (l *Linter) LintFiles(ctx context.Context, files []semantic.File) ([]FileResult, error) {
	analyzed, err := semantic.AnalyzeFiles(ctx, files, l.Analysis)
	if err != nil {
		return nil, err
	}
	results := make([]FileResult, len(analyzed))
	for i, res := range analyzed {
		results[i] = FileResult{Path: res.Path, Err: res.Err}
		if res.Err != nil {
			continue
		}
		diags, err := l.LintSemantic(ctx, res.Semantic)
		if err != nil {
			return nil, err
		}
		results[i].Diagnostics = diags
	}
	return results, nil
}

// fileGlobals merges the linter globals, the script declarations of the
// workspace, and the file's own global directives.
func (l *Linter) fileGlobals(dirs *directives) map[string]bool {
	base := l.Globals
	if base == nil {
		base, _ = semantic.Globals()
	}
	if len(l.Workspace) == 0 && len(dirs.globals) == 0 && len(dirs.off) == 0 {
		return base
	}
	out := make(map[string]bool, len(base)+len(l.Workspace)+len(dirs.globals))
	for name, w := range base {
		out[name] = w
	}
	for _, sym := range l.Workspace {
		if !sym.Module {
			out[sym.Name] = !sym.Flags.IsConst()
		}
	}
	for name, w := range dirs.globals {
		out[name] = w
	}
	for _, name := range dirs.off {
		delete(out, name)
	}
	return out
}

func (l *Linter) knownChecks() map[string]bool {
	known := make(map[string]bool)
	for _, a := range DefaultAnalyzers() {
		known[a.Name] = true
	}
	for _, a := range l.Analyzers {
		known[a.Name] = true
	}
	return known
}

// SortDiagnostics orders diagnostics by file, line, column, then analyzer.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return diags[i].Analyzer < diags[j].Analyzer
	})
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if diags == nil {
		diags = []Diagnostic{}
	}
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerNoUndef,
		AnalyzerNoUnusedVars,
		AnalyzerNoRedeclare,
		AnalyzerNoUseBeforeDefine,
		AnalyzerNoGlobalAssign,
		AnalyzerNoShadow,
		AnalyzerNoConstAssign,
		AnalyzerNoUnusedLabels,
		AnalyzerNoClassAssign,
		AnalyzerNoFuncAssign,
		AnalyzerNoUndefPrivate,
	}
}

// LookupAnalyzers returns the default analyzers named in names, in the
// order given. Unknown names are an error.
func LookupAnalyzers(names []string) ([]*Analyzer, error) {
	byName := make(map[string]*Analyzer)
	for _, a := range DefaultAnalyzers() {
		byName[a.Name] = a
	}
	var out []*Analyzer
	var unknown []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if a, ok := byName[name]; ok {
			out = append(out, a)
		} else if name != "" {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown check: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
