// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/diagnostic"
)

func TestAnnotated(t *testing.T) {
	d := Diagnostic{
		Pos:      Position{File: "a.js", Line: 2, Col: 5, EndCol: 8},
		Message:  "'foo' is not defined",
		Analyzer: "no-undef",
		Severity: SeverityError,
		Notes:    []string{"did you mean 'fob'?"},
	}
	a := d.Annotated()
	assert.Equal(t, diagnostic.SeverityError, a.Severity)
	assert.Equal(t, "no-undef", a.Code)
	require.Len(t, a.Spans, 1)
	assert.Equal(t, diagnostic.Span{File: "a.js", Line: 2, Col: 5, EndCol: 8}, a.Spans[0])
	require.Len(t, a.Notes, 2)
	assert.Equal(t, "did you mean 'fob'?", a.Notes[0])
	assert.Contains(t, a.Notes[1], "jsscope-disable-next-line no-undef")
	assert.Len(t, d.Notes, 1, "the original notes are not modified")

	info := Diagnostic{Pos: Position{File: "a.js"}, Severity: SeverityInfo}.Annotated()
	assert.Equal(t, diagnostic.SeverityNote, info.Severity)
	assert.Empty(t, info.Spans)
	assert.Empty(t, info.Notes)
}

func TestAnnotateRenders(t *testing.T) {
	src := "let x = 1;\nfoo(x);\n"
	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.LintFile(context.Background(), []byte(src), "a.js")
	require.NoError(t, err)
	require.Len(t, diags, 1)

	r := &diagnostic.Renderer{
		Color:        diagnostic.ColorNever,
		SourceReader: func(string) ([]byte, error) { return []byte(src), nil },
	}
	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, Annotate(diags)))
	out := buf.String()
	assert.Contains(t, out, "error[no-undef]: 'foo' is not defined")
	assert.Contains(t, out, "foo(x);")
	assert.Contains(t, out, "^^^")
}
