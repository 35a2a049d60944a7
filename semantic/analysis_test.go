// Copyright © 2024 The ELPS authors

package semantic_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/jstest"
	"github.com/luthersystems/jsscope/parser"
	"github.com/luthersystems/jsscope/semantic"
)

func TestAnalyze_InvariantError(t *testing.T) {
	a := ast.NewArena(4)
	lit := a.Add(ast.Node{Kind: ast.NumericLiteral, Name: "1"})
	decl := a.Add(ast.Node{Kind: ast.VariableDeclarator, A: lit})
	vd := a.Add(ast.Node{Kind: ast.VariableDeclaration, Op: "let", List: []ast.NodeID{decl}})
	root := a.Add(ast.Node{Kind: ast.ProgramNode, List: []ast.NodeID{vd}})
	prog := &ast.Program{Arena: a, Root: root, File: "bad.js"}

	sem, err := semantic.Analyze(context.Background(), prog, &semantic.Config{Logger: jstest.NewLogrus(t)})
	require.Error(t, err)
	assert.Nil(t, sem)
	assert.True(t, semantic.IsInvariantError(err))
	assert.Contains(t, err.Error(), "bad.js: semantic: declare pattern:")
}

func TestBuilder_Reuse(t *testing.T) {
	prog, err := parser.Parse("test.js", []byte("x"))
	require.NoError(t, err)
	b := semantic.NewBuilder(prog)
	b.Build()
	assert.PanicsWithError(t, "semantic: build: builder reused", func() { b.Build() })
}

func TestParseAndAnalyze_SyntaxError(t *testing.T) {
	_, err := semantic.ParseAndAnalyze(context.Background(), "test.js", []byte("let = ;"), nil)
	require.Error(t, err)
	_, ok := parser.IsSyntaxError(err)
	assert.True(t, ok)
	assert.False(t, semantic.IsInvariantError(err))
}

func TestParseAndAnalyze_SourceTypeOverride(t *testing.T) {
	st := ast.SourceType{AlwaysStrict: true}
	sem, err := semantic.ParseAndAnalyze(context.Background(), "test.js", []byte("x"), &semantic.Config{SourceType: &st})
	require.NoError(t, err)
	assert.True(t, sem.RootScope().Flags.IsStrict())
}

func TestParseAndAnalyze_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, err := semantic.ParseAndAnalyze(context.Background(), "test.js", []byte("var a = b"), &semantic.Config{
		Logger:         jstest.NewLogrus(t),
		TracerProvider: tp,
	})
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "parse", spans[0].Name)
	assert.Equal(t, "bind", spans[1].Name)
	assert.Equal(t, spans[0].SpanContext.TraceID(), spans[1].SpanContext.TraceID())
	assert.Equal(t, spans[0].SpanContext.SpanID(), spans[1].Parent.SpanID())
	attrs := map[string]int64{}
	for _, kv := range spans[1].Attributes {
		if kv.Key != "file" {
			attrs[string(kv.Key)] = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, map[string]int64{"scopes": 1, "symbols": 1, "references": 1}, attrs)
}

func TestAnalyzeFiles_Deterministic(t *testing.T) {
	var files []semantic.File
	for i := 0; i < 16; i++ {
		src := fmt.Sprintf("var v%d = %d; function f%d(a) { { let b = a + v%d; return b + g%d } }", i, i, i, i, i)
		files = append(files, semantic.File{Path: fmt.Sprintf("f%02d.js", i), Source: []byte(src)})
	}
	files = append(files, semantic.File{Path: "broken.js", Source: []byte("function (")})

	run := func(jobs int) []string {
		results, err := semantic.AnalyzeFiles(context.Background(), files, &semantic.Config{
			Jobs:   jobs,
			Logger: jstest.NewLogrus(t),
		})
		require.NoError(t, err)
		require.Len(t, results, len(files))
		var dumps []string
		for i, res := range results {
			assert.Equal(t, files[i].Path, res.Path)
			if res.Err != nil {
				dumps = append(dumps, "error")
				continue
			}
			jstest.AssertInvariants(t, res.Semantic)
			dumps = append(dumps, semantic.DumpString(res.Semantic))
		}
		return dumps
	}
	serial := run(1)
	assert.Equal(t, "error", serial[len(serial)-1])
	assert.Equal(t, serial, run(4))
	assert.Equal(t, serial, run(0))
}

func TestAnalyzeFiles_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := semantic.AnalyzeFiles(ctx, []semantic.File{{Path: "a.js", Source: []byte("a")}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGlobals(t *testing.T) {
	g, err := semantic.Globals()
	require.NoError(t, err)
	assert.Contains(t, g, "Array")
	assert.NotContains(t, g, "window")

	g, err = semantic.Globals(semantic.EnvBrowser, semantic.EnvNode)
	require.NoError(t, err)
	assert.Contains(t, g, "window")
	assert.Contains(t, g, "process")

	_, err = semantic.Globals("mars")
	assert.Error(t, err)
	assert.Contains(t, semantic.Environments(), semantic.EnvCommonJS)
}

func BenchmarkAnalyze(b *testing.B) {
	src := []byte(`
function outer(items) {
  const seen = new Set();
  for (const item of items) {
    if (seen.has(item.id)) continue;
    seen.add(item.id);
    class Box { #v; constructor(v) { this.#v = v } get v() { return this.#v } }
    items.push(new Box(item));
  }
  return seen;
}`)
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		prog, err := parser.Parse("bench.js", src)
		if err != nil {
			b.Fatal(err)
		}
		semantic.NewBuilder(prog).Build()
	}
}
