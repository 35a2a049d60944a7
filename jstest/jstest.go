// Copyright © 2024 The ELPS authors

// Package jstest provides helpers shared by the jsscope test suites.
package jstest

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/parser"
	"github.com/luthersystems/jsscope/semantic"
)

// Analyze parses src as file and returns its semantic model, failing the
// test on any error.
func Analyze(t testing.TB, file, src string) *semantic.Semantic {
	t.Helper()
	sem, err := semantic.ParseAndAnalyze(context.Background(), file, []byte(src), &semantic.Config{
		Logger: NewLogrus(t),
	})
	require.NoError(t, err)
	return sem
}

// BenchmarkAnalyze parses and analyzes the file at path b.N times.
func BenchmarkAnalyze(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			prog, err := parser.Parse(path, buf)
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
			semantic.NewBuilder(prog).Build()
		}
	}
}
