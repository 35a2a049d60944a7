// Copyright © 2024 The ELPS authors

package semantic_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/jsscope/jstest"
	"github.com/luthersystems/jsscope/semantic"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, src := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	}
}

func symbolNames(syms []semantic.ExternalSymbol) []string {
	var names []string
	for _, s := range syms {
		names = append(names, filepath.Base(s.File)+":"+s.Name)
	}
	return names
}

func TestScanWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js":                 "var shared = 1; function helper() {}",
		"b.mjs":                "import dep from 'dep'; export const x = dep; const y = 2;",
		"broken.js":            "function (",
		"notes.txt":            "var ignored",
		"node_modules/c.js":    "var vendored",
		".hidden/d.js":         "var hidden",
		"lib/nested/helper.js": "let nested = shared",
	})

	cache, err := semantic.OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	cfg := &semantic.Config{Logger: jstest.NewLogrus(t), Cache: cache}

	syms, err := semantic.ScanWorkspace(context.Background(), dir, cfg)
	require.NoError(t, err)
	want := []string{"a.js:helper", "a.js:shared", "b.mjs:x", "helper.js:nested"}
	assert.Equal(t, want, symbolNames(syms))
	assert.False(t, syms[0].Module)
	assert.True(t, syms[2].Module)
	assert.True(t, syms[0].Flags.Has(semantic.SymbolFunction))

	// A second scan is served from the cache and must agree.
	again, err := semantic.ScanWorkspace(context.Background(), dir, cfg)
	require.NoError(t, err)
	if diff := cmp.Diff(syms, again); diff != "" {
		t.Errorf("cached scan mismatch (-first +second):\n%s", diff)
	}
}

func TestExtractFileRefs(t *testing.T) {
	sem := jstest.Analyze(t, "use.js", "helper(shared); shared = 2; other()")
	refs := semantic.ExtractFileRefs(sem, map[string]bool{"helper": true, "shared": true})
	require.Len(t, refs, 3)
	assert.Equal(t, "helper", refs[0].Name)
	assert.Equal(t, "shared", refs[1].Name)
	assert.Equal(t, semantic.ReferenceWrite, refs[2].Flags)
	assert.Less(t, refs[1].Span.Start, refs[2].Span.Start)

	// A script's own top level declarations are shared too.
	sem = jstest.Analyze(t, "decl.js", "var shared = 1; function f() { return shared; }")
	refs = semantic.ExtractFileRefs(sem, map[string]bool{"shared": true})
	require.Len(t, refs, 1)
	assert.Equal(t, "decl.js", refs[0].File)

	sem = jstest.Analyze(t, "decl.mjs", "var shared = 1; shared++;")
	assert.Empty(t, semantic.ExtractFileRefs(sem, map[string]bool{"shared": true}))
}

func TestDiskCache(t *testing.T) {
	cache, err := semantic.OpenDiskCache(t.TempDir())
	require.NoError(t, err)
	key := semantic.DigestOf("a.js", []byte("var a"))

	_, ok, err := cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	syms := []semantic.ExternalSymbol{{Name: "a", Flags: semantic.SymbolFunctionScopedVariable, File: "a.js"}}
	require.NoError(t, cache.Put(key, syms))
	got, ok, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, syms, got)

	assert.NotEqual(t, key, semantic.DigestOf("b.js", []byte("var a")))

	require.NoError(t, cache.Clear())
	_, ok, err = cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	sem := jstest.Analyze(t, "test.js", "let a = 1; function f(b) { return a + b + c }")
	snap := sem.Snapshot()
	require.Len(t, snap.Scopes, 2)
	assert.Equal(t, []string{"a", "f"}, snap.Scopes[0].Bindings)
	assert.Equal(t, []string{"c"}, snap.Unresolved)

	var buf bytes.Buffer
	require.NoError(t, semantic.WriteSnapshot(&buf, snap))
	back, err := semantic.ReadSnapshot(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, back); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	_, err = semantic.ReadSnapshot(bytes.NewReader([]byte{0xc0}))
	assert.Error(t, err)
}
