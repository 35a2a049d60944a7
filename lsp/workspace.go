// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"os"
	"sort"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser/token"
	"github.com/luthersystems/jsscope/semantic"
)

// workspaceIndex holds the top level declarations of every workspace file
// and, per file, the uses of names that scripts share as globals.
type workspaceIndex struct {
	mu      sync.RWMutex
	symbols map[string][]semantic.ExternalSymbol
	refs    map[string][]semantic.FileReference
	cfg     *semantic.Config
}

func newWorkspaceIndex() *workspaceIndex {
	return &workspaceIndex{
		symbols: make(map[string][]semantic.ExternalSymbol),
		refs:    make(map[string][]semantic.FileReference),
	}
}

// build analyzes every source file under root.
func (w *workspaceIndex) build(ctx context.Context, root string, cfg *semantic.Config) error {
	files, err := semantic.CollectFiles(root)
	if err != nil {
		return err
	}
	results, err := semantic.AnalyzeFiles(ctx, files, cfg)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg = cfg
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		w.symbols[res.Path] = semantic.ExtractSymbols(res.Semantic)
	}
	names := w.globalNamesLocked()
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		w.refs[res.Path] = semantic.ExtractFileRefs(res.Semantic, names)
	}
	return nil
}

// update re-indexes one file. A file that no longer parses keeps its
// previous entries.
func (w *workspaceIndex) update(ctx context.Context, path string, src []byte) error {
	w.mu.RLock()
	cfg := w.cfg
	w.mu.RUnlock()
	sem, err := semantic.ParseAndAnalyze(ctx, path, src, cfg)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.symbols[path] = semantic.ExtractSymbols(sem)
	w.refs[path] = semantic.ExtractFileRefs(sem, w.globalNamesLocked())
	return nil
}

// globalNamesLocked returns the names declared at the top level of
// scripts. The caller holds w.mu.
func (w *workspaceIndex) globalNamesLocked() map[string]bool {
	names := make(map[string]bool)
	for _, syms := range w.symbols {
		for _, sym := range syms {
			if !sym.Module {
				names[sym.Name] = true
			}
		}
	}
	return names
}

// Symbols returns every indexed declaration sorted by file then name.
func (w *workspaceIndex) Symbols() []semantic.ExternalSymbol {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []semantic.ExternalSymbol
	for _, syms := range w.symbols {
		out = append(out, syms...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Globals returns the script declarations of name outside exclude.
func (w *workspaceIndex) Globals(name, exclude string) []semantic.ExternalSymbol {
	var out []semantic.ExternalSymbol
	for _, sym := range w.Symbols() {
		if sym.Name == name && !sym.Module && sym.File != exclude {
			out = append(out, sym)
		}
	}
	return out
}

// Refs returns the uses of the shared global name outside exclude.
func (w *workspaceIndex) Refs(name, exclude string) []semantic.FileReference {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []semantic.FileReference
	for file, refs := range w.refs {
		if file == exclude {
			continue
		}
		for _, r := range refs {
			if r.Name == name {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}

// updateFileRefs re-indexes a saved document and refreshes the linter's
// view of the workspace.
func (s *Server) updateFileRefs(uri string) {
	doc := s.docs.Get(uri)
	if doc == nil || s.rootPath == "" {
		return
	}
	v := doc.view()
	path := uriToPath(uri)
	if err := s.index.update(context.Background(), path, []byte(v.content)); err != nil {
		s.log.WithError(err).WithField("file", path).Debug("workspace update skipped")
		return
	}
	s.linterMu.Lock()
	cp := *s.linter
	cp.Workspace = s.index.Symbols()
	s.linter = &cp
	s.linterMu.Unlock()
}

// location converts a span of any workspace file into an LSP location,
// preferring the content of an open document over the file on disk.
func (s *Server) location(path string, span ast.Span) (protocol.Location, bool) {
	uri := pathToURI(path)
	var src string
	if doc := s.docs.Get(uri); doc != nil {
		src = doc.view().content
	} else {
		data, err := os.ReadFile(path) //nolint:gosec // workspace files
		if err != nil {
			return protocol.Location{}, false
		}
		src = string(data)
	}
	if span.End > len(src) {
		return protocol.Location{}, false
	}
	lines := token.NewLineIndex([]byte(src))
	return protocol.Location{URI: uri, Range: spanRange(lines, src, span)}, true
}
