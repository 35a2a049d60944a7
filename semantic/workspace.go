// Copyright © 2024 The ELPS authors

package semantic

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/luthersystems/jsscope/ast"
)

// ExternalSymbol is a top level declaration found in another file of the
// workspace.
type ExternalSymbol struct {
	Name  string
	Flags SymbolFlags
	File  string
	Span  ast.Span
	// Module is set for exports of ES modules. Module exports are only
	// visible through imports; script declarations are shared globals.
	Module bool
}

// FileReference is a use, in one file, of a name that scripts share as a
// global.
type FileReference struct {
	Name  string
	File  string
	Span  ast.Span
	Flags ReferenceFlags
}

// sourceExtensions are the file extensions the workspace scanner reads.
var sourceExtensions = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true, ".jsx": true,
	".ts": true, ".mts": true, ".cts": true, ".tsx": true,
}

// IsSourceFile reports whether path has a JavaScript or TypeScript
// extension.
func IsSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanWorkspace walks a directory tree, analyzes every source file, and
// returns the top level declarations of scripts and the exports of
// modules. The script declarations are suitable as extra globals when
// checking for undefined names.
//
// Files that fail to read or parse are skipped. When cfg.Cache is set,
// unchanged files are served from it.
func ScanWorkspace(ctx context.Context, root string, cfg *Config) ([]ExternalSymbol, error) {
	files, err := CollectFiles(root)
	if err != nil {
		return nil, err
	}
	var cache *DiskCache
	if cfg != nil {
		cache = cfg.Cache
	}

	var syms []ExternalSymbol
	var misses []File
	for _, f := range files {
		cached, ok, err := cache.Get(DigestOf(f.Path, f.Source))
		if err != nil {
			cfg.logger().WithError(err).WithField("file", f.Path).Warn("workspace cache read failed")
		}
		if ok {
			syms = append(syms, cached...)
			continue
		}
		misses = append(misses, f)
	}

	results, err := AnalyzeFiles(ctx, misses, cfg)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		if res.Err != nil {
			cfg.logger().WithError(res.Err).WithField("file", res.Path).Debug("workspace scan skipped file")
			continue
		}
		fileSyms := ExtractSymbols(res.Semantic)
		if err := cache.Put(DigestOf(misses[i].Path, misses[i].Source), fileSyms); err != nil {
			cfg.logger().WithError(err).WithField("file", res.Path).Warn("workspace cache write failed")
		}
		syms = append(syms, fileSyms...)
	}
	sort.SliceStable(syms, func(i, j int) bool {
		if syms[i].File != syms[j].File {
			return syms[i].File < syms[j].File
		}
		return syms[i].Name < syms[j].Name
	})
	return syms, nil
}

// CollectFiles reads every source file under root, skipping hidden
// directories and node_modules. Unreadable entries are ignored.
func CollectFiles(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) {
			return nil
		}
		src, readErr := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if readErr != nil {
			return nil
		}
		files = append(files, File{Path: path, Source: src})
		return nil
	})
	return files, err
}

// shouldSkipDir returns true for directories that should not be walked.
// It skips hidden directories (e.g. .git, .vscode) and node_modules,
// but not "." or ".." which represent the current/parent directory.
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	return name == "node_modules"
}

// ExtractSymbols returns the root scope declarations of a script, or the
// exported declarations of a module, sorted by name.
func ExtractSymbols(sem *Semantic) []ExternalSymbol {
	module := sem.Program.SourceType.Module
	var syms []ExternalSymbol
	for _, id := range sem.RootScope().bindings {
		sym := sem.Symbol(id)
		if module && !sym.Flags.Has(SymbolExport) {
			continue
		}
		if sym.Flags&(SymbolImport|SymbolTypeImport) != 0 {
			continue
		}
		syms = append(syms, ExternalSymbol{
			Name:   sym.Name,
			Flags:  sym.Flags,
			File:   sem.Program.File,
			Span:   sym.Span,
			Module: module,
		})
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	return syms
}

// ExtractFileRefs returns the references of sem to the shared globals in
// names, in source order: the unresolved ones and, for a script, those bound
// by its own top level declarations. With a workspace scan as names, this
// finds every use of one script's globals across the workspace.
func ExtractFileRefs(sem *Semantic, names map[string]bool) []FileReference {
	var refs []FileReference
	add := func(name string, id ReferenceID) {
		r := sem.Reference(id)
		refs = append(refs, FileReference{Name: name, File: sem.Program.File, Span: r.Span, Flags: r.Flags})
	}
	for _, name := range sem.Scopes.UnresolvedNames() {
		if !names[name] {
			continue
		}
		for _, id := range sem.Scopes.RootUnresolvedReferences()[name] {
			add(name, id)
		}
	}
	if !sem.Program.SourceType.Module {
		for name, sym := range sem.RootScope().Bindings() {
			if !names[name] {
				continue
			}
			for _, id := range sem.SymbolReferences(sym) {
				add(name, id)
			}
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Span.Start < refs[j].Span.Start })
	return refs
}
