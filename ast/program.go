// Copyright © 2024 The ELPS authors

package ast

import (
	"path/filepath"
	"strings"

	"github.com/luthersystems/jsscope/parser/token"
)

// SourceType describes how a file must be interpreted.
type SourceType struct {
	Module       bool // ES module: implicitly strict, import/export allowed
	TypeScript   bool // accept `import type` and `export type` forms
	JSX          bool // accept JSX elements
	AlwaysStrict bool // treat scripts as strict regardless of directives
}

// Strict reports whether the top level scope starts out in strict mode.
func (t SourceType) Strict() bool {
	return t.Module || t.AlwaysStrict
}

// SourceTypeFromPath picks a SourceType from a file extension. Unknown
// extensions are treated as plain scripts.
func SourceTypeFromPath(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mjs":
		return SourceType{Module: true}
	case ".cjs":
		return SourceType{}
	case ".jsx":
		return SourceType{Module: true, JSX: true}
	case ".ts", ".mts", ".cts":
		return SourceType{Module: true, TypeScript: true}
	case ".tsx":
		return SourceType{Module: true, TypeScript: true, JSX: true}
	}
	return SourceType{}
}

// Comment is a source comment retained by the parser for directive handling.
type Comment struct {
	Span  Span
	Text  string // full text including the comment markers
	Block bool
}

// Body returns the comment text with the comment markers removed.
func (c Comment) Body() string {
	if c.Block {
		return strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/")
	}
	return strings.TrimPrefix(c.Text, "//")
}

// Program is a parsed source file: the arena, the root node and the
// metadata the semantic analyzer needs to seed the root scope.
type Program struct {
	Arena      *Arena
	Root       NodeID
	File       string
	Source     []byte
	SourceType SourceType
	Comments   []Comment
	Lines      *token.LineIndex
}

// Node returns the node for id.
func (p *Program) Node(id NodeID) *Node {
	return p.Arena.Node(id)
}

// Text returns the source text covered by span.
func (p *Program) Text(span Span) string {
	if span.Start < 0 || span.End > len(p.Source) || span.Start > span.End {
		return ""
	}
	return string(p.Source[span.Start:span.End])
}

// Location converts a byte offset into a 1-based line/column location.
func (p *Program) Location(offset int) *token.Location {
	return p.Lines.Location(p.File, offset)
}

// HasUseStrict reports whether the body of a program or function (a Program
// or BlockStatement node) starts with a "use strict" directive.
func (p *Program) HasUseStrict(body NodeID) bool {
	if body == NoNode {
		return false
	}
	return p.Node(body).Flags.Has(FlagUseStrict)
}
