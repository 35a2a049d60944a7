// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"sync"

	"github.com/luthersystems/jsscope/parser/token"
	"github.com/luthersystems/jsscope/semantic"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	lines    *token.LineIndex
	analyzed bool
	sem      *semantic.Semantic // nil while the content does not parse
	lastGood *semantic.Semantic // most recent successful analysis
	parseErr error
}

func newDocument(uri string, version int32, content string) *Document {
	return &Document{
		URI:     uri,
		Version: version,
		Content: content,
		lines:   token.NewLineIndex([]byte(content)),
	}
}

// analyze parses and analyzes the current content. The caller holds d.mu.
// When the content has a syntax error the previous good analysis is kept
// for completion, but position based requests see no semantic model.
func (d *Document) analyze(ctx context.Context, cfg *semantic.Config) {
	d.analyzed = true
	sem, err := semantic.ParseAndAnalyze(ctx, uriToPath(d.URI), []byte(d.Content), cfg)
	if err != nil {
		d.sem = nil
		d.parseErr = err
		return
	}
	d.sem = sem
	d.lastGood = sem
	d.parseErr = nil
}

// invalidate drops the cached analysis so the next request rebuilds it.
func (d *Document) invalidate() {
	d.mu.Lock()
	d.analyzed = false
	d.mu.Unlock()
}

// view is a consistent copy of a document's state for one request.
type view struct {
	uri      string
	content  string
	lines    *token.LineIndex
	sem      *semantic.Semantic
	lastGood *semantic.Semantic
	parseErr error
}

func (d *Document) view() view {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

// viewLocked is view for callers that hold d.mu.
func (d *Document) viewLocked() view {
	return view{
		uri:      d.URI,
		content:  d.Content,
		lines:    d.lines,
		sem:      d.sem,
		lastGood: d.lastGood,
		parseErr: d.parseErr,
	}
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := newDocument(uri, version, content)
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync). The analysis is rebuilt
// on the next request.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = newDocument(uri, version, content)
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.lines = token.NewLineIndex([]byte(content))
	doc.analyzed = false
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns the open documents in no particular order.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}
