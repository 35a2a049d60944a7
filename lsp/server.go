// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for JavaScript
// scope analysis. It provides diagnostics, hover, go-to-definition,
// references, highlights, completion, document symbols, semantic tokens
// and rename support.
package lsp

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsscope/lint"
	"github.com/luthersystems/jsscope/semantic"
)

const serverName = "jsscope-lsp"

// Server is the jsscope language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string
	log      logrus.FieldLogger

	// Linter used for diagnostics. Its Workspace is replaced once the
	// workspace index is built.
	linter   *lint.Linter
	linterMu sync.RWMutex

	index     *workspaceIndex
	indexOnce sync.Once

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithLinter replaces the default linter, e.g. with one built from a
// jsscope.toml file.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) { s.linter = l }
}

// WithLogger sets the server log. Defaults to the logrus standard logger,
// which must not write to stdout when serving over stdio.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithRoot sets the workspace root used when the client does not send one.
func WithRoot(path string) Option {
	return func(s *Server) {
		s.rootPath = path
		s.rootURI = pathToURI(path)
	}
}

// New creates a new language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		linter:   &lint.Linter{Analyzers: lint.DefaultAnalyzers()},
		log:      logrus.StandardLogger(),
		index:    newWorkspaceIndex(),
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:              s.textDocumentHover,
		TextDocumentDefinition:         s.textDocumentDefinition,
		TextDocumentCompletion:         s.textDocumentCompletion,
		TextDocumentReferences:         s.textDocumentReferences,
		TextDocumentDocumentHighlight:  s.textDocumentDocumentHighlight,
		TextDocumentDocumentSymbol:     s.textDocumentDocumentSymbol,
		TextDocumentRename:             s.textDocumentRename,
		TextDocumentPrepareRename:      s.textDocumentPrepareRename,
		TextDocumentFormatting:         s.textDocumentFormatting,
		TextDocumentFoldingRange:       s.textDocumentFoldingRange,
		TextDocumentCodeAction:         s.textDocumentCodeAction,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		WorkspaceSymbol:                s.workspaceSymbol,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.log.WithField("root", s.rootPath).Info("initialize")

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"#"},
	}
	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: boolPtr(true),
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: semanticTokenLegend(),
		Full:   true,
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// initialized starts indexing the workspace in the background.
func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	go func() {
		defer s.recoverPanic("workspace index")
		s.ensureWorkspaceIndex()
		s.reanalyzeOpenDocuments()
	}()
	return nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureWorkspaceIndex guarantees the workspace index is built at least
// once. It is safe to call from any goroutine. Cached analyses of open
// documents are dropped afterwards so that they pick up the workspace
// globals.
func (s *Server) ensureWorkspaceIndex() {
	s.indexOnce.Do(func() {
		if s.rootPath == "" {
			return
		}
		start := time.Now()
		if err := s.index.build(context.Background(), s.rootPath, s.analysisConfig()); err != nil {
			s.log.WithError(err).Warn("workspace index failed")
			return
		}
		s.linterMu.Lock()
		cp := *s.linter
		cp.Workspace = s.index.Symbols()
		s.linter = &cp
		s.linterMu.Unlock()

		for _, doc := range s.docs.All() {
			doc.invalidate()
		}
		s.log.WithFields(logrus.Fields{
			"root":    s.rootPath,
			"symbols": len(s.index.Symbols()),
			"elapsed": time.Since(start),
		}).Info("workspace indexed")
	})
}

// reanalyzeOpenDocuments re-publishes diagnostics for all open documents.
func (s *Server) reanalyzeOpenDocuments() {
	for _, doc := range s.docs.All() {
		doc.invalidate()
		s.analyzeAndPublish(doc)
	}
}

func (s *Server) currentLinter() *lint.Linter {
	s.linterMu.RLock()
	defer s.linterMu.RUnlock()
	return s.linter
}

// analysisConfig returns the semantic configuration documents are analyzed
// with.
func (s *Server) analysisConfig() *semantic.Config {
	s.linterMu.RLock()
	base := s.linter.Analysis
	s.linterMu.RUnlock()
	var cfg semantic.Config
	if base != nil {
		cfg = *base
	}
	cfg.Logger = s.log
	return &cfg
}

// ensureAnalysis brings the document's analysis up to date and returns a
// view of it taken under the same lock, so the model always matches the
// content and line index it was built from.
func (s *Server) ensureAnalysis(doc *Document) view {
	s.ensureWorkspaceIndex()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if !doc.analyzed {
		doc.analyze(context.Background(), s.analysisConfig())
	}
	return doc.viewLocked()
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

// recoverPanic keeps a background task from taking the server down.
func (s *Server) recoverPanic(task string) {
	if r := recover(); r != nil {
		s.log.WithField("task", task).Errorf("panic: %v", r)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
