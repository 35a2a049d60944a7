// Copyright © 2024 The ELPS authors

package semantic

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/jsscope/ast"
	"github.com/luthersystems/jsscope/parser"
)

const tracerName = "jsscope/semantic"

// Config controls an analysis session.
type Config struct {
	// SourceType overrides the source type inferred from file names.
	SourceType *ast.SourceType

	// Jobs bounds the number of files analyzed concurrently by
	// AnalyzeFiles. Zero or less means one job per file.
	Jobs int

	// Logger receives debug summaries. Defaults to the logrus standard
	// logger.
	Logger logrus.FieldLogger

	// Cache, when set, memoizes ScanWorkspace results per file content.
	Cache *DiskCache

	// TracerProvider creates the session tracer. Defaults to the global
	// otel provider.
	TracerProvider trace.TracerProvider
}

func (cfg *Config) logger() logrus.FieldLogger {
	if cfg == nil || cfg.Logger == nil {
		return logrus.StandardLogger()
	}
	return cfg.Logger
}

func (cfg *Config) tracer() trace.Tracer {
	if cfg == nil || cfg.TracerProvider == nil {
		return otel.GetTracerProvider().Tracer(tracerName)
	}
	return cfg.TracerProvider.Tracer(tracerName)
}

// Analyze builds the semantic tables for prog. The only errors it returns
// are broken internal invariants, in which case the whole analysis is
// discarded. Any other panic is not recovered.
func Analyze(ctx context.Context, prog *ast.Program, cfg *Config) (sem *Semantic, err error) {
	_, span := cfg.tracer().Start(ctx, "bind", trace.WithAttributes(attribute.String("file", prog.File)))
	defer span.End()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ierr, ok := r.(*InvariantError)
		if !ok {
			panic(r)
		}
		span.RecordError(ierr)
		span.SetStatus(codes.Error, ierr.Error())
		sem, err = nil, fmt.Errorf("%s: %w", prog.File, ierr)
	}()

	sem = NewBuilder(prog).Build()

	span.SetAttributes(
		attribute.Int("scopes", sem.Scopes.Len()),
		attribute.Int("symbols", sem.Symbols.Len()),
		attribute.Int("references", sem.References.Len()),
	)
	cfg.logger().WithFields(logrus.Fields{
		"file":       prog.File,
		"phase":      "bind",
		"scopes":     sem.Scopes.Len(),
		"symbols":    sem.Symbols.Len(),
		"references": sem.References.Len(),
		"globals":    len(sem.Scopes.UnresolvedNames()),
	}).Debug("semantic analysis complete")
	return sem, nil
}

// ParseAndAnalyze parses src as file and analyzes the result. Syntax errors
// are returned as is so that callers can test them with
// parser.IsSyntaxError.
func ParseAndAnalyze(ctx context.Context, file string, src []byte, cfg *Config) (*Semantic, error) {
	ctx, span := cfg.tracer().Start(ctx, "parse", trace.WithAttributes(attribute.String("file", file)))
	var opts []parser.Option
	if cfg != nil && cfg.SourceType != nil {
		opts = append(opts, parser.WithSourceType(*cfg.SourceType))
	}
	prog, err := parser.Parse(file, src, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		cfg.logger().WithFields(logrus.Fields{"file": file, "phase": "parse"}).WithError(err).Debug("parse failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("nodes", prog.Arena.Len()))
	span.End()
	return Analyze(ctx, prog, cfg)
}

// File is one input to AnalyzeFiles.
type File struct {
	Path   string
	Source []byte
}

// FileResult is the outcome for one File. Exactly one of Semantic and Err
// is set.
type FileResult struct {
	Path     string
	Semantic *Semantic
	Err      error
}

// AnalyzeFiles parses and analyzes files concurrently, one builder per
// file. Results are returned in input order. Per-file failures are
// reported in FileResult.Err; the returned error is only set when ctx is
// done before every file was analyzed.
func AnalyzeFiles(ctx context.Context, files []File, cfg *Config) ([]FileResult, error) {
	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if cfg != nil && cfg.Jobs > 0 {
		g.SetLimit(cfg.Jobs)
	}
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sem, err := ParseAndAnalyze(ctx, f.Path, f.Source, cfg)
			results[i] = FileResult{Path: f.Path, Semantic: sem, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("analyze files: %w", err)
	}
	return results, nil
}

// IsInvariantError reports whether err carries an *InvariantError.
func IsInvariantError(err error) bool {
	var ierr *InvariantError
	return errors.As(err, &ierr)
}
