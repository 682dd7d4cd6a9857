package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

const instrumentationName = "github.com/custodia-labs/policy-reader/internal/core/services"

// Ensure Retrieval implements the interface.
var _ driving.RetrievalService = (*Retrieval)(nil)

// FormatAuto asks the pipeline to pick the parser from the file extension.
const FormatAuto = "auto"

// RetrievalConfig tunes the pipeline.
type RetrievalConfig struct {
	// ParseWorkers bounds concurrent parses. Defaults to 4.
	ParseWorkers int
	// Logger receives per-stage debug lines. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Retrieval runs resolve, fetch, size check, resolve, parse.
// Any failure is terminal; there are no retries and no partial results.
type Retrieval struct {
	readers driven.ReaderRegistry
	parsers driven.ParserRegistry
	staging driven.StagingFactory
	slots   *semaphore.Weighted
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewRetrieval creates the retrieval pipeline.
func NewRetrieval(
	readers driven.ReaderRegistry,
	parsers driven.ParserRegistry,
	staging driven.StagingFactory,
	cfg RetrievalConfig,
) *Retrieval {
	workers := cfg.ParseWorkers
	if workers <= 0 {
		workers = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrieval{
		readers: readers,
		parsers: parsers,
		staging: staging,
		slots:   semaphore.NewWeighted(int64(workers)),
		logger:  logger.With(zap.String("component", "retrieval")),
		tracer:  otel.Tracer(instrumentationName),
	}
}

// RetrieveDocument fetches and parses the document at uri.
func (r *Retrieval) RetrieveDocument(
	ctx context.Context,
	uri string,
	secrets domain.Secrets,
	opts driving.RetrieveOptions,
) (doc *domain.ParsedDocument, err error) {
	ctx, span := r.tracer.Start(ctx, "retrieval.read",
		trace.WithAttributes(attribute.String("source.uri", uri)))
	defer func() { endSpan(span, err) }()
	start := time.Now()

	reader, loc, creds, err := r.resolve(uri, secrets)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("source.kind", reader.Kind().String()))

	area := r.staging.NewArea(opts.MaxSizeBytes)
	defer func() {
		if cerr := area.Cleanup(); cerr != nil {
			r.logger.Warn("staging cleanup failed", zap.Error(cerr))
		}
	}()

	file, err := r.fetch(ctx, reader, loc, creds, area)
	if err != nil {
		return nil, err
	}

	if opts.MaxSizeBytes > 0 && file.Size > opts.MaxSizeBytes {
		return nil, domain.DocumentTooLargeError(file.Size, opts.MaxSizeBytes)
	}

	if opts.Format != "" && opts.Format != FormatAuto {
		// Parsers dispatch on the override too, not only the registry.
		file.Format = opts.Format
	}
	parser, err := r.parsers.Resolve(file.Extension())
	if err != nil {
		return nil, err
	}

	res, err := r.parse(ctx, parser, file)
	if err != nil {
		return nil, err
	}

	doc = domain.NewParsedDocument(res, file)
	if !file.InPlace {
		// The staged copy is gone once this call returns.
		doc.FilePath = uri
	}

	r.logger.Debug("document retrieved",
		zap.String("source", uri),
		zap.String("reader", reader.Kind().String()),
		zap.String("parser", parser.Kind().String()),
		zap.Int64("size", file.Size),
		zap.Duration("elapsed", time.Since(start)))
	return doc, nil
}

// ListDocuments enumerates files at uri whose names match pattern.
func (r *Retrieval) ListDocuments(
	ctx context.Context,
	uri string,
	secrets domain.Secrets,
	pattern string,
) (entries []domain.DirectoryEntry, err error) {
	ctx, span := r.tracer.Start(ctx, "retrieval.list",
		trace.WithAttributes(attribute.String("source.uri", uri), attribute.String("pattern", pattern)))
	defer func() { endSpan(span, err) }()

	matcher, err := globMatcher(pattern)
	if err != nil {
		return nil, err
	}

	reader, loc, creds, err := r.resolve(uri, secrets)
	if err != nil {
		return nil, err
	}

	all, err := reader.ListFiles(ctx, loc, creds)
	if err != nil {
		return nil, err
	}

	entries = make([]domain.DirectoryEntry, 0, len(all))
	for _, e := range all {
		if matcher(e.Name) {
			entries = append(entries, e)
		}
	}

	r.logger.Debug("documents listed",
		zap.String("source", uri),
		zap.String("reader", reader.Kind().String()),
		zap.Int("total", len(all)),
		zap.Int("matched", len(entries)))
	return entries, nil
}

func (r *Retrieval) resolve(
	uri string,
	secrets domain.Secrets,
) (driven.SourceReader, domain.Location, domain.Credentials, error) {
	reader, err := r.readers.Resolve(uri)
	if err != nil {
		return nil, domain.Location{}, domain.Credentials{}, err
	}
	loc, err := domain.ParseLocation(uri)
	if err != nil {
		return nil, domain.Location{}, domain.Credentials{}, err
	}
	return reader, loc, domain.DecodeCredentials(reader.Kind(), secrets), nil
}

func (r *Retrieval) fetch(
	ctx context.Context,
	reader driven.SourceReader,
	loc domain.Location,
	creds domain.Credentials,
	area driven.StagingArea,
) (domain.StagedFile, error) {
	ctx, span := r.tracer.Start(ctx, "retrieval.fetch")
	defer span.End()

	file, err := reader.ReadFile(ctx, loc, creds, area)
	if err != nil {
		span.RecordError(err)
		return domain.StagedFile{}, err
	}
	if file.Name == "" {
		file.Name = loc.Base()
	}
	span.SetAttributes(attribute.Int64("file.size", file.Size))
	r.logger.Debug("document fetched",
		zap.String("reader", reader.Kind().String()),
		zap.String("name", file.Name),
		zap.Int64("size", file.Size),
		zap.Bool("in_place", file.InPlace))
	return file, nil
}

func (r *Retrieval) parse(ctx context.Context, parser driven.Parser, file domain.StagedFile) (*domain.ParseResult, error) {
	ctx, span := r.tracer.Start(ctx, "retrieval.parse",
		trace.WithAttributes(attribute.String("parser.kind", parser.Kind().String())))
	defer span.End()

	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for parse slot: %w", err)
	}
	defer r.slots.Release(1)

	res, err := parser.Parse(ctx, file)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res, nil
}

// globMatcher compiles a shell glob. Empty and "*" match everything.
func globMatcher(pattern string) (func(string) bool, error) {
	if pattern == "" || pattern == "*" {
		return func(string) bool { return true }, nil
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, domain.ValidationError("invalid pattern %q: %v", pattern, err)
	}
	return func(name string) bool {
		ok, _ := path.Match(pattern, name)
		return ok
	}, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
