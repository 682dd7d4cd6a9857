package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Version is the MCP server version.
const Version = "0.1.0"

// ServerName is reported to clients during initialisation.
const ServerName = "policy-reader"

const instructions = "Use list-documents to discover files at a location and read-document to fetch " +
	"one as text. Locations are s3://, git://, smb://, \\\\server\\share, http(s):// URIs or local paths."

// Options tunes the server.
type Options struct {
	// RatePerMinute caps tool calls across all clients. Zero disables the limit.
	RatePerMinute int
	// Burst is the number of calls allowed at once before the limit applies.
	Burst  int
	Logger *zap.Logger
}

// Server is the MCP server for policy-reader.
type Server struct {
	ports   *Ports
	server  *mcp.Server
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingToolService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	impl := &mcp.Implementation{
		Name:    ServerName,
		Version: Version,
	}

	s := &Server{
		ports:   ports,
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		limiter: newLimiter(opts.RatePerMinute, opts.Burst),
		logger:  logger.With(zap.String("component", "mcp")),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP handler: streamable MCP at /, plus /health and,
// when a metrics handler is wired, /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	if s.ports.Metrics != nil {
		r.Handle("/metrics", s.ports.Metrics)
	}

	streamable := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
	r.Handle("/", streamable)
	r.Handle("/*", streamable)
	return r
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
