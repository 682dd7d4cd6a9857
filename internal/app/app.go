// Package app is the composition root. It builds every reader, parser and
// adapter from Settings and hands the result to the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/adapters/driven/audit"
	configfile "github.com/custodia-labs/policy-reader/internal/adapters/driven/config/file"
	"github.com/custodia-labs/policy-reader/internal/adapters/driven/lock/memory"
	redislock "github.com/custodia-labs/policy-reader/internal/adapters/driven/lock/redis"
	"github.com/custodia-labs/policy-reader/internal/adapters/driven/metrics"
	secretsfile "github.com/custodia-labs/policy-reader/internal/adapters/driven/secrets/file"
	"github.com/custodia-labs/policy-reader/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/policy-reader/internal/adapters/driving/cli"
	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/services"
	"github.com/custodia-labs/policy-reader/internal/logger"
	"github.com/custodia-labs/policy-reader/internal/parsers/csv"
	"github.com/custodia-labs/policy-reader/internal/parsers/docx"
	"github.com/custodia-labs/policy-reader/internal/parsers/pdf"
	"github.com/custodia-labs/policy-reader/internal/parsers/plaintext"
	"github.com/custodia-labs/policy-reader/internal/parsers/spreadsheet"
	"github.com/custodia-labs/policy-reader/internal/readers/filesystem"
	"github.com/custodia-labs/policy-reader/internal/readers/git"
	"github.com/custodia-labs/policy-reader/internal/readers/s3"
	"github.com/custodia-labs/policy-reader/internal/readers/smb"
	"github.com/custodia-labs/policy-reader/internal/readers/web"
	"github.com/custodia-labs/policy-reader/internal/staging"
)

// Bootstrap loads ./.env and the config file, then builds the services.
// It satisfies cli.Bootstrap.
func Bootstrap(ctx context.Context, configPath string, verbose bool) (*cli.Services, error) {
	if err := configfile.LoadDotEnv(""); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	store, err := configfile.NewConfigStore(configPath)
	if err != nil {
		return nil, err
	}
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", store.Path(), err)
	}

	log, err := logger.New(logger.Options{
		Level:   settings.Log.Level,
		Format:  settings.Log.Format,
		Verbose: verbose,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("configuration loaded", zap.String("path", store.Path()))

	return Build(ctx, settings, log)
}

// Build wires the services for settings. On error everything opened so far
// is closed again.
func Build(ctx context.Context, settings domain.Settings, log *zap.Logger) (_ *cli.Services, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		_ = log.Sync()
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	locker, closeLocker, err := newLocker(ctx, settings.Lock, log)
	if err != nil {
		return nil, err
	}
	if closeLocker != nil {
		closers = append(closers, closeLocker)
	}

	readers, err := services.NewReaderRegistry(newReaders(settings.Sources, locker)...)
	if err != nil {
		return nil, fmt.Errorf("building reader registry: %w", err)
	}
	parsers, err := services.NewParserRegistry(newParsers()...)
	if err != nil {
		return nil, fmt.Errorf("building parser registry: %w", err)
	}

	retrieval := services.NewRetrieval(readers, parsers, staging.NewFactory(settings.Staging.Root), services.RetrievalConfig{
		ParseWorkers: settings.Limits.ParseWorkers,
		Logger:       log,
	})

	svc := &cli.Services{
		Settings: settings,
		Logger:   log,
		Catalog:  services.NewCatalog(readers, parsers),
	}

	var secrets driven.SecretStore
	if settings.Secrets.File != "" {
		store, err := secretsfile.NewStore(settings.Secrets.File, log)
		if err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
		secrets = store
		if settings.Secrets.Watch {
			svc.Background = append(svc.Background, store.Watch)
		}
	}

	auditors := audit.Fanout{audit.NewLogger(log)}

	if settings.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder := metrics.NewRecorder(reg)
		auditors = append(auditors, recorder)
		svc.Metrics = recorder.Handler()
		if settings.Metrics.Port != 0 {
			addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Metrics.Port)
			svc.Background = append(svc.Background, metricsListener(addr, svc.Metrics, log))
		}
	}

	if settings.Audit.Enabled {
		store, err := sqlite.NewStore(settings.Audit.Database)
		if err != nil {
			return nil, fmt.Errorf("opening audit store: %w", err)
		}
		closers = append(closers, store.Close)
		auditors = append(auditors, store)
		svc.Audit = store
	}

	svc.Tools = services.NewTools(retrieval, secrets, auditors, services.ToolsConfig{
		MaxSizeBytes: settings.Limits.MaxDocumentBytes(),
		Logger:       log,
	})
	svc.Close = closeAll

	log.Debug("services built",
		zap.Int("readers", len(readers.Readers())),
		zap.Strings("formats", parsers.Extensions()),
		zap.Bool("secrets", secrets != nil),
		zap.Bool("audit", svc.Audit != nil),
		zap.Bool("metrics", svc.Metrics != nil))

	return svc, nil
}

// newReaders builds one reader per source kind. Switched-off sources keep
// their slot through services.Disable.
func newReaders(cfg domain.SourceSettings, locker driven.KeyedLocker) []driven.SourceReader {
	readers := []driven.SourceReader{
		s3.New(s3.Config{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		}),
		git.New(git.Config{
			CloneRoot:    cfg.Git.CloneRoot,
			GitHubAPIURL: cfg.Git.GitHubAPIURL,
		}, locker),
		smb.New(smb.Config{Port: cfg.SMB.Port}),
		web.New(web.Config{
			Timeout:   cfg.HTTP.Timeout(),
			UserAgent: cfg.HTTP.UserAgent,
		}),
		filesystem.New(),
	}
	for i, r := range readers {
		if !cfg.Enabled(r.Kind()) {
			readers[i] = services.Disable(r)
		}
	}
	return readers
}

func newParsers() []driven.Parser {
	return []driven.Parser{
		pdf.New(),
		docx.New(),
		spreadsheet.New(),
		csv.New(),
		plaintext.New(),
	}
}

func newLocker(ctx context.Context, cfg domain.LockSettings, log *zap.Logger) (driven.KeyedLocker, func() error, error) {
	switch cfg.Backend {
	case domain.LockBackendRedis:
		l, err := redislock.New(ctx, redislock.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL(),
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	default:
		return memory.New(), nil, nil
	}
}

// metricsListener serves /metrics on a dedicated address until ctx ends.
func metricsListener(addr string, handler http.Handler, log *zap.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listener: %w", err)
		}
		return nil
	}
}
