// Package file resolves credentials paths from a TOML secrets file.
//
// Each table in the file is one credentials path:
//
//	["aws/s3-reader"]
//	access_key_id = "AKIA..."
//	secret_access_key = "..."
//
// Nested tables are flattened with "/", so [aws.s3-reader] names the same
// path. Values are handed to readers as strings.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SecretStore = (*Store)(nil)

// Store serves secrets loaded from a TOML file.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]domain.Secrets
}

// NewStore loads the secrets file at path.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:   path,
		logger: logger.With(zap.String("component", "secrets")),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the secrets file path.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns a copy of the secrets stored at path.
func (s *Store) Lookup(_ context.Context, path string) (domain.Secrets, error) {
	key := normalise(path)

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, domain.NotFoundError("credentials not found: %s", path)
	}
	out := make(domain.Secrets, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	return out, nil
}

// Paths returns every known credentials path, sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reload re-reads the file. On failure the previous entries stay in place.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading secrets file: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return domain.ValidationError("invalid secrets file %s: %s", s.path, err.Error())
	}

	entries := make(map[string]domain.Secrets)
	for key, value := range raw {
		table, ok := value.(map[string]any)
		if !ok {
			s.logger.Warn("ignoring top-level secrets key outside a table", zap.String("key", key))
			continue
		}
		flatten(normalise(key), table, entries)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.logger.Debug("secrets loaded", zap.String("path", s.path), zap.Int("entries", len(entries)))
	return nil
}

// Watch reloads the file whenever it changes until ctx is done.
// The parent directory is watched so editors that replace the file by
// rename are picked up.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating secrets watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watching secrets directory: %w", err)
	}
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("secrets reload failed, keeping previous entries", zap.Error(err))
				continue
			}
			s.logger.Info("secrets reloaded", zap.String("op", event.Op.String()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("secrets watcher error", zap.Error(err))
		}
	}
}

// flatten stores the scalar values of table under prefix and recurses into
// sub-tables with "/" joined names.
func flatten(prefix string, table map[string]any, out map[string]domain.Secrets) {
	var entry domain.Secrets
	for k, v := range table {
		if sub, ok := v.(map[string]any); ok {
			flatten(prefix+"/"+k, sub, out)
			continue
		}
		if entry == nil {
			entry = make(domain.Secrets)
		}
		entry[k] = fmt.Sprint(v)
	}
	if entry != nil {
		out[prefix] = entry
	}
}

func normalise(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}
