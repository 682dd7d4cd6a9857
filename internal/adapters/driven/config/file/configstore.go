package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// DefaultFileName is the settings file created in the config directory.
const DefaultFileName = "config.toml"

// ConfigStore loads and saves Settings as a TOML file.
type ConfigStore struct {
	path      string
	lookupEnv func(string) (string, bool)
	mu        sync.Mutex
}

// NewConfigStore creates a store for the settings file at path.
// If path is empty, defaults to ~/.policy-reader/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, DefaultFileName)
	}
	return &ConfigStore{path: path, lookupEnv: os.LookupEnv}, nil
}

// DefaultDir returns ~/.policy-reader.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".policy-reader"), nil
}

// Path returns the settings file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// Load reads the settings file on top of domain.DefaultSettings, then
// applies POLICY_READER_* environment overrides.
// A missing file yields the defaults. Unknown keys and out of range values
// are validation errors.
func (s *ConfigStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return settings, fmt.Errorf("reading config file: %w", err)
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			return domain.DefaultSettings(), decodeError(s.path, err)
		}
	}

	if err := applyEnv(&settings, s.lookupEnv); err != nil {
		return domain.DefaultSettings(), err
	}
	if err := settings.Validate(); err != nil {
		return domain.DefaultSettings(), err
	}
	return settings, nil
}

// Save writes settings to the file, creating its directory if needed.
func (s *ConfigStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func decodeError(path string, err error) error {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return domain.ValidationError("unknown keys in %s:\n%s", path, strict.String())
	}
	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, col := decErr.Position()
		return domain.ValidationError("invalid config %s at line %d column %d: %s", path, row, col, decErr.Error())
	}
	return domain.ValidationError("invalid config %s: %s", path, err.Error())
}
