package file

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "POLICY_READER_"

// LoadDotEnv exports the variables in a .env file into the process
// environment without replacing ones already set. An empty path means
// ./.env. A missing file is not an error.
func LoadDotEnv(path string) error {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

type envOverride struct {
	name  string
	apply func(s *domain.Settings, value string) error
}

func stringVar(set func(s *domain.Settings, v string)) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		set(s, v)
		return nil
	}
}

func intVar(name string, set func(s *domain.Settings, v int)) func(*domain.Settings, string) error {
	return func(s *domain.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.ValidationError("%s%s must be an integer, got %q", EnvPrefix, name, v)
		}
		set(s, n)
		return nil
	}
}

var envOverrides = []envOverride{
	{"SERVER_PORT", intVar("SERVER_PORT", func(s *domain.Settings, v int) { s.Server.Port = v })},
	{"MAX_DOCUMENT_SIZE_MB", intVar("MAX_DOCUMENT_SIZE_MB", func(s *domain.Settings, v int) { s.Limits.MaxDocumentSizeMB = v })},
	{"STAGING_ROOT", stringVar(func(s *domain.Settings, v string) { s.Staging.Root = v })},
	{"SECRETS_FILE", stringVar(func(s *domain.Settings, v string) { s.Secrets.File = v })},
	{"S3_ENDPOINT", stringVar(func(s *domain.Settings, v string) { s.Sources.S3.Endpoint = v })},
	{"REDIS_ADDR", stringVar(func(s *domain.Settings, v string) { s.Lock.RedisAddr = v })},
	{"REDIS_PASSWORD", stringVar(func(s *domain.Settings, v string) { s.Lock.RedisPassword = v })},
	{"LOG_LEVEL", stringVar(func(s *domain.Settings, v string) { s.Log.Level = v })},
	{"LOG_FORMAT", stringVar(func(s *domain.Settings, v string) { s.Log.Format = v })},
}

// applyEnv overlays the variables that are set onto settings.
func applyEnv(s *domain.Settings, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	for _, o := range envOverrides {
		v, ok := lookup(EnvPrefix + o.name)
		if !ok {
			continue
		}
		if err := o.apply(s, v); err != nil {
			return err
		}
	}
	return nil
}
