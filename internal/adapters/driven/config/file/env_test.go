package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestConfigStore_Load_EnvOverridesFile(t *testing.T) {
	store := writeConfig(t, `
[server]
port = 9000

[log]
level = "warn"
`)
	store.lookupEnv = envMap(map[string]string{
		"POLICY_READER_SERVER_PORT":    "9100",
		"POLICY_READER_STAGING_ROOT":   "/var/tmp/staging",
		"POLICY_READER_REDIS_PASSWORD": "hunter2",
	})

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, 9100, settings.Server.Port)
	assert.Equal(t, "/var/tmp/staging", settings.Staging.Root)
	assert.Equal(t, "hunter2", settings.Lock.RedisPassword)
	assert.Equal(t, "warn", settings.Log.Level)
}

func TestConfigStore_Load_EnvWithoutFile(t *testing.T) {
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	store.lookupEnv = envMap(map[string]string{"POLICY_READER_LOG_FORMAT": "console"})

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "console", settings.Log.Format)
}

func TestConfigStore_Load_EnvErrors(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{
			name:    "non numeric port",
			vars:    map[string]string{"POLICY_READER_SERVER_PORT": "eighty"},
			wantErr: "POLICY_READER_SERVER_PORT must be an integer",
		},
		{
			name:    "override fails validation",
			vars:    map[string]string{"POLICY_READER_MAX_DOCUMENT_SIZE_MB": "0"},
			wantErr: "limits.max_document_size_mb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewConfigStore(filepath.Join(t.TempDir(), "absent.toml"))
			require.NoError(t, err)
			store.lookupEnv = envMap(tt.vars)

			settings, err := store.Load()

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, domain.DefaultSettings(), settings)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "POLICY_READER_DOTENV_TEST"
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0600))
	t.Cleanup(func() { os.Unsetenv(key) })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnv_KeepsExisting(t *testing.T) {
	const key = "POLICY_READER_DOTENV_EXISTING"
	t.Setenv(key, "from-env")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0600))

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-env", os.Getenv(key))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
