package domain

import "time"

const unknownDescription = "Unknown"

// LockBackend selects the KeyedLocker used for git working trees.
type LockBackend string

// Available lock backends.
const (
	// LockBackendMemory serialises within this process only.
	LockBackendMemory LockBackend = "memory"
	// LockBackendRedis serialises across processes sharing a clone root.
	LockBackendRedis LockBackend = "redis"
)

// IsValid returns true if the lock backend is recognised.
func (b LockBackend) IsValid() bool {
	return b == LockBackendMemory || b == LockBackendRedis
}

// String returns the string representation.
func (b LockBackend) String() string {
	return string(b)
}

// Size limits enforced by Settings.Validate.
const (
	MinDocumentSizeMB = 1
	MaxDocumentSizeMB = 500
)

// Settings is the full application configuration.
type Settings struct {
	Server    ServerSettings    `toml:"server"`
	Limits    LimitSettings     `toml:"limits"`
	Staging   StagingSettings   `toml:"staging"`
	Sources   SourceSettings    `toml:"sources"`
	Secrets   SecretSettings    `toml:"secrets"`
	Audit     AuditSettings     `toml:"audit"`
	Metrics   MetricsSettings   `toml:"metrics"`
	RateLimit RateLimitSettings `toml:"rate_limit"`
	Lock      LockSettings      `toml:"lock"`
	Log       LogSettings       `toml:"log"`
}

// ServerSettings configures the MCP HTTP listener.
type ServerSettings struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LimitSettings bounds resource use per invocation.
type LimitSettings struct {
	MaxDocumentSizeMB int `toml:"max_document_size_mb"`
	// ParseWorkers is the number of parses allowed to run at once.
	ParseWorkers int `toml:"parse_workers"`
}

// MaxDocumentBytes returns the size limit in bytes.
func (l LimitSettings) MaxDocumentBytes() int64 {
	return int64(l.MaxDocumentSizeMB) * 1024 * 1024
}

// StagingSettings configures where fetched documents are written.
type StagingSettings struct {
	Root string `toml:"root"`
}

// SourceSettings holds per-source configuration.
type SourceSettings struct {
	Local LocalSourceSettings `toml:"local"`
	S3    S3SourceSettings    `toml:"s3"`
	Git   GitSourceSettings   `toml:"git"`
	SMB   SMBSourceSettings   `toml:"smb"`
	HTTP  HTTPSourceSettings  `toml:"http"`
}

// Enabled reports whether the given source kind is switched on.
func (s SourceSettings) Enabled(kind SourceKind) bool {
	switch kind {
	case SourceLocal:
		return s.Local.Enabled
	case SourceObjectStore:
		return s.S3.Enabled
	case SourceVersionControl:
		return s.Git.Enabled
	case SourceNetworkShare:
		return s.SMB.Enabled
	case SourceHTTP:
		return s.HTTP.Enabled
	default:
		return false
	}
}

// LocalSourceSettings configures the local filesystem reader.
type LocalSourceSettings struct {
	Enabled bool `toml:"enabled"`
}

// S3SourceSettings configures the object store reader.
type S3SourceSettings struct {
	Enabled bool   `toml:"enabled"`
	Region  string `toml:"region"`
	// Endpoint overrides the AWS endpoint for S3 compatible stores.
	Endpoint     string `toml:"endpoint"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// GitSourceSettings configures the git reader.
type GitSourceSettings struct {
	Enabled   bool   `toml:"enabled"`
	CloneRoot string `toml:"clone_root"`
	// GitHubAPIURL overrides the GitHub REST endpoint used for listings.
	GitHubAPIURL string `toml:"github_api_url"`
}

// SMBSourceSettings configures the network share reader.
type SMBSourceSettings struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// HTTPSourceSettings configures the HTTP reader.
type HTTPSourceSettings struct {
	Enabled        bool   `toml:"enabled"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Timeout returns the request timeout.
func (h HTTPSourceSettings) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// SecretSettings configures the secret store.
type SecretSettings struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

// AuditSettings configures the persistent audit trail.
type AuditSettings struct {
	Enabled  bool   `toml:"enabled"`
	Database string `toml:"database"`
}

// MetricsSettings configures Prometheus metrics.
type MetricsSettings struct {
	Enabled bool `toml:"enabled"`
	// Port runs a dedicated metrics listener. Zero serves /metrics on the
	// MCP HTTP listener only.
	Port int `toml:"port"`
}

// RateLimitSettings configures the tool call token bucket.
type RateLimitSettings struct {
	PerMinute int `toml:"per_minute"`
	Burst     int `toml:"burst"`
}

// LockSettings configures the git working tree locks.
type LockSettings struct {
	Backend       LockBackend `toml:"backend"`
	RedisAddr     string      `toml:"redis_addr"`
	RedisPassword string      `toml:"redis_password"`
	RedisDB       int         `toml:"redis_db"`
	TTLSeconds    int         `toml:"ttl_seconds"`
}

// TTL returns how long a distributed lock is held before it expires.
func (l LockSettings) TTL() time.Duration {
	return time.Duration(l.TTLSeconds) * time.Second
}

// LogSettings configures logging.
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Limits: LimitSettings{
			MaxDocumentSizeMB: 100,
			ParseWorkers:      4,
		},
		Staging: StagingSettings{
			Root: "/tmp/policy-reader",
		},
		Sources: SourceSettings{
			Local: LocalSourceSettings{Enabled: true},
			S3:    S3SourceSettings{Enabled: true, Region: "us-east-1"},
			Git:   GitSourceSettings{Enabled: true, CloneRoot: "/tmp/policy-reader/git"},
			SMB:   SMBSourceSettings{Enabled: true, Port: 445},
			HTTP:  HTTPSourceSettings{Enabled: true, TimeoutSeconds: 60, UserAgent: "policy-reader"},
		},
		Audit: AuditSettings{
			Enabled: false,
		},
		Metrics: MetricsSettings{
			Enabled: true,
		},
		RateLimit: RateLimitSettings{
			PerMinute: 100,
			Burst:     20,
		},
		Lock: LockSettings{
			Backend:    LockBackendMemory,
			TTLSeconds: 300,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.Limits.MaxDocumentSizeMB < MinDocumentSizeMB || s.Limits.MaxDocumentSizeMB > MaxDocumentSizeMB {
		return ValidationError("limits.max_document_size_mb must be between %d and %d, got %d",
			MinDocumentSizeMB, MaxDocumentSizeMB, s.Limits.MaxDocumentSizeMB)
	}
	if s.Limits.ParseWorkers < 1 {
		return ValidationError("limits.parse_workers must be at least 1, got %d", s.Limits.ParseWorkers)
	}
	if s.Server.Port < 1024 || s.Server.Port > 65535 {
		return ValidationError("server.port must be between 1024 and 65535, got %d", s.Server.Port)
	}
	if s.Metrics.Port != 0 && (s.Metrics.Port < 1024 || s.Metrics.Port > 65535) {
		return ValidationError("metrics.port must be 0 or between 1024 and 65535, got %d", s.Metrics.Port)
	}
	if s.Staging.Root == "" {
		return ValidationError("staging.root is required")
	}
	if s.Sources.Git.Enabled && s.Sources.Git.CloneRoot == "" {
		return ValidationError("sources.git.clone_root is required when git is enabled")
	}
	if s.RateLimit.PerMinute < 0 || s.RateLimit.Burst < 0 {
		return ValidationError("rate_limit values must not be negative")
	}
	if !s.Lock.Backend.IsValid() {
		return ValidationError("lock.backend must be %q or %q, got %q",
			LockBackendMemory, LockBackendRedis, s.Lock.Backend)
	}
	if s.Lock.Backend == LockBackendRedis && s.Lock.RedisAddr == "" {
		return ValidationError("lock.redis_addr is required for the redis lock backend")
	}
	if !validLogLevels[s.Log.Level] {
		return ValidationError("log.level %q is not one of debug, info, warn, error", s.Log.Level)
	}
	if !validLogFormats[s.Log.Format] {
		return ValidationError("log.format %q is not one of json, console", s.Log.Format)
	}
	return nil
}
