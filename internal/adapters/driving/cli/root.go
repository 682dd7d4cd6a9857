// Package cli provides the policy-reader command line.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// callerName identifies CLI invocations in the audit trail.
const callerName = "cli"

// Services is everything the commands run against.
type Services struct {
	Settings domain.Settings
	Logger   *zap.Logger

	Tools   driving.ToolService
	Catalog driving.CatalogService

	// Audit is nil when the persistent audit trail is disabled.
	Audit driven.AuditStore
	// Metrics is nil when metrics are disabled.
	Metrics http.Handler

	// Background runs alongside the MCP server until its context ends,
	// e.g. the secrets file watcher.
	Background []func(ctx context.Context) error

	// Close releases resources. May be nil.
	Close func() error
}

// Bootstrap builds Services from a config file path.
type Bootstrap func(ctx context.Context, configPath string, verbose bool) (*Services, error)

var (
	version = "dev"

	configPath string
	verbose    bool

	bootstrap Bootstrap
	services  *Services
)

var rootCmd = &cobra.Command{
	Use:   "policy-reader",
	Short: "Read policy documents from anywhere as plain text",
	Long: `policy-reader fetches documents from local paths, S3, git, SMB shares and
HTTP endpoints and returns their text content and metadata.

It runs as an MCP server exposing the read-document and list-documents tools,
or directly from the command line.`,
	SilenceUsage:       true,
	PersistentPostRunE: closeServices,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.policy-reader/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context, buildVersion string, b Bootstrap) error {
	if buildVersion != "" {
		version = buildVersion
	}
	bootstrap = b
	err := rootCmd.ExecuteContext(ctx)
	// Post-run hooks are skipped when a command fails.
	return errors.Join(err, closeServices(nil, nil))
}

// loadServices bootstraps on first use so commands like version never
// touch configuration.
func loadServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}
	s, err := bootstrap(cmd.Context(), configPath, verbose)
	if err != nil {
		return nil, err
	}
	services = s
	return s, nil
}

func closeServices(_ *cobra.Command, _ []string) error {
	if services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services = nil
	return err
}
