package driven

import (
	"context"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// SecretStore resolves a credentials path to an opaque secret map.
type SecretStore interface {
	// Lookup returns the secrets stored at path.
	// Returns a NotFound error when the path is unknown.
	Lookup(ctx context.Context, path string) (domain.Secrets, error)
}
