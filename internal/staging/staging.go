// Package staging provides per-invocation scratch directories for fetched
// documents.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.StagingFactory = (*Factory)(nil)

// Factory creates staging areas under a root directory.
type Factory struct {
	root string
}

// NewFactory creates a factory rooted at root.
// If root is empty, os.TempDir()/policy-reader is used.
func NewFactory(root string) *Factory {
	if root == "" {
		root = filepath.Join(os.TempDir(), "policy-reader")
	}
	return &Factory{root: root}
}

// Root returns the root directory.
func (f *Factory) Root() string {
	return f.root
}

// NewArea returns a fresh area. No directory is created until it is used.
func (f *Factory) NewArea(maxBytes int64) driven.StagingArea {
	return &Area{dir: filepath.Join(f.root, uuid.NewString()), maxBytes: maxBytes}
}

// Area is a uuid-named directory under the factory root.
type Area struct {
	mu       sync.Mutex
	dir      string
	maxBytes int64
	created  bool
	removed  bool
}

// MaxBytes returns the size limit given to NewArea.
func (a *Area) MaxBytes() int64 {
	return a.maxBytes
}

// Dir returns the area directory, creating it on first use.
func (a *Area) Dir() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.removed {
		return "", errors.New("staging area already cleaned up")
	}
	if !a.created {
		if err := os.MkdirAll(a.dir, 0700); err != nil {
			return "", fmt.Errorf("creating staging directory: %w", err)
		}
		a.created = true
	}
	return a.dir, nil
}

// Path returns a path for name inside the area.
func (a *Area) Path(name string) (string, error) {
	dir, err := a.Dir()
	if err != nil {
		return "", err
	}

	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." {
		base = "downloaded_file"
	}
	return filepath.Join(dir, base), nil
}

// Cleanup removes the area directory.
func (a *Area) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.removed {
		return nil
	}
	a.removed = true
	if !a.created {
		return nil
	}
	return os.RemoveAll(a.dir)
}
