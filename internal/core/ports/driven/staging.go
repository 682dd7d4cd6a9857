package driven

// StagingArea is a private directory owned by one invocation.
type StagingArea interface {
	// Dir returns the directory path, creating it on first use.
	Dir() (string, error)

	// Path returns a path inside the area for a file named name.
	// Only the base of name is used, so a hostile name cannot escape.
	Path(name string) (string, error)

	// Cleanup removes the area and everything in it. Safe to call twice.
	Cleanup() error

	// MaxBytes is the largest document the invocation accepts; zero means
	// no limit. Readers that know a size before transferring fail early.
	MaxBytes() int64
}

// StagingFactory creates staging areas.
type StagingFactory interface {
	// NewArea returns an area for one invocation limited to maxBytes.
	NewArea(maxBytes int64) StagingArea
}
