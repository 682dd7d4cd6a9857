// Package domain defines the core business entities for policy-reader.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Location: A parsed document location URI
//   - Credentials: Per-source authentication material
//   - StagedFile: Document bytes fetched into a staging area
//   - ParsedDocument: Normalised content plus metadata
//   - DirectoryEntry: One file found by a listing
//   - Outcome: The success/error envelope returned to callers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
