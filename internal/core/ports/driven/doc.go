// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceReader: Fetches a document from one kind of source
//   - Parser: Converts one family of file formats into text plus metadata
//   - StagingFactory: Creates a per-invocation staging area
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SecretStore: Resolves credentials paths. Without it credentials_path must be empty.
//   - Auditor: Records tool invocations. Without it nothing is audited.
//   - KeyedLocker: Serialises git working tree access. Defaults to an in-process lock.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, reader, or parser package
package driven
