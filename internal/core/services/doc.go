// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval pipeline is two ordered dispatches: a ReaderRegistry picks
// the source reader for a URI, a ParserRegistry picks the parser for the
// staged file's extension. Tools wraps the pipeline with credential
// resolution, auditing and the success/error envelope.
package services
