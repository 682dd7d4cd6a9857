// Package readers provides implementations of the SourceReader interface,
// one sub-package per source kind. Each reader knows how to recognise its
// URIs and how to fetch a document into a staging area.
//
// Readers are registered with the ReaderRegistry at startup.
package readers
