// Package search runs song searches for the web front end and the CLI.
//
// A Service resolves the raw form input into an effective query, runs it
// against a Backend and wraps the results with the sort dropdown options
// and the pagination summary. Index is the bleve backed Backend built from
// the catalog; CachedBackend adds an LRU result cache in front of it.
package search
