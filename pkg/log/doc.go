// Package log is the logging wrapper used across topsongs.
//
// Each component asks for a named logger once and keeps it in a package
// variable:
//
//	var logger = log.ForService("search")
//
//	logger.Infof("index rebuilt with %d songs", n)
//	logger.Debugf("effective query %q", q) // printed only when debug is on
//
// Every line carries the level and the service name:
//
//	2025/01/02 15:04:05.000000 INFO [search>] index rebuilt with 42 songs
//
// Request scoped context is attached with With:
//
//	reqLog := logger.With("req", id)
//	reqLog.Warnf("2 sort directives in %q", q)
//
// Debug output is off by default. The --debug flag enables it everywhere
// (SetGlobalDebug); --debug-services=search,query enables it for selected
// services only (EnableDebugList).
//
// Tests capture output with SetOutput(&buf).
package log
