// Package logging provides a minimal logging interface and adapters for supportmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runner, flows, tools and the dispatch loop use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - ZerologAdapter, the default backend built by New
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.New(logging.Config{Level: logging.LogLevelDebug, Format: "json"})
//	run := runner.New(func(o *runner.Options) { o.Logger = logger })
package logging
