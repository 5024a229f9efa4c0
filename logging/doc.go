// Package logging provides a minimal logging interface and adapters for modelmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that providers and model adapters use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelDebug, "text", false)
//	provider, err := openai.NewProvider(func(o *openai.ProviderOptions) {
//		o.Logger = logger
//	})
//
// Providers never log API keys; resolution decisions are logged at debug level.
package logging
