// Package tracing provides a thin wrapper around OpenTelemetry tracing so
// that the rest of the code-base can use plain StartSpan/EndSpan helpers
// without being concerned with the underlying implementation. All
// functionality is delegated to OpenTelemetry and nothing is re-implemented
// unless it is not available in the upstream library.
package tracing
