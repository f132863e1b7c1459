// Package adapters isolates the HTTP client implementation behind a minimal
// interface so the engine stays testable and independent of a concrete
// transport.
package adapters
