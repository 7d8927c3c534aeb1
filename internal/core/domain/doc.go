// Package domain defines the core business entities for the signal
// ingestion engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Signal: A canonical normalized record collected from a provider
//   - FetchResult: One connector fetch operation's outcome
//   - IngestionResult: One fetch-and-persist cycle's outcome
//   - HealthState: Process-wide collection health snapshot
//   - ScheduledTask: A recurring ingestion task
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
