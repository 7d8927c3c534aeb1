// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to function:
//
//   - Connector: Fetches signals from one external provider
//   - ConnectorFactory: Builds connectors from registrations
//   - SignalStore: Idempotent signal persistence (the dedup boundary)
//   - ConfigStore: Injected configuration (credentials, limits, schedules)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
