// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): the connector registry,
// the ingestion orchestrator, the health monitor, the provider
// rate limiter and the scheduler.
package services
