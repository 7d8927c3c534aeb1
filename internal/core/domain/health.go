package domain

import "time"

// RunStatus is the health monitor's lifecycle state.
type RunStatus string

const (
	// RunIdle means no run is in flight.
	RunIdle RunStatus = "IDLE"

	// RunActive means a run is in flight.
	RunActive RunStatus = "RUNNING"

	// RunError means the last run failed; cleared by the next success.
	RunError RunStatus = "ERROR"
)

// HealthStatus grades recent operational health.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "HEALTHY"
	HealthDegraded HealthStatus = "DEGRADED"
	HealthCritical HealthStatus = "CRITICAL"
)

// ExecutionRecord is one run in the monitor's bounded history.
type ExecutionRecord struct {
	ID        string
	Source    SourceType
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Signals   int
	Error     string
}

// HealthSnapshot is a point-in-time copy of the monitor's state.
// Cumulative counters reset only by explicit admin action.
type HealthSnapshot struct {
	Status       RunStatus
	ActiveSource SourceType

	TotalExecutions       int64
	SuccessfulExecutions  int64
	ErrorsCount           int64
	TotalSignalsCollected int64

	LastSuccessfulRun time.Time
	LastError         string
	LastErrorTime     time.Time

	// AvgRunDuration is the moving average of completed run durations.
	AvgRunDuration time.Duration

	StartedAt time.Time
}

// HealthMetrics are derived on demand, never stored.
type HealthMetrics struct {
	// SuccessRate is successfulExecutions / totalExecutions * 100.
	SuccessRate float64

	// SignalsPerMinute is the collection rate since monitor start.
	SignalsPerMinute float64

	// ErrorsPerHour counts errors recorded within the last hour.
	ErrorsPerHour float64

	// Health grades recent error density.
	Health HealthStatus
}
