package driving

import (
	"context"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
)

// Scheduler fires ingestion cycles on fixed schedules without operator
// intervention.
type Scheduler interface {
	// Start initializes the orchestrator once and runs the scheduling
	// loop. Blocks until Stop is called or the context ends.
	Start(ctx context.Context) error

	// Stop halts every timer, waits for in-flight tasks, then shuts the
	// orchestrator down.
	Stop() error

	// PauseTask suspends one task without affecting the others.
	PauseTask(name string) error

	// ResumeTask reactivates a paused task.
	ResumeTask(name string) error

	// TaskStats returns each task's rolling statistics.
	TaskStats() []domain.TaskStats
}
