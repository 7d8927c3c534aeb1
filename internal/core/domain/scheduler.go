package domain

import "time"

// maxTaskErrors bounds each task's rolling error list.
const maxTaskErrors = 20

// DefaultTaskInterval applies to catalogue entries that name no
// interval. A zero interval would make a task due on every tick.
const DefaultTaskInterval = time.Hour

// ScheduledTask represents a recurring ingestion task.
type ScheduledTask struct {
	// Name is the unique identifier for the task.
	Name string

	// Source is the provider this task ingests from.
	// Empty for composite tasks that run every enabled source.
	Source SourceType

	// Query is the search expression the task runs.
	Query string

	// MaxResults caps each cycle's fetch.
	MaxResults int

	// Interval defines how often the task should run.
	Interval time.Duration

	// Enabled indicates whether the task is active.
	Enabled bool

	// NextRun is when the task should run next.
	NextRun time.Time
}

// TaskStats is a task's rolling execution statistics.
type TaskStats struct {
	Name        string
	Executions  int64
	LastRun     time.Time
	LastSuccess time.Time

	// Signals accumulates signals saved across runs.
	Signals int64

	// Paused indicates runtime suspension via PauseTask.
	Paused bool

	// RecentErrors keeps the last errors, bounded.
	RecentErrors []string
}

// AppendError records an error message, evicting the oldest beyond the cap.
func (s *TaskStats) AppendError(msg string) {
	s.RecentErrors = append(s.RecentErrors, msg)
	if len(s.RecentErrors) > maxTaskErrors {
		s.RecentErrors = s.RecentErrors[len(s.RecentErrors)-maxTaskErrors:]
	}
}

// SchedulerConfig holds the static task catalogue.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tasks is the catalogue of named tasks.
	Tasks []ScheduledTask
}

// DefaultSchedulerConfig returns sensible defaults: one task per known
// provider plus a composite sweep, mirroring unattended operation.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Tasks: []ScheduledTask{
			{
				Name:       "twitter-sweep",
				Source:     SourceTwitter,
				Query:      "lead generation OR b2b saas",
				MaxResults: 50,
				Interval:   15 * time.Minute,
				Enabled:    true,
			},
			{
				Name:       "news-sweep",
				Source:     SourceNews,
				Query:      "lead generation",
				MaxResults: 50,
				Interval:   time.Hour,
				Enabled:    true,
			},
			{
				Name:     "all-sources",
				Query:    "marketing automation",
				Interval: 6 * time.Hour,
				Enabled:  false,
			},
		},
	}
}
