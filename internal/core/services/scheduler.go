package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driving"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// taskState pairs a catalogue entry with its rolling statistics.
type taskState struct {
	task  domain.ScheduledTask
	stats domain.TaskStats
}

// Scheduler fires ingestion cycles on fixed schedules. Each dispatched
// task runs on its own goroutine so one slow task never delays another's
// next tick, and every task error is caught and logged, never re-thrown.
type Scheduler struct {
	orch driving.Orchestrator
	log  zerolog.Logger

	// tick is the due-task polling resolution.
	tick time.Duration

	mu      sync.Mutex
	tasks   map[string]*taskState
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler over a static task catalogue.
func NewScheduler(cfg domain.SchedulerConfig, orch driving.Orchestrator) *Scheduler {
	s := &Scheduler{
		orch:  orch,
		log:   logger.With("scheduler"),
		tick:  time.Minute,
		tasks: make(map[string]*taskState),
	}
	for _, task := range cfg.Tasks {
		if task.Interval <= 0 {
			// A zero interval would re-dispatch on every tick.
			task.Interval = domain.DefaultTaskInterval
		}
		if task.NextRun.IsZero() {
			// First run happens on the first tick.
			task.NextRun = time.Now()
		}
		s.tasks[task.Name] = &taskState{
			task:  task,
			stats: domain.TaskStats{Name: task.Name},
		}
	}
	return s
}

// Start initializes the orchestrator once, then runs the scheduling
// loop. Blocks until Stop is called or the context ends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.orch.Initialize(ctx); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("initialize orchestrator: %w", err)
	}

	s.log.Info().Int("tasks", len(s.tasks)).Msg("scheduler started")

	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// Stop halts every timer, waits for in-flight tasks, then shuts down
// the orchestrator.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return s.orch.Shutdown(context.Background())
}

// PauseTask suspends one task without affecting the others.
func (s *Scheduler) PauseTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, name)
	}
	st.stats.Paused = true
	s.log.Info().Str("task", name).Msg("task paused")
	return nil
}

// ResumeTask reactivates a paused task.
func (s *Scheduler) ResumeTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, name)
	}
	st.stats.Paused = false
	st.task.NextRun = time.Now().Add(st.task.Interval)
	s.log.Info().Str("task", name).Msg("task resumed")
	return nil
}

// TaskStats returns each task's rolling statistics, sorted by name.
func (s *Scheduler) TaskStats() []domain.TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.TaskStats, 0, len(s.tasks))
	for _, st := range s.tasks {
		stats := st.stats
		stats.RecentErrors = append([]string(nil), st.stats.RecentErrors...)
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// checkAndRunDueTasks dispatches every enabled, unpaused, due task.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*taskState
	for _, st := range s.tasks {
		if !st.task.Enabled || st.stats.Paused {
			continue
		}
		if !st.task.NextRun.After(now) {
			st.task.NextRun = now.Add(st.task.Interval)
			due = append(due, st)
		}
	}
	s.mu.Unlock()

	for _, st := range due {
		s.wg.Add(1)
		go func(name string) {
			defer s.wg.Done()
			s.runTask(ctx, name)
		}(st.task.Name)
	}
}

// runTask executes one task dispatch. It must never let an error or
// panic escape: a broken task's schedule survives transient failures.
func (s *Scheduler) runTask(ctx context.Context, name string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.recordTaskError(name, fmt.Sprintf("panic: %v", rec))
			s.log.Error().Str("task", name).Any("panic", rec).Msg("task panicked")
		}
	}()

	s.mu.Lock()
	st, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	task := st.task
	st.stats.Executions++
	st.stats.LastRun = time.Now()
	s.mu.Unlock()

	opts := domain.DefaultCycleOptions()
	opts.MaxResults = task.MaxResults

	var saved int
	var failed bool
	var errMsg string

	if task.Source == "" {
		// Composite task: one cycle per enabled source.
		batch := s.orch.RunBatchIngestion(ctx, s.compositeConfigs(task, opts))
		saved = batch.TotalSaved
		if batch.FailedRuns > 0 {
			failed = true
			errMsg = fmt.Sprintf("%d of %d runs failed", batch.FailedRuns, len(batch.Results))
		}
	} else {
		res := s.orch.RunIngestionCycle(ctx, task.Source, task.Query, opts)
		saved = res.SignalsSaved
		if !res.Success {
			failed = true
			if len(res.Errors) > 0 {
				errMsg = res.Errors[0].Message
			} else {
				errMsg = "cycle failed"
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st.stats.Signals += int64(saved)
	if failed {
		st.stats.AppendError(errMsg)
		s.log.Warn().Str("task", name).Str("error", errMsg).Msg("task run failed")
		return
	}
	st.stats.LastSuccess = time.Now()
	s.log.Debug().Str("task", name).Int("signals", saved).Msg("task run complete")
}

// compositeConfigs builds one cycle config per known source for
// composite (source-less) tasks.
func (s *Scheduler) compositeConfigs(task domain.ScheduledTask, opts domain.CycleOptions) []domain.CycleConfig {
	sources := domain.AllSourceTypes()
	configs := make([]domain.CycleConfig, 0, len(sources))
	for _, source := range sources {
		configs = append(configs, domain.CycleConfig{
			Source:  source,
			Query:   task.Query,
			Options: opts,
		})
	}
	return configs
}

// recordTaskError appends to a task's bounded error list.
func (s *Scheduler) recordTaskError(name, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.tasks[name]; ok {
		st.stats.AppendError(msg)
	}
}
