package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driving"
)

// stubOrchestrator records scheduler dispatches.
type stubOrchestrator struct {
	mu          sync.Mutex
	cycles      []domain.SourceType
	batches     int
	cycleResult func(source domain.SourceType) *domain.IngestionResult
	initErr     error
	shutdowns   int
	panicOnRun  bool
}

func (s *stubOrchestrator) Initialize(context.Context) error { return s.initErr }

func (s *stubOrchestrator) RunIngestionCycle(
	_ context.Context,
	source domain.SourceType,
	query string,
	opts domain.CycleOptions,
) *domain.IngestionResult {
	s.mu.Lock()
	s.cycles = append(s.cycles, source)
	fn := s.cycleResult
	s.mu.Unlock()
	if s.panicOnRun {
		panic("connector blew up")
	}
	if fn != nil {
		return fn(source)
	}
	return &domain.IngestionResult{Source: source, Query: query, SignalsSaved: 2, Success: true}
}

func (s *stubOrchestrator) RunBatchIngestion(
	ctx context.Context,
	configs []domain.CycleConfig,
) *domain.BatchIngestionResult {
	s.mu.Lock()
	s.batches++
	s.mu.Unlock()
	out := &domain.BatchIngestionResult{Results: make([]domain.IngestionResult, len(configs))}
	for i, cfg := range configs {
		out.Results[i] = domain.IngestionResult{Source: cfg.Source, SignalsSaved: 1, Success: true}
		out.TotalSaved++
		out.SucceededRuns++
	}
	return out
}

func (s *stubOrchestrator) HealthCheck(context.Context) driving.OverallHealth {
	return driving.OverallHealth{Healthy: true}
}

func (s *stubOrchestrator) GetHealthStats() domain.HealthSnapshot  { return domain.HealthSnapshot{} }
func (s *stubOrchestrator) GetHealthMetrics() domain.HealthMetrics { return domain.HealthMetrics{} }

func (s *stubOrchestrator) GetExecutionHistory(int) []domain.ExecutionRecord { return nil }

func (s *stubOrchestrator) GenerateSystemReport() string { return "" }

func (s *stubOrchestrator) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdowns++
	return nil
}

func (s *stubOrchestrator) cycleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cycles)
}

func singleTaskConfig(name string, enabled bool) domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled: true,
		Tasks: []domain.ScheduledTask{{
			Name:       name,
			Source:     domain.SourceTwitter,
			Query:      "q",
			MaxResults: 10,
			Interval:   time.Hour,
			Enabled:    enabled,
		}},
	}
}

func TestSchedulerDispatchesDueTask(t *testing.T) {
	orch := &stubOrchestrator{}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Equal(t, 1, orch.cycleCount())
	stats := s.TaskStats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Executions)
	assert.Equal(t, int64(2), stats[0].Signals)
	assert.False(t, stats[0].LastSuccess.IsZero())
	assert.Empty(t, stats[0].RecentErrors)
}

func TestSchedulerSkipsDisabledTask(t *testing.T) {
	orch := &stubOrchestrator{}
	s := NewScheduler(singleTaskConfig("sweep", false), orch)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Zero(t, orch.cycleCount())
}

func TestSchedulerDoesNotRedispatchBeforeInterval(t *testing.T) {
	orch := &stubOrchestrator{}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)

	s.checkAndRunDueTasks(context.Background())
	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Equal(t, 1, orch.cycleCount(), "next run is one interval away")
}

func TestSchedulerDefaultsZeroIntervalTask(t *testing.T) {
	orch := &stubOrchestrator{}
	cfg := singleTaskConfig("sweep", true)
	cfg.Tasks[0].Interval = 0
	s := NewScheduler(cfg, orch)

	s.checkAndRunDueTasks(context.Background())
	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	assert.Equal(t, 1, orch.cycleCount(), "a task without an interval must not fire on every tick")
}

func TestSchedulerPauseAndResume(t *testing.T) {
	orch := &stubOrchestrator{}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)

	require.NoError(t, s.PauseTask("sweep"))
	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()
	assert.Zero(t, orch.cycleCount())

	require.NoError(t, s.ResumeTask("sweep"))
	stats := s.TaskStats()
	require.Len(t, stats, 1)
	assert.False(t, stats[0].Paused)
	assert.True(t, stats[0].LastRun.IsZero())
}

func TestSchedulerUnknownTask(t *testing.T) {
	s := NewScheduler(domain.SchedulerConfig{}, &stubOrchestrator{})

	assert.ErrorIs(t, s.PauseTask("nope"), domain.ErrTaskNotFound)
	assert.ErrorIs(t, s.ResumeTask("nope"), domain.ErrTaskNotFound)
}

func TestSchedulerRecordsTaskFailure(t *testing.T) {
	orch := &stubOrchestrator{
		cycleResult: func(source domain.SourceType) *domain.IngestionResult {
			return &domain.IngestionResult{
				Source:  source,
				Success: false,
				Errors:  []domain.CycleError{{Step: domain.StepFetch, Message: "upstream 500"}},
			}
		},
	}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	stats := s.TaskStats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1), stats[0].Executions)
	assert.True(t, stats[0].LastSuccess.IsZero())
	require.Len(t, stats[0].RecentErrors, 1)
	assert.Equal(t, "upstream 500", stats[0].RecentErrors[0])
}

func TestSchedulerSurvivesTaskPanic(t *testing.T) {
	orch := &stubOrchestrator{panicOnRun: true}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	stats := s.TaskStats()
	require.Len(t, stats, 1)
	require.Len(t, stats[0].RecentErrors, 1)
	assert.Contains(t, stats[0].RecentErrors[0], "panic")
}

func TestSchedulerCompositeTaskRunsBatch(t *testing.T) {
	orch := &stubOrchestrator{}
	cfg := domain.SchedulerConfig{
		Enabled: true,
		Tasks: []domain.ScheduledTask{{
			Name:     "all-sources",
			Query:    "marketing",
			Interval: time.Hour,
			Enabled:  true,
		}},
	}
	s := NewScheduler(cfg, orch)

	s.checkAndRunDueTasks(context.Background())
	s.wg.Wait()

	orch.mu.Lock()
	batches := orch.batches
	orch.mu.Unlock()
	assert.Equal(t, 1, batches)
	assert.Zero(t, orch.cycleCount())

	stats := s.TaskStats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(len(domain.AllSourceTypes())), stats[0].Signals)
}

func TestSchedulerStartStop(t *testing.T) {
	orch := &stubOrchestrator{}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)
	s.tick = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	require.Eventually(t, func() bool { return orch.cycleCount() >= 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler loop did not exit")
	}

	orch.mu.Lock()
	defer orch.mu.Unlock()
	assert.Equal(t, 1, orch.shutdowns)
}

func TestSchedulerStartFailsWhenInitializeFails(t *testing.T) {
	orch := &stubOrchestrator{initErr: assert.AnError}
	s := NewScheduler(singleTaskConfig("sweep", true), orch)

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSchedulerTaskStatsSorted(t *testing.T) {
	cfg := domain.DefaultSchedulerConfig()
	s := NewScheduler(cfg, &stubOrchestrator{})

	stats := s.TaskStats()
	require.Len(t, stats, len(cfg.Tasks))
	for i := 1; i < len(stats); i++ {
		assert.Less(t, stats[i-1].Name, stats[i].Name)
	}
}
