package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

const (
	// historyCap bounds the execution history ring.
	historyCap = 100

	// criticalErrorWindow and criticalErrorCount grade CRITICAL health.
	criticalErrorWindow = 5 * time.Minute
	criticalErrorCount  = 5

	// degradedErrorCount and degradedSuccessRate grade DEGRADED health.
	degradedErrorCount  = 2
	degradedSuccessRate = 80.0
)

// HealthMonitor tracks the ingestion run lifecycle and cumulative
// collection counters. It is the engine's single piece of shared,
// mutable, cross-cycle state; every transition is mutex-guarded so
// concurrent cycles never race on counters.
//
// States: IDLE (no active run) -> RUNNING -> IDLE on success, or ERROR
// on failure, then IDLE again on the next successful run.
type HealthMonitor struct {
	log zerolog.Logger

	mu           sync.Mutex
	status       domain.RunStatus
	activeSource domain.SourceType
	activeRuns   int

	totalExecutions       int64
	successfulExecutions  int64
	errorsCount           int64
	totalSignalsCollected int64

	lastSuccessfulRun time.Time
	lastError         string
	lastErrorTime     time.Time

	totalRunDuration time.Duration
	completedRuns    int64

	// history is a bounded ring; open runs sit at the tail until closed.
	history []domain.ExecutionRecord
	openIdx []int

	// errorTimes backs the recent-error-density metrics; pruned to the
	// last hour on every read.
	errorTimes []time.Time

	startedAt time.Time
	now       func() time.Time
}

// NewHealthMonitor creates a monitor in the IDLE state.
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		log:       logger.With("health-monitor"),
		status:    domain.RunIdle,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// StartRun records the beginning of an ingestion cycle. Always called
// before any cycle I/O.
func (m *HealthMonitor) StartRun(source domain.SourceType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = domain.RunActive
	m.activeSource = source
	m.activeRuns++
	m.totalExecutions++

	rec := domain.ExecutionRecord{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: m.now(),
	}
	m.appendRecord(rec)
	m.openIdx = append(m.openIdx, len(m.history)-1)

	m.log.Debug().Str("source", string(source)).Msg("run started")
}

// EndRun closes the oldest open run as successful and accumulates its
// signal count. Returns domain.ErrRunNotActive without a prior StartRun.
func (m *HealthMonitor) EndRun(signalsCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.popOpenRun()
	if !ok {
		return domain.ErrRunNotActive
	}

	now := m.now()
	rec := &m.history[idx]
	rec.EndedAt = now
	rec.Success = true
	rec.Signals = signalsCount

	m.successfulExecutions++
	m.totalSignalsCollected += int64(signalsCount)
	m.lastSuccessfulRun = now
	m.totalRunDuration += now.Sub(rec.StartedAt)
	m.completedRuns++

	if m.activeRuns > 0 {
		m.activeRuns--
	}
	if m.activeRuns == 0 {
		m.status = domain.RunIdle
		m.activeSource = ""
	}

	m.log.Debug().Int("signals", signalsCount).Msg("run completed")
	return nil
}

// RecordError closes the oldest open run as failed, or records a
// standalone error when no run is open. Clears the active source.
func (m *HealthMonitor) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	m.status = domain.RunError
	m.errorsCount++
	m.lastError = msg
	m.lastErrorTime = now
	m.errorTimes = append(m.errorTimes, now)

	if idx, ok := m.popOpenRun(); ok {
		rec := &m.history[idx]
		rec.EndedAt = now
		rec.Success = false
		rec.Error = msg
		m.totalRunDuration += now.Sub(rec.StartedAt)
		m.completedRuns++
		if m.activeRuns > 0 {
			m.activeRuns--
		}
	}
	m.activeSource = ""

	m.log.Warn().Str("error", msg).Msg("run failed")
}

// Snapshot returns a point-in-time copy of the monitor's state.
func (m *HealthMonitor) Snapshot() domain.HealthSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := domain.HealthSnapshot{
		Status:                m.status,
		ActiveSource:          m.activeSource,
		TotalExecutions:       m.totalExecutions,
		SuccessfulExecutions:  m.successfulExecutions,
		ErrorsCount:           m.errorsCount,
		TotalSignalsCollected: m.totalSignalsCollected,
		LastSuccessfulRun:     m.lastSuccessfulRun,
		LastError:             m.lastError,
		LastErrorTime:         m.lastErrorTime,
		StartedAt:             m.startedAt,
	}
	if m.completedRuns > 0 {
		snap.AvgRunDuration = m.totalRunDuration / time.Duration(m.completedRuns)
	}
	return snap
}

// Metrics computes derived metrics on demand; nothing here is stored.
func (m *HealthMonitor) Metrics() domain.HealthMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.pruneErrorTimes(now)

	metrics := domain.HealthMetrics{}
	if m.totalExecutions > 0 {
		metrics.SuccessRate = float64(m.successfulExecutions) / float64(m.totalExecutions) * 100
	}
	if minutes := now.Sub(m.startedAt).Minutes(); minutes > 0 {
		metrics.SignalsPerMinute = float64(m.totalSignalsCollected) / minutes
	}
	metrics.ErrorsPerHour = float64(len(m.errorTimes))
	metrics.Health = m.healthStatusLocked(now, metrics.SuccessRate)
	return metrics
}

// History returns up to limit most recent execution records, newest
// first. limit <= 0 returns the full ring.
func (m *HealthMonitor) History(limit int) []domain.ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.ExecutionRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.history[i])
	}
	return out
}

// Reset clears the cumulative counters. Explicit admin action only.
func (m *HealthMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = domain.RunIdle
	m.activeSource = ""
	m.activeRuns = 0
	m.totalExecutions = 0
	m.successfulExecutions = 0
	m.errorsCount = 0
	m.totalSignalsCollected = 0
	m.lastSuccessfulRun = time.Time{}
	m.lastError = ""
	m.lastErrorTime = time.Time{}
	m.totalRunDuration = 0
	m.completedRuns = 0
	m.history = nil
	m.openIdx = nil
	m.errorTimes = nil
	m.startedAt = m.now()

	m.log.Info().Msg("health counters reset")
}

// healthStatusLocked grades recent error density. Degrades monotonically
// with errors; recovers only via fresh successful runs lowering the
// density and lifting the success rate. Caller holds the lock.
func (m *HealthMonitor) healthStatusLocked(now time.Time, successRate float64) domain.HealthStatus {
	recent := 0
	cutoff := now.Add(-criticalErrorWindow)
	for _, t := range m.errorTimes {
		if t.After(cutoff) {
			recent++
		}
	}

	switch {
	case recent > criticalErrorCount:
		return domain.HealthCritical
	case recent > degradedErrorCount:
		return domain.HealthDegraded
	case m.totalExecutions > 0 && successRate < degradedSuccessRate:
		return domain.HealthDegraded
	default:
		return domain.HealthHealthy
	}
}

// appendRecord pushes onto the bounded ring, evicting the oldest entry
// and shifting open-run indices. Caller holds the lock.
func (m *HealthMonitor) appendRecord(rec domain.ExecutionRecord) {
	if len(m.history) >= historyCap {
		m.history = append(m.history[1:], rec)
		for i := range m.openIdx {
			m.openIdx[i]--
		}
		// An open run evicted by overflow can no longer be closed.
		for len(m.openIdx) > 0 && m.openIdx[0] < 0 {
			m.openIdx = m.openIdx[1:]
		}
		return
	}
	m.history = append(m.history, rec)
}

// popOpenRun takes the oldest open run index. Caller holds the lock.
func (m *HealthMonitor) popOpenRun() (int, bool) {
	if len(m.openIdx) == 0 {
		return 0, false
	}
	idx := m.openIdx[0]
	m.openIdx = m.openIdx[1:]
	return idx, true
}

// pruneErrorTimes drops error timestamps older than an hour. Caller
// holds the lock.
func (m *HealthMonitor) pruneErrorTimes(now time.Time) {
	cutoff := now.Add(-time.Hour)
	i := 0
	for i < len(m.errorTimes) && !m.errorTimes[i].After(cutoff) {
		i++
	}
	if i > 0 {
		m.errorTimes = append(m.errorTimes[:0], m.errorTimes[i:]...)
	}
}
