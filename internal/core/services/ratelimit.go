package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

const (
	// DefaultRequestsPerWindow caps calls per provider per window.
	DefaultRequestsPerWindow = 30

	// DefaultWindow is the sliding rate window.
	DefaultWindow = time.Minute

	// DefaultMinInterval is the fixed minimum gap between calls to one
	// provider, enforced regardless of window occupancy.
	DefaultMinInterval = 200 * time.Millisecond

	// highWaterMark is the utilization fraction that triggers a warning.
	highWaterMark = 0.8

	// BackoffBase is the first exponential backoff step after a
	// rate-limit error.
	BackoffBase = 2 * time.Second

	// BackoffCap bounds a single backoff sleep.
	BackoffCap = time.Minute

	// MaxFetchAttempts bounds rate-limit retries per fetch.
	MaxFetchAttempts = 3
)

// ProviderLimiter throttles calls to one upstream provider with a dual
// strategy: a sliding window of recent call timestamps bounding calls per
// window, plus a token bucket enforcing a minimum inter-call interval.
type ProviderLimiter struct {
	source   domain.SourceType
	window   time.Duration
	capacity int
	bucket   *rate.Limiter

	mu    sync.Mutex
	calls []time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewProviderLimiter creates a limiter allowing perWindow calls per
// window for one provider. perWindow <= 0 falls back to the default.
func NewProviderLimiter(source domain.SourceType, perWindow int, window time.Duration) *ProviderLimiter {
	if perWindow <= 0 {
		perWindow = DefaultRequestsPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &ProviderLimiter{
		source:   source,
		window:   window,
		capacity: perWindow,
		bucket:   rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Acquire blocks until a call to the provider is allowed, then records
// the call. The calling cycle yields while waiting; calls are delayed at
// capacity, never dropped.
func (l *ProviderLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.prune(l.now())

		if len(l.calls) < l.capacity {
			if float64(len(l.calls)+1) >= float64(l.capacity)*highWaterMark {
				logger.Get().Warn().
					Str("source", string(l.source)).
					Int("in_window", len(l.calls)+1).
					Int("capacity", l.capacity).
					Msg("rate window utilization high")
			}
			l.calls = append(l.calls, l.now())
			l.mu.Unlock()

			// Fixed minimum inter-call interval on top of the window.
			return l.bucket.Wait(ctx)
		}

		// At capacity: wait until the oldest timestamp exits the window.
		wait := l.window - l.now().Sub(l.calls[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		logger.Get().Debug().
			Str("source", string(l.source)).
			Dur("wait", wait).
			Msg("rate window full, waiting for rollover")
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// InWindow returns the number of calls inside the current window.
func (l *ProviderLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.calls)
}

// prune drops timestamps older than the window. Caller holds the lock.
func (l *ProviderLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.calls = append(l.calls[:0], l.calls[i:]...)
	}
}

// Backoff returns the exponential backoff delay for a retry attempt
// (0-based): base * 2^attempt, capped.
func Backoff(attempt int) time.Duration {
	d := BackoffBase
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= BackoffCap {
			return BackoffCap
		}
	}
	if d > BackoffCap {
		d = BackoffCap
	}
	return d
}

// LimiterSet holds one ProviderLimiter per source.
type LimiterSet struct {
	mu        sync.Mutex
	window    time.Duration
	limiters  map[domain.SourceType]*ProviderLimiter
	perSource map[domain.SourceType]int
}

// NewLimiterSet creates an empty set with per-source call budgets.
// Sources without a budget get DefaultRequestsPerWindow.
func NewLimiterSet(perSource map[domain.SourceType]int) *LimiterSet {
	return &LimiterSet{
		window:    DefaultWindow,
		limiters:  make(map[domain.SourceType]*ProviderLimiter),
		perSource: perSource,
	}
}

// For returns the limiter for a source, creating it on first use.
func (s *LimiterSet) For(source domain.SourceType) *ProviderLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[source]; ok {
		return l
	}
	l := NewProviderLimiter(source, s.perSource[source], s.window)
	s.limiters[source] = l
	return l
}

// sleepCtx sleeps for d or until the context ends.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
