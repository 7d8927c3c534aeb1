package domain

import "time"

// CycleStep identifies where in a cycle an error occurred.
type CycleStep string

const (
	// StepFetch covers connector resolution and the fetch call.
	StepFetch CycleStep = "fetch"

	// StepSave covers per-signal store upserts.
	StepSave CycleStep = "save"
)

// CycleError is one orchestration-level failure within a cycle.
type CycleError struct {
	Step    CycleStep
	Message string
	At      time.Time
}

// IngestionResult is one fetch-and-persist cycle's outcome.
// Created fresh per cycle, never mutated after return.
type IngestionResult struct {
	Source        SourceType
	Query         string
	SignalsFound  int
	SignalsSaved  int
	SignalsFailed int
	Duration      time.Duration
	Errors        []CycleError
	Success       bool
}

// CycleConfig names one source/query pair for batch ingestion.
type CycleConfig struct {
	Source  SourceType
	Query   string
	Options CycleOptions
}

// CycleOptions parameterizes one ingestion cycle.
type CycleOptions struct {
	// MaxResults caps fetched items; zero falls back to the connector default.
	MaxResults int

	// ContinueOnError selects best-effort (true, the default) vs.
	// all-or-nothing save semantics. Under strict mode the first save
	// failure aborts the loop; upserts already issued stay committed.
	ContinueOnError bool

	// Since, Until, Language and Filters pass through to FetchOptions.
	Since    time.Time
	Until    time.Time
	Language string
	Filters  map[string]string
}

// DefaultCycleOptions returns best-effort options.
func DefaultCycleOptions() CycleOptions {
	return CycleOptions{ContinueOnError: true}
}

// BatchIngestionResult aggregates concurrent ingestion cycles.
type BatchIngestionResult struct {
	Results       []IngestionResult
	TotalFound    int
	TotalSaved    int
	TotalFailed   int
	Duration      time.Duration
	SucceededRuns int
	FailedRuns    int
}

// BatchFetchOptions parameterizes a registry fan-out across sources.
type BatchFetchOptions struct {
	// Sources limits the fan-out; empty means all enabled sources.
	Sources []SourceType

	// Options is applied to every connector fetch.
	Options FetchOptions

	// Sequential runs connectors one at a time, for providers sharing a
	// global quota. The zero value fans out in parallel.
	Sequential bool

	// TimeoutPerConnector bounds each connector call.
	TimeoutPerConnector time.Duration

	// FailFast aborts the fan-out on the first source failure. The zero
	// value collects per-source failures and keeps going.
	FailFast bool
}

// BatchFetchResult aggregates a fan-out across connectors.
type BatchFetchResult struct {
	// Signals combines every successful source's signals.
	Signals []Signal

	// Results maps each successful source to its fetch result.
	Results map[SourceType]*FetchResult

	// Errors maps each failed source to its failure.
	Errors map[SourceType]error

	Succeeded []SourceType
	Failed    []SourceType

	TotalFound int
	Duration   time.Duration
}
