package report

import (
	"time"

	"github.com/google/uuid"
)

// Stage names a step of the run.
type Stage string

// Run stages in execution order.
const (
	StageLoad      Stage = "load"
	StageIssuers   Stage = "issuers"
	StageCatalog   Stage = "catalog"
	StageMatrix    Stage = "matrix"
	StageLedger    Stage = "ledger"
	StageProviders Stage = "providers"
)

// Status is the outcome of one unit of work.
type Status string

// Outcomes.
const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// PartitionResult records the outcome for one tab or partition.
type PartitionResult struct {
	Stage  Stage
	Key    string
	Status Status
	Reason string
	Rows   int
}

// RunSummary aggregates the results of a run.
type RunSummary struct {
	Started  time.Time
	Finished time.Time
	RunID    string
	Results  []PartitionResult
}

// NewRunSummary starts a summary with a fresh run id.
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
}

// Add appends a result.
func (s *RunSummary) Add(r PartitionResult) {
	s.Results = append(s.Results, r)
}

func (s *RunSummary) succeed(stage Stage, key string, rows int) {
	s.Add(PartitionResult{Stage: stage, Key: key, Status: StatusSuccess, Rows: rows})
}

func (s *RunSummary) skip(stage Stage, key, reason string) {
	s.Add(PartitionResult{Stage: stage, Key: key, Status: StatusSkipped, Reason: reason})
}

func (s *RunSummary) fail(stage Stage, key string, err error) {
	s.Add(PartitionResult{Stage: stage, Key: key, Status: StatusFailed, Reason: err.Error()})
}

// Failed returns the failed results.
func (s *RunSummary) Failed() []PartitionResult {
	var out []PartitionResult
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

// Counts tallies results by status.
func (s *RunSummary) Counts() map[Status]int {
	counts := map[Status]int{StatusSuccess: 0, StatusSkipped: 0, StatusFailed: 0}
	for _, r := range s.Results {
		counts[r.Status]++
	}
	return counts
}

// Stage returns the results of one stage.
func (s *RunSummary) Stage(stage Stage) []PartitionResult {
	var out []PartitionResult
	for _, r := range s.Results {
		if r.Stage == stage {
			out = append(out, r)
		}
	}
	return out
}

// Duration is the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}
