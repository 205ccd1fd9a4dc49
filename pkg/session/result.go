package session

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/erase"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/verification"
)

// Result is the in-memory outcome of one session.
type Result struct {
	SessionID string
	Disks     []diskutil.Disk
	Attempts  map[string][]erase.Attempt
	// Erased is the executor's own success verdict per disk.
	Erased   map[string]bool
	Verdicts map[string]verification.Result
	// Failures holds the EraseTierExhausted and VerificationMismatch errors per disk.
	Failures map[string][]error
	// Recovered holds CoreStorage teardown errors that did not stop the session.
	Recovered   []error
	Overall     bool
	State       State
	States      []State
	AbortReason error
	StartedAt   time.Time
	FinishedAt  time.Time
}

func newResult(id string, started time.Time) *Result {
	return &Result{
		SessionID: id,
		Attempts:  make(map[string][]erase.Attempt),
		Erased:    make(map[string]bool),
		Verdicts:  make(map[string]verification.Result),
		Failures:  make(map[string][]error),
		StartedAt: started,
	}
}

// AttemptCount is the total number of erase attempts across all disks.
func (r *Result) AttemptCount() int {
	n := 0
	for _, attempts := range r.Attempts {
		n += len(attempts)
	}
	return n
}

// FailedDisks lists disks with at least one recorded failure, in processing order.
func (r *Result) FailedDisks() []string {
	var failed []string
	for _, d := range r.Disks {
		if len(r.Failures[d.ID]) > 0 {
			failed = append(failed, d.ID)
		}
	}
	return failed
}

// DiskRecord is the per-disk part of a completion record.
type DiskRecord struct {
	ID            string              `json:"id" yaml:"id"`
	Erased        bool                `json:"erased" yaml:"erased"`
	SucceededTier int                 `json:"succeeded_tier,omitempty" yaml:"succeeded_tier,omitempty"`
	Attempts      []erase.Attempt     `json:"attempts" yaml:"attempts"`
	Verification  verification.Result `json:"verification" yaml:"verification"`
	Failures      []string            `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Record is the completion record handed to a CompletionReporter.
type Record struct {
	SessionID  string       `json:"session_id" yaml:"session_id"`
	Host       string       `json:"host" yaml:"host"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Overall    bool         `json:"overall" yaml:"overall"`
	Disks      []DiskRecord `json:"disks" yaml:"disks"`
}

// Record flattens r for reporting.
func (r *Result) Record(host string) Record {
	rec := Record{
		SessionID:  r.SessionID,
		Host:       host,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Overall:    r.Overall,
	}
	for _, d := range r.Disks {
		attempts := r.Attempts[d.ID]
		outcome := erase.Outcome{Attempts: attempts}
		dr := DiskRecord{
			ID:            d.ID,
			Erased:        r.Erased[d.ID],
			SucceededTier: outcome.SucceededAt(),
			Attempts:      attempts,
			Verification:  r.Verdicts[d.ID],
		}
		for _, err := range r.Failures[d.ID] {
			dr.Failures = append(dr.Failures, err.Error())
		}
		rec.Disks = append(rec.Disks, dr)
	}
	return rec
}
