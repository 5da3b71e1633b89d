// Package scheduler is the boundary to the external cluster batch system.
// The orchestrator never runs jobs itself; it hands each run to a Scheduler
// and records the job ID the cluster assigns.
package scheduler

import (
	"context"
	"fmt"
)

// SubmitRequest describes one job submission: the shared batch script, the
// per-run log destinations, and the arguments passed through to the script.
type SubmitRequest struct {
	RunID string
	// Script is the path to the rendered batch script.
	Script string
	// StdoutPath and StderrPath are per-run log destinations. They may
	// contain the scheduler's own job-ID placeholders (e.g. %j for slurm).
	StdoutPath string
	StderrPath string
	// Args are passed to the script unchanged. For a sweep run this is the
	// single serialized parameter record.
	Args []string
}

// Scheduler submits one job and blocks until the external batch system
// accepts or rejects it.
type Scheduler interface {
	// Submit returns the scheduler-assigned job ID on acceptance. Rejection
	// or unreachability yields a *SubmissionError.
	Submit(ctx context.Context, req SubmitRequest) (string, error)
}

// SubmissionError reports that the external scheduler rejected a run's job
// or could not be reached. It is recorded against the run; it never aborts
// the rest of the sweep.
type SubmissionError struct {
	RunID  string
	Output string
	Err    error
}

func (e *SubmissionError) Error() string {
	msg := fmt.Sprintf("submitting run %s: %v", e.RunID, e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
