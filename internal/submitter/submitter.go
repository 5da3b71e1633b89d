// Package submitter drives job submission for a materialized sweep:
// strictly sequential, one blocking scheduler call per run, with each
// outcome appended to the manifest before the next run starts. Parallelism
// across jobs belongs to the cluster, not to this process.
package submitter

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gridsweep/gridsweep/internal/ctxlog"
	"github.com/gridsweep/gridsweep/internal/manifest"
	"github.com/gridsweep/gridsweep/internal/materializer"
	"github.com/gridsweep/gridsweep/internal/run"
	"github.com/gridsweep/gridsweep/internal/scheduler"
)

// Options controls driver behavior.
type Options struct {
	// Resume skips runs already SUBMITTED and retries MATERIALIZED and
	// SUBMIT_FAILED ones. Without it, a sweep that already has submission
	// records is refused.
	Resume bool
}

// Result summarizes one submit invocation.
type Result struct {
	Submitted int
	Failed    int
	Skipped   int
}

// Submit submits every run of the sweep at sweepRoot that still needs it.
// Per-run scheduler failures are recorded and never abort the batch; the
// error return is reserved for conditions that stop the driver entirely
// (missing manifest, manifest write failure, context cancellation).
func Submit(ctx context.Context, sched scheduler.Scheduler, sweepRoot string, opts Options) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	m, err := manifest.Read(sweepRoot)
	if err != nil {
		return nil, err
	}

	if !opts.Resume {
		for _, r := range m.Runs() {
			if r.State == run.StateSubmitted || r.State == run.StateSubmitFailed {
				return nil, errors.Errorf("sweep already has submission records (run %s is %s); use --resume to submit the remaining runs", r.ID, r.State)
			}
		}
	}

	appender, err := manifest.OpenAppender(sweepRoot)
	if err != nil {
		return nil, err
	}
	defer appender.Close()

	scriptPath := filepath.Join(sweepRoot, materializer.ScriptFileName)
	result := &Result{}

	for _, r := range m.Runs() {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "submission interrupted")
		}
		if r.State == run.StateSubmitted {
			result.Skipped++
			continue
		}

		record, err := json.Marshal(r.Params)
		if err != nil {
			return result, errors.Wrapf(err, "encoding parameters for run %s", r.ID)
		}

		jobID, err := sched.Submit(ctx, scheduler.SubmitRequest{
			RunID:      r.ID,
			Script:     scriptPath,
			StdoutPath: filepath.Join(r.Dir, "%j.out"),
			StderrPath: filepath.Join(r.Dir, "%j.err"),
			Args:       []string{string(record)},
		})
		if err != nil {
			r.State = run.StateSubmitFailed
			r.JobID = ""
			r.Error = err.Error()
			result.Failed++
			logger.Warn("submission failed", "run_id", r.ID, "error", err)
		} else {
			r.State = run.StateSubmitted
			r.JobID = jobID
			r.Error = ""
			result.Submitted++
			logger.Info("run submitted", "run_id", r.ID, "job_id", jobID)
		}

		if err := appender.Append(manifest.FromRun(r)); err != nil {
			return result, err
		}
	}

	return result, nil
}
