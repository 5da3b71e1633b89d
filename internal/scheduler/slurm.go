package scheduler

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/gridsweep/gridsweep/internal/ctxlog"
)

// Slurm submits jobs by shelling out to sbatch. Each Submit call blocks
// until sbatch exits, which is when slurm has either queued the job or
// rejected it.
type Slurm struct {
	// Bin is the sbatch executable. Overridable for tests.
	Bin string
}

// NewSlurm returns a Slurm scheduler using the sbatch binary on PATH.
func NewSlurm() *Slurm {
	return &Slurm{Bin: "sbatch"}
}

// Submit runs `sbatch --parsable` and reads the assigned job ID from its
// stdout. With --parsable the first line is `<jobid>` or `<jobid>;<cluster>`.
func (s *Slurm) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	args := []string{"--parsable"}
	if req.StdoutPath != "" {
		args = append(args, "--output="+req.StdoutPath)
	}
	if req.StderrPath != "" {
		args = append(args, "--error="+req.StderrPath)
	}
	args = append(args, req.Script)
	args = append(args, req.Args...)

	ctxlog.FromContext(ctx).Debug("invoking scheduler", "bin", s.Bin, "run_id", req.RunID)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &SubmissionError{
			RunID:  req.RunID,
			Output: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	jobID := parseJobID(stdout.String())
	if jobID == "" {
		return "", &SubmissionError{
			RunID: req.RunID,
			Err:   errors.Errorf("%s produced no job ID", s.Bin),
		}
	}
	return jobID, nil
}

// parseJobID extracts the job ID from sbatch --parsable output.
func parseJobID(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	jobID, _, _ := strings.Cut(line, ";")
	return strings.TrimSpace(jobID)
}
