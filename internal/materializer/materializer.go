// Package materializer turns an enumerated grid into on-disk runs: one
// directory per combination holding its parameter record, plus the shared
// batch script and a human-readable sweep summary at the sweep root.
package materializer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gridsweep/gridsweep/internal/ctxlog"
	"github.com/gridsweep/gridsweep/internal/fsutil"
	"github.com/gridsweep/gridsweep/internal/manifest"
	"github.com/gridsweep/gridsweep/internal/profile"
	"github.com/gridsweep/gridsweep/internal/run"
	"github.com/gridsweep/gridsweep/internal/scheduler"
	"github.com/gridsweep/gridsweep/internal/sweep"
)

// Artifact names inside a sweep root.
const (
	RunsDirName    = "runs"
	ParamsFileName = "params.json"
	ScriptFileName = "job.sh"
	SummaryName    = "sweep.json"
)

// DirectoryExistsError reports a conflicting run directory left by a prior
// sweep. It aborts the whole generate step: materializing around it would
// misalign run IDs.
type DirectoryExistsError struct {
	Path string
}

func (e *DirectoryExistsError) Error() string {
	return "run directory already exists and is not empty: " + e.Path + " (use --overwrite to replace)"
}

// Options controls materialization behavior.
type Options struct {
	// Overwrite allows re-materializing over existing run directories.
	Overwrite bool
}

// summary is the human-readable sweep description written next to the runs.
type summary struct {
	Name       string   `json:"name,omitempty"`
	Parameters []string `json:"parameters"`
	TotalRuns  int      `json:"total_runs"`
}

// Materialize expands the spec's grid under sweepRoot: a conflict scan over
// every target directory first, then the run directories and parameter
// records, the batch script, the sweep summary, and finally the manifest,
// written atomically with every run MATERIALIZED. Nothing is written before
// the conflict scan passes.
func Materialize(ctx context.Context, spec *sweep.Spec, prof *profile.Profile, sweepRoot string, opts Options) ([]*run.Run, error) {
	logger := ctxlog.FromContext(ctx)

	grid, err := sweep.NewGrid(spec)
	if err != nil {
		return nil, err
	}
	total := grid.Len()

	runsDir := filepath.Join(sweepRoot, RunsDirName)
	runs := make([]*run.Run, 0, total)
	if err := grid.Each(func(i int, ps run.ParameterSet) error {
		id := run.FormatID(i, total)
		runs = append(runs, &run.Run{
			ID:     id,
			Params: ps,
			Dir:    filepath.Join(runsDir, id),
			State:  run.StatePending,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if !opts.Overwrite {
		for _, r := range runs {
			if _, err := os.Stat(r.Dir); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, errors.Wrapf(err, "checking run directory %s", r.Dir)
			}
			empty, err := fsutil.IsDirEmpty(r.Dir)
			if err != nil {
				return nil, errors.Wrapf(err, "checking run directory %s", r.Dir)
			}
			if !empty {
				return nil, &DirectoryExistsError{Path: r.Dir}
			}
		}
	}
	logger.Debug("conflict scan passed", "runs", total)

	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating runs directory")
	}

	records := make([]manifest.Record, 0, total)
	for _, r := range runs {
		if err := writeRun(r); err != nil {
			return nil, err
		}
		r.State = run.StateMaterialized
		records = append(records, manifest.FromRun(r))
	}

	script, err := scheduler.RenderScript(prof)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(sweepRoot, ScriptFileName), []byte(script), 0o755); err != nil {
		return nil, errors.Wrap(err, "writing batch script")
	}

	if err := writeSummary(spec, total, sweepRoot); err != nil {
		return nil, err
	}

	if err := manifest.Create(sweepRoot, records); err != nil {
		return nil, err
	}

	logger.Info("sweep materialized", "runs", total, "root", sweepRoot)
	return runs, nil
}

// writeRun creates one run directory and its single-line parameter record.
func writeRun(r *run.Run) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating run directory %s", r.Dir)
	}
	line, err := json.Marshal(r.Params)
	if err != nil {
		return errors.Wrapf(err, "encoding parameters for run %s", r.ID)
	}
	line = append(line, '\n')
	path := filepath.Join(r.Dir, ParamsFileName)
	return errors.Wrapf(os.WriteFile(path, line, 0o644), "writing %s", path)
}

func writeSummary(spec *sweep.Spec, total int, sweepRoot string) error {
	names := make([]string, 0, len(spec.Params))
	for _, p := range spec.Params {
		names = append(names, p.Name)
	}
	raw, err := json.MarshalIndent(summary{Name: spec.Name, Parameters: names, TotalRuns: total}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding sweep summary")
	}
	raw = append(raw, '\n')
	path := filepath.Join(sweepRoot, SummaryName)
	return errors.Wrapf(os.WriteFile(path, raw, 0o644), "writing %s", path)
}
