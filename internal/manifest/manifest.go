// Package manifest persists the index of a sweep: one JSON record per line,
// append-only. The generate step creates the file atomically with every run
// materialized; the submit step appends one record per submission outcome.
// A run's current state is the last record carrying its run ID, so nothing
// is ever rewritten in place and an interrupted submit loses at most the
// run it was working on.
package manifest

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/gridsweep/gridsweep/internal/run"
)

// FileName is the manifest's name inside a sweep root.
const FileName = "manifest.jsonl"

// Record is one manifest line: a run's state at a point in its lifecycle.
type Record struct {
	RunID       string           `json:"run_id"`
	State       run.State        `json:"state"`
	Params      run.ParameterSet `json:"params"`
	Dir         string           `json:"dir"`
	JobID       string           `json:"job_id,omitempty"`
	Error       string           `json:"error,omitempty"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
}

// Path returns the manifest path for a sweep root.
func Path(sweepRoot string) string {
	return filepath.Join(sweepRoot, FileName)
}

// FromRun builds the record for a run's current state.
func FromRun(r *run.Run) Record {
	rec := Record{
		RunID:  r.ID,
		State:  r.State,
		Params: r.Params,
		Dir:    r.Dir,
		JobID:  r.JobID,
		Error:  r.Error,
	}
	if r.State == run.StateSubmitted || r.State == run.StateSubmitFailed {
		now := time.Now().UTC()
		rec.SubmittedAt = &now
	}
	return rec
}

// toRun is the inverse of FromRun; the timestamp is informational only.
func (rec Record) toRun() *run.Run {
	return &run.Run{
		ID:     rec.RunID,
		Params: rec.Params,
		Dir:    rec.Dir,
		State:  rec.State,
		JobID:  rec.JobID,
		Error:  rec.Error,
	}
}

// Create writes a fresh manifest containing records atomically: a temp file
// in the same directory, renamed over the final path only after everything
// is flushed. Readers never observe a partial manifest from generate.
func Create(sweepRoot string, records []Record) error {
	tmp, err := os.CreateTemp(sweepRoot, FileName+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating manifest")
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			tmp.Close()
			return errors.Wrapf(err, "writing manifest record for run %s", rec.RunID)
		}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "flushing manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing manifest")
	}
	if err := os.Rename(tmp.Name(), Path(sweepRoot)); err != nil {
		return errors.Wrap(err, "publishing manifest")
	}
	return nil
}

// Appender appends records to an existing manifest. One appender owns the
// manifest for the duration of a submit invocation.
type Appender struct {
	f   *os.File
	enc *json.Encoder
}

// OpenAppender opens the sweep's manifest for appending. The manifest must
// already exist; a sweep that was never generated has nothing to submit.
func OpenAppender(sweepRoot string) (*Appender, error) {
	f, err := os.OpenFile(Path(sweepRoot), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest for append")
	}
	return &Appender{f: f, enc: json.NewEncoder(f)}, nil
}

// Append writes one record and syncs it to disk before returning, so a
// record the caller saw succeed survives process termination.
func (a *Appender) Append(rec Record) error {
	if err := a.enc.Encode(rec); err != nil {
		return errors.Wrapf(err, "appending manifest record for run %s", rec.RunID)
	}
	return errors.Wrap(a.f.Sync(), "syncing manifest")
}

// Close releases the manifest file.
func (a *Appender) Close() error {
	return a.f.Close()
}

// Manifest is the read view of a sweep: every run in generation order with
// its current (latest-recorded) state.
type Manifest struct {
	runs []*run.Run
	byID map[string]*run.Run
}

// Read loads and resolves the manifest for a sweep root.
func Read(sweepRoot string) (*Manifest, error) {
	f, err := os.Open(Path(sweepRoot))
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest")
	}
	defer f.Close()

	m := &Manifest{byID: make(map[string]*run.Run)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, errors.Wrapf(err, "manifest line %d", line)
		}
		r := rec.toRun()
		if existing, ok := m.byID[r.ID]; ok {
			// Later records supersede earlier ones in place, preserving
			// generation order.
			*existing = *r
			continue
		}
		m.byID[r.ID] = r
		m.runs = append(m.runs, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	return m, nil
}

// Runs returns every run in generation order.
func (m *Manifest) Runs() []*run.Run {
	return m.runs
}

// Get looks up a run by ID.
func (m *Manifest) Get(runID string) (*run.Run, bool) {
	r, ok := m.byID[runID]
	return r, ok
}

// CountByState tallies runs per state.
func (m *Manifest) CountByState() map[run.State]int {
	counts := make(map[run.State]int)
	for _, r := range m.runs {
		counts[r.State]++
	}
	return counts
}
