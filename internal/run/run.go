// Package run defines the per-combination unit of a sweep: one parameter
// assignment, its identity within the sweep, and its submission state.
package run

import (
	"fmt"
	"strconv"
)

// State is the lifecycle state of a Run.
type State string

const (
	// StatePending means the Run exists only in memory, produced by grid
	// enumeration.
	StatePending State = "PENDING"
	// StateMaterialized means the Run's directory and parameter record have
	// been written.
	StateMaterialized State = "MATERIALIZED"
	// StateSubmitted means the scheduler accepted the Run's job and assigned
	// a job ID. Terminal.
	StateSubmitted State = "SUBMITTED"
	// StateSubmitFailed means the scheduler rejected the Run or was
	// unreachable. Terminal, recorded with the captured error text.
	StateSubmitFailed State = "SUBMIT_FAILED"
)

// Run is one concrete parameter combination of a sweep and, after
// submission, its scheduler job.
type Run struct {
	ID     string
	Params ParameterSet
	Dir    string
	State  State
	JobID  string
	Error  string
}

// minIDWidth keeps small sweeps readable: a 6-run sweep gets IDs 000..005.
const minIDWidth = 3

// IDWidth returns the zero-pad width for run IDs in a sweep of the given size.
func IDWidth(total int) int {
	width := len(strconv.Itoa(total - 1))
	if total <= 1 {
		width = 1
	}
	if width < minIDWidth {
		width = minIDWidth
	}
	return width
}

// FormatID renders the run ID for the combination at the given position in
// the enumeration. IDs are a pure function of position, never of time, so a
// regenerated sweep assigns identical IDs.
func FormatID(index, total int) string {
	return fmt.Sprintf("%0*d", IDWidth(total), index)
}
