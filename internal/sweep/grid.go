package sweep

import (
	"github.com/gridsweep/gridsweep/internal/run"
)

// Grid is the Cartesian product of a spec's candidate lists, viewed lazily:
// combinations are decoded from their position on demand rather than stored.
// Later-declared parameters vary fastest, matching nested-loop order, so two
// enumerations of the same spec are always identical.
type Grid struct {
	params []Parameter
	total  int
}

// NewGrid validates the spec and returns its grid. The grid holds no
// filesystem or scheduler state.
func NewGrid(spec *Spec) (*Grid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	total := 1
	for _, p := range spec.Params {
		total *= len(p.Candidates)
	}
	return &Grid{params: spec.Params, total: total}, nil
}

// Len returns the number of combinations: the product of candidate counts.
func (g *Grid) Len() int {
	return g.total
}

// At decodes the combination at position i. The position is read as a
// mixed-radix number whose least significant digit is the last-declared
// parameter.
func (g *Grid) At(i int) run.ParameterSet {
	if i < 0 || i >= g.total {
		panic("sweep: grid index out of range")
	}
	ps := make(run.ParameterSet, len(g.params))
	rem := i
	for k := len(g.params) - 1; k >= 0; k-- {
		n := len(g.params[k].Candidates)
		ps[k] = run.Param{Name: g.params[k].Name, Value: g.params[k].Candidates[rem%n]}
		rem /= n
	}
	return ps
}

// Each calls fn for every combination in order, stopping at the first error.
func (g *Grid) Each(fn func(i int, ps run.ParameterSet) error) error {
	for i := 0; i < g.total; i++ {
		if err := fn(i, g.At(i)); err != nil {
			return err
		}
	}
	return nil
}
