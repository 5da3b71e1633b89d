package sweep

// Parameter is one declared sweep parameter: a name bound either to a single
// fixed value or to an ordered list of candidate values.
type Parameter struct {
	Name string
	// Candidates holds the ordered candidate values. A fixed parameter has
	// exactly one candidate and Fixed set.
	Candidates []any
	Fixed      bool
}

// Spec is a parsed sweep specification. Parameter order is declaration
// order, which fixes the enumeration order of the grid.
type Spec struct {
	Name   string
	Params []Parameter
}

// InvalidSpecError reports a malformed or degenerate sweep specification.
// It is always fatal and is raised before any filesystem or scheduler
// interaction.
type InvalidSpecError struct {
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return "invalid sweep spec: " + e.Reason
}

// Validate checks the structural invariants of the spec: at least one
// parameter, unique names, and no parameter with zero candidates. A spec
// where every parameter is fixed is degenerate but valid; it enumerates a
// single combination.
func (s *Spec) Validate() error {
	if len(s.Params) == 0 {
		return &InvalidSpecError{Reason: "spec declares no parameters"}
	}
	seen := make(map[string]struct{}, len(s.Params))
	for _, p := range s.Params {
		if p.Name == "" {
			return &InvalidSpecError{Reason: "parameter with empty name"}
		}
		if _, dup := seen[p.Name]; dup {
			return &InvalidSpecError{Reason: "duplicate parameter " + quote(p.Name)}
		}
		seen[p.Name] = struct{}{}
		if len(p.Candidates) == 0 {
			return &InvalidSpecError{Reason: "parameter " + quote(p.Name) + " has no candidate values"}
		}
	}
	return nil
}

// quote quotes a parameter name for error messages.
func quote(name string) string {
	return `"` + name + `"`
}
