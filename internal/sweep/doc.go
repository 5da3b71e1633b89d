// Package sweep defines the declarative sweep specification and its
// expansion into concrete parameter combinations. Loading and validation
// happen here; nothing in this package touches the scheduler, and only the
// loader reads the filesystem. Grid enumeration is a pure function of the
// spec so that regenerating a sweep always yields the same sequence.
package sweep
