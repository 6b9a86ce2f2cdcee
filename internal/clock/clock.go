// Package clock provides the engine's only source of time, so that a
// frozen implementation can make the pipeline deterministic in tests.
package clock

import "time"

// Clock is a port: every timestamp the pipeline needs flows through here,
// never through a direct call to the time package.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time
}

// System is the production Clock backed by the real wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Frozen is a test Clock that always returns the same instant.
type Frozen struct {
	At time.Time
}

// Now returns the frozen instant.
func (f Frozen) Now() time.Time { return f.At }
