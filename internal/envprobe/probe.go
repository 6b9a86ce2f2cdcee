// Package envprobe is the environment probe port: a once-per-analysis
// collector of server/session variables (buffer pool sizing, InnoDB
// tunables, cache warmth) that feeds the environment, memory-pressure,
// and confidence analyzers. Results are cached process-wide by database
// name for a fixed lifetime, mirroring the teacher's topology-detection
// caching idiom.
package envprobe

import (
	"context"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// Probe collects the EnvironmentContext for database. Implementations
// talk to a live connection; Static answers from canned values for
// tests and permissive (SQLite) mode.
type Probe interface {
	Collect(ctx context.Context, database string) (model.EnvironmentContext, error)
}

// Static is a fixed-answer Probe for tests and SQLite's permissive mode,
// where there is no server-side buffer pool to inspect.
type Static struct {
	Context model.EnvironmentContext
	Err     error
}

func (s Static) Collect(ctx context.Context, database string) (model.EnvironmentContext, error) {
	if s.Err != nil {
		return model.EnvironmentContext{}, s.Err
	}
	out := s.Context
	out.DatabaseName = database
	return out, nil
}
