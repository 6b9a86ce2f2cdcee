// Package analyzers holds the deep analyzers the diagnose() pipeline
// runs after scoring: one file per analyzer, each producing its named
// report section plus the findings that belong to it. Every analyzer is
// a pure function of its inputs and the ports it's handed — no
// analyzer reaches for a global or a database connection on its own.
package analyzers

import (
	"context"

	"github.com/nethalo/sqlsentinel/internal/envprobe"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// Environment collects the EnvironmentContext for database through
// probe and flags a cold buffer pool, since a cold cache makes the
// run's timing numbers unrepresentative of steady-state performance.
func Environment(ctx context.Context, probe envprobe.Probe, database string) (model.EnvironmentContext, []model.Finding, error) {
	env, err := probe.Collect(ctx, database)
	if err != nil {
		return model.EnvironmentContext{}, nil, err
	}

	var findings []model.Finding
	if env.IsColdCache() {
		findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryEnvironment,
			"Cold buffer pool",
			"The buffer pool is below half its capacity resident; this run's timing reflects "+
				"disk I/O a warm cache would not need.").
			WithRecommendation("Re-run after a warm-up pass before comparing timings against a baseline.").
			WithMeta("buffer_pool_utilization", env.BufferPoolUtilization))
	}
	return env, findings, nil
}
