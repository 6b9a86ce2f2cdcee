package analyzers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// HypotheticalIndex simulates the top index-synthesis recommendations
// against a live connection: create the index, re-run EXPLAIN to see
// the resulting access type and row estimate, then drop the index
// unconditionally, even if EXPLAIN failed, so a simulation never
// leaves schema state behind. Disabled by default and gated to the
// configured environments, since running arbitrary DDL is never safe
// to do silently against production.
func HypotheticalIndex(ctx context.Context, driver dbdriver.Driver, sql string, synthesis *model.IndexSynthesis, environment string, cfg config.HypotheticalIndexConfig) (model.HypotheticalIndexes, []model.Finding) {
	var result model.HypotheticalIndexes
	var findings []model.Finding
	if !cfg.Enabled || synthesis == nil {
		return result, findings
	}
	if !environmentAllowed(environment, cfg.AllowedEnvironments) {
		return result, findings
	}

	limit := cfg.MaxSimulations
	if limit <= 0 || limit > len(synthesis.Recommendations) {
		limit = len(synthesis.Recommendations)
	}

	for _, rec := range synthesis.Recommendations[:limit] {
		sim := simulate(ctx, driver, sql, rec)
		result.Simulations = append(result.Simulations, sim)

		if sim.Improvement == "significant" || sim.Improvement == "moderate" {
			findings = append(findings, model.NewFinding(model.SeverityOptimization, model.CategoryHypotheticalIdx,
				"Simulated index improved the plan",
				fmt.Sprintf("Creating %s changed the estimated access from %s to %s (%d -> %d rows).",
					rec.DDL, sim.BeforeAccess, sim.AfterAccess, sim.BeforeRows, sim.AfterRows)).
				WithRecommendation(rec.DDL))
		}
		if !sim.CleanupOK {
			findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryHypotheticalIdx,
				"Hypothetical index cleanup failed",
				"The simulated index could not be dropped after measurement: "+sim.CleanupError).
				WithRecommendation("Manually verify and drop the simulated index before this table is used again."))
		}
	}
	return result, findings
}

func environmentAllowed(environment string, allowed []string) bool {
	for _, a := range allowed {
		if a == environment {
			return true
		}
	}
	return false
}

func simulate(ctx context.Context, driver dbdriver.Driver, sql string, rec model.IndexRecommendation) model.HypotheticalSimulation {
	sim := model.HypotheticalSimulation{DDL: rec.DDL}

	before, beforeRows, beforeErr := explainAccess(ctx, driver, sql)
	sim.BeforeAccess, sim.BeforeRows = before, beforeRows

	if err := driver.CreateIndex(ctx, rec.DDL); err != nil {
		sim.Improvement = "none"
		sim.CleanupOK = true
		return sim
	}

	after, afterRows, afterErr := explainAccess(ctx, driver, sql)
	sim.AfterAccess, sim.AfterRows = after, afterRows

	if err := driver.DropIndex(ctx, rec.Table, extractIndexName(rec.DDL)); err != nil {
		log.Printf("hypothetical index: dropping %s on %s failed: %v", extractIndexName(rec.DDL), rec.Table, err)
		sim.CleanupOK = false
		sim.CleanupError = err.Error()
	} else {
		sim.CleanupOK = true
	}

	if beforeErr != nil || afterErr != nil {
		sim.Improvement = "none"
		return sim
	}
	switch {
	case after.Rank() < before.Rank()-2:
		sim.Improvement = "significant"
	case after.Rank() < before.Rank():
		sim.Improvement = "moderate"
	case after.Rank() == before.Rank():
		sim.Improvement = "marginal"
	default:
		sim.Improvement = "none"
	}
	return sim
}

// extractIndexName pulls the index name out of a `CREATE INDEX <name>
// ON ...` DDL string, the name index_synthesis.go embeds in
// IndexRecommendation.DDL.
func extractIndexName(ddl string) string {
	const prefix = "CREATE INDEX "
	if len(ddl) <= len(prefix) {
		return ""
	}
	rest := ddl[len(prefix):]
	for i, r := range rest {
		if r == ' ' {
			return rest[:i]
		}
	}
	return rest
}

func explainAccess(ctx context.Context, driver dbdriver.Driver, sql string) (model.AccessType, int64, error) {
	rows, err := driver.RunExplain(ctx, sql)
	if err != nil || len(rows) == 0 {
		return model.AccessUnknown, 0, err
	}
	raw, _ := rows[0]["type"].(string)
	var estRows int64
	switch v := rows[0]["rows"].(type) {
	case int64:
		estRows = v
	case int:
		estRows = int64(v)
	case float64:
		estRows = int64(v)
	case string:
		estRows, _ = strconv.ParseInt(v, 10, 64)
	}
	return driver.NormalizeAccessType(raw), estRows, nil
}
