package analyzers

import (
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// Workload inspects the recent baseline history for this query hash
// for patterns that aren't visible from a single run.
// REPEATED_FULL_EXPORT fires when the current run returns at least
// ExportRowThreshold rows and two or more history entries examined at
// least that many. HIGH_FREQUENCY_LARGE_TRANSFER fires on history length
// alone (FrequencyThreshold or more entries); transfer size is not
// checked. API_MISUSE_BURST fires when the longest run of back-to-back
// identical composite scores reaches FrequencyThreshold; snapshot
// timestamps are not consulted, so no time window applies.
func Workload(history []model.BaselineSnapshot, rowsReturned int64, cfg config.WorkloadThresholds) (model.Workload, []model.Finding) {
	var workload model.Workload
	var findings []model.Finding

	if rowsReturned >= cfg.ExportRowThreshold {
		repeats := 0
		for _, h := range history {
			if h.RowsExamined >= cfg.ExportRowThreshold {
				repeats++
			}
		}
		if repeats >= 2 {
			workload.Patterns = append(workload.Patterns, model.WorkloadPattern{
				Name:     "REPEATED_FULL_EXPORT",
				Severity: model.SeverityWarning,
				Detail:   fmt.Sprintf("This query has returned %d+ rows in at least %d of its last %d run(s).", cfg.ExportRowThreshold, repeats, len(history)),
			})
		}
	}

	if len(history) >= cfg.FrequencyThreshold {
		workload.Patterns = append(workload.Patterns, model.WorkloadPattern{
			Name:     "HIGH_FREQUENCY_LARGE_TRANSFER",
			Severity: model.SeverityOptimization,
			Detail:   fmt.Sprintf("This query hash has run %d times in recent history; consider caching if the result is stable.", len(history)),
		})
	}

	if burstSize := consecutiveIdenticalScores(history); burstSize >= cfg.FrequencyThreshold {
		workload.Patterns = append(workload.Patterns, model.WorkloadPattern{
			Name:     "API_MISUSE_BURST",
			Severity: model.SeverityWarning,
			Detail:   fmt.Sprintf("%d consecutive identical-score runs suggest a retry loop or polling bug rather than distinct user requests.", burstSize),
		})
	}

	for _, p := range workload.Patterns {
		findings = append(findings, model.NewFinding(p.Severity, model.CategoryWorkload, p.Name, p.Detail))
	}
	return workload, findings
}

// consecutiveIdenticalScores counts the longest run of back-to-back
// history entries with the same composite score, the workload
// analyzer's coarse proxy for "identical query fired repeatedly".
func consecutiveIdenticalScores(history []model.BaselineSnapshot) int {
	best, run := 0, 0
	var last float64
	for i, h := range history {
		if i > 0 && h.CompositeScore == last {
			run++
		} else {
			run = 1
		}
		last = h.CompositeScore
		if run > best {
			best = run
		}
	}
	return best
}
