package analyzers

import (
	"context"
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/baseline"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// Regression wraps the baseline package's comparison in the shape
// every other deep analyzer uses: a section plus the findings that
// belong to it. Regressions and degradation are warnings, benign data
// growth and plan improvements are informational — a faster plan is
// still news worth recording, not a problem.
func Regression(ctx context.Context, analyzer baseline.Analyzer, current model.BaselineSnapshot) (model.Regression, []model.Finding, error) {
	result, err := analyzer.Analyze(ctx, current)
	if err != nil {
		return model.Regression{}, nil, err
	}

	var findings []model.Finding
	for _, r := range result.Regressions {
		findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryRegression,
			"Performance degradation vs. baseline",
			fmt.Sprintf("%s regressed %.1f%% against its recent baseline average (%.2f -> %.2f).",
				r.Metric, r.PercentChange, r.BaselineValue, r.CurrentValue)).
			WithRecommendation("Check for a recent schema, data, or config change around this query.").
			WithMeta("metric", r.Metric))
	}
	for _, r := range result.DataGrowth {
		findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryRegression,
			"Data growth",
			fmt.Sprintf("%s increased %.1f%%, consistent with table growth rather than a regression.", r.Metric, r.PercentChange)))
	}
	for _, r := range result.Improvements {
		findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryRegression,
			"Performance improved vs. baseline",
			fmt.Sprintf("%s improved %.1f%% against its recent baseline average.", r.Metric, r.PercentChange)))
	}
	for range result.Informational {
		findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryRegression,
			"Index set changed",
			"The set of indexes used by this query's plan changed from the prior run at the same access-type rank."))
	}
	if result.Trend == "degrading" {
		findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryRegression,
			"Degrading trend",
			"The last three runs of this query show a monotone decline in composite score.").
			WithRecommendation("Investigate before this becomes a production incident; the trend is consistent, not a one-off blip."))
	}
	return result, findings, nil
}
