package analyzers

import (
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// estimatedRowWidthBytes is a conservative flat per-row width used
// where the driver can't report actual average row width, matching
// the teacher's pattern of a documented flat estimate over a false
// precision it can't back up.
const estimatedRowWidthBytes = 256

// MemoryPressure estimates the per-session memory a query's sort,
// join-buffer, and temp-table needs would consume, scaled up by the
// configured concurrent-session assumption to approximate pool-wide
// pressure, and separately estimates the network bytes the result set
// would move.
func MemoryPressure(m *model.Metrics, env *model.EnvironmentContext, profile *model.ExecutionProfile, cfg config.MemoryPressureThresholds) (model.MemoryPressure, []model.Finding) {
	var mp model.MemoryPressure
	var findings []model.Finding

	if m.HasFilesort {
		mp.SortBufferBytes = m.RowsExamined * estimatedRowWidthBytes
	}
	if m.JoinCount > 0 {
		mp.JoinBufferBytes = m.RowsExamined * estimatedRowWidthBytes / int64(m.JoinCount+1)
	}
	if m.HasTempTable {
		mp.TempTableBytes = m.RowsExamined * estimatedRowWidthBytes
		if m.HasDiskTemp {
			mp.DiskSpillBytes = mp.TempTableBytes
		}
	}
	if env != nil {
		mp.BufferPoolBytes = env.BufferPoolSizeBytes
	}
	mp.NetworkTransferBytes = m.RowsReturned * estimatedRowWidthBytes

	perSession := mp.SortBufferBytes + mp.JoinBufferBytes + mp.TempTableBytes
	sessions := cfg.ConcurrentSessions
	if sessions <= 0 {
		sessions = 1
	}
	mp.ExecutionMemoryBytes = perSession * int64(sessions)

	mp.Risk = "low"
	switch {
	case cfg.HighRiskBytes > 0 && mp.ExecutionMemoryBytes >= cfg.HighRiskBytes:
		mp.Risk = "high"
	case cfg.ModerateRiskBytes > 0 && mp.ExecutionMemoryBytes >= cfg.ModerateRiskBytes:
		mp.Risk = "moderate"
	}
	if env != nil && env.BufferPoolSizeBytes > 0 {
		fraction := float64(mp.ExecutionMemoryBytes) / float64(env.BufferPoolSizeBytes)
		switch {
		case fraction >= cfg.HighRiskFraction:
			mp.Risk = "high"
		case fraction >= cfg.ModerateRiskFraction && mp.Risk == "low":
			mp.Risk = "moderate"
		}
	}

	mp.NetworkRisk = "LOW"
	switch {
	case mp.NetworkTransferBytes >= 50*1024*1024:
		mp.NetworkRisk = "CRITICAL"
	case mp.NetworkTransferBytes >= 10*1024*1024:
		mp.NetworkRisk = "HIGH"
	case mp.NetworkTransferBytes >= 1*1024*1024:
		mp.NetworkRisk = "MODERATE"
	}

	if mp.Risk == "high" {
		findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryMemoryPressure,
			"High estimated memory pressure",
			fmt.Sprintf("At %d concurrent session(s), this query's sort/join/temp-table buffers would need roughly %d bytes, "+
				"a high fraction of the configured buffer pool.", sessions, mp.ExecutionMemoryBytes)).
			WithRecommendation("Reduce the working set with a covering index or a LIMIT, or lower the assumed concurrency if this query rarely overlaps with itself."))
	}
	if mp.DiskSpillBytes > 0 {
		findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryMemoryPressure,
			"Temp table spilled to disk",
			"The plan's temporary table exceeded in-memory limits and spilled to disk, which is substantially slower than an in-memory temp table.").
			WithRecommendation("Increase tmp_table_size/max_heap_table_size, or restructure the query to avoid materializing a large intermediate set."))
	}
	if mp.NetworkRisk == "CRITICAL" || mp.NetworkRisk == "HIGH" {
		findings = append(findings, model.NewFinding(model.SeverityOptimization, model.CategoryMemoryPressure,
			"Large result set transfer",
			fmt.Sprintf("The result set is estimated at roughly %d bytes over the wire.", mp.NetworkTransferBytes)).
			WithRecommendation("Paginate the result or select fewer columns if the caller doesn't need the full row."))
	}

	return mp, findings
}
