package model

// EnvironmentContext is collected once per analysis and cached process-
// wide, keyed by database name, with a 5-minute lifetime.
type EnvironmentContext struct {
	MySQLVersion          string
	BufferPoolSizeBytes   int64
	InnoDBIOCapacity      int64
	InnoDBPageSize        int64
	TmpTableSize          int64
	MaxHeapTableSize      int64
	BufferPoolUtilization float64
	DatabaseName          string
}

// IsColdCache reports buffer pool utilization below 0.5.
func (e EnvironmentContext) IsColdCache() bool {
	return e.BufferPoolUtilization < 0.5
}

// ExecutionProfile captures the per-query execution shape; the engine
// passes it to the memory-pressure analyzer.
type ExecutionProfile struct {
	NestedLoopDepth int
	JoinFanouts     map[string]int64 // table -> rows*loops
	BtreeDepths     map[string]int   // index -> ceil(log_500(cardinality))
	LogicalReads    int64
	PhysicalReads   int64
	ScanComplexity  ComplexityClass
	SortComplexity  ComplexityClass
}

// BaselineSnapshot is a persisted per-query-hash diagnostic record used
// to detect regressions against prior runs of the same query.
type BaselineSnapshot struct {
	QueryHash             string
	Timestamp             string // ISO 8601
	CompositeScore        float64
	Grade                 string
	ExecutionTimeMs       float64
	RowsExamined          int64
	TimePerRow            float64
	Complexity            string
	AccessType            AccessType
	IndexesUsed           []string
	FindingCounts         map[string]int
	TableSize             int64
	BufferPoolUtilization float64
	IsColdCache           bool
}
