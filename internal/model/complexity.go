package model

// RiskLevel classifies how badly a complexity class degrades at scale.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ComplexityClass is a closed set of asymptotic shapes, each carrying a
// label, a risk level, and an ordinal used for consistency comparisons
// (e.g. "did the plan get worse").
type ComplexityClass struct {
	name  string
	label string
	risk  RiskLevel
	ord   int
}

func (c ComplexityClass) String() string   { return c.name }
func (c ComplexityClass) Label() string    { return c.label }
func (c ComplexityClass) Risk() RiskLevel  { return c.risk }
func (c ComplexityClass) Ordinal() int     { return c.ord }
func (c ComplexityClass) IsZero() bool     { return c.name == "" }

var (
	ComplexityConstant     = ComplexityClass{"Constant", "O(1)", RiskLow, 0}
	ComplexityLogarithmic  = ComplexityClass{"Logarithmic", "O(log n)", RiskLow, 1}
	ComplexityLogRange     = ComplexityClass{"LogRange", "O(log n + k)", RiskLow, 2}
	ComplexityLinear       = ComplexityClass{"Linear", "O(n)", RiskMedium, 3}
	ComplexityLinearithmic = ComplexityClass{"Linearithmic", "O(n log n)", RiskMedium, 4}
	ComplexityQuadratic    = ComplexityClass{"Quadratic", "O(n²)", RiskHigh, 5}
	// ComplexityLimit is the "Limit" helper class: synonymous with
	// Constant when early termination holds.
	ComplexityLimit = ComplexityClass{"Limit", "O(1) (bounded by LIMIT)", RiskLow, 0}
)

// LinearSubclass further classifies a Linear complexity finding by the
// likely reason the query scans proportionally to table size, as
// produced by the scalability estimator.
type LinearSubclass string

const (
	LinearExport        LinearSubclass = "EXPORT_LINEAR"
	LinearAnalytical    LinearSubclass = "ANALYTICAL_LINEAR"
	LinearIndexMissed   LinearSubclass = "INDEX_MISSED_LINEAR"
	LinearPathological  LinearSubclass = "PATHOLOGICAL_LINEAR"
)
