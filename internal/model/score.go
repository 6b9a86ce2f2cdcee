package model

// Grade is the letter-grade enum derived from the composite score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// ComponentScore is one weighted term of the composite score.
type ComponentScore struct {
	Score    float64
	Weight   float64
	Weighted float64
}

// Score is the weighted composite-score value for a diagnostic report.
type Score struct {
	CompositeScore    float64
	Grade             Grade
	Breakdown         map[string]ComponentScore
	ContextOverride   bool
}

// ToMap renders the score as a JSON-friendly map.
func (s Score) ToMap() map[string]any {
	breakdown := make(map[string]any, len(s.Breakdown))
	for k, v := range s.Breakdown {
		breakdown[k] = map[string]any{
			"score":    v.Score,
			"weight":   v.Weight,
			"weighted": v.Weighted,
		}
	}
	return map[string]any{
		"composite_score":  s.CompositeScore,
		"grade":             string(s.Grade),
		"breakdown":         breakdown,
		"context_override":  s.ContextOverride,
	}
}
