package model

// Finding is an immutable unit of diagnostic output. Metadata is a small
// tagged-value tree: a string-keyed map over scalars, strings, lists,
// and nested maps, serialized uniformly to JSON by encoding/json (any
// of those Go types marshal correctly without custom code).
type Finding struct {
	Severity       Severity
	Category       Category
	Title          string
	Description    string
	Recommendation string
	Metadata       map[string]any
}

// NewFinding constructs a Finding: a small constructor rather than a
// method on a base class, since Rule here is a capability (interface),
// not an abstract type.
func NewFinding(severity Severity, category Category, title, description string) Finding {
	return Finding{
		Severity:    severity,
		Category:    category,
		Title:       title,
		Description: description,
	}
}

// WithRecommendation returns a copy of the finding with a recommendation
// attached.
func (f Finding) WithRecommendation(rec string) Finding {
	f.Recommendation = rec
	return f
}

// WithMeta returns a copy of the finding with one metadata key set.
func (f Finding) WithMeta(key string, value any) Finding {
	meta := make(map[string]any, len(f.Metadata)+1)
	for k, v := range f.Metadata {
		meta[k] = v
	}
	meta[key] = value
	f.Metadata = meta
	return f
}

// ToMap renders the finding as a JSON-friendly map.
func (f Finding) ToMap() map[string]any {
	m := map[string]any{
		"severity":    f.Severity.String(),
		"category":    string(f.Category),
		"title":       f.Title,
		"description": f.Description,
	}
	if f.Recommendation != "" {
		m["recommendation"] = f.Recommendation
	}
	if len(f.Metadata) > 0 {
		m["metadata"] = f.Metadata
	}
	return m
}

// SortBySeverity stably reorders findings by non-decreasing severity
// ordinal (Critical first), preserving relative order within a severity
// level — findings keep pipeline insertion order within a severity tier.
func SortBySeverity(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	// Insertion sort: stable, and these slices are small (tens of
	// findings per report at most).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Severity < out[j-1].Severity; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
