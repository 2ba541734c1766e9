// Package dedup scores a candidate record against a population of existing
// records across weighted fields and recommends whether the write should be
// blocked, confirmed, or allowed. Purely advisory; the caller decides.
package dedup

// Classification grades a reported duplicate by aggregate score.
type Classification string

const (
	ClassificationExact     Classification = "EXACT"
	ClassificationFuzzy     Classification = "FUZZY"
	ClassificationSuspected Classification = "SUSPECTED"
	ClassificationPossible  Classification = "POSSIBLE"
)

// Action is the recommendation derived from the best match.
type Action string

const (
	ActionBlock Action = "BLOCK"
	ActionWarn  Action = "WARN"
	ActionAllow Action = "ALLOW"
)

const (
	defaultExactThreshold = 0.95
	defaultFuzzyThreshold = 0.75

	classFuzzyFloor     = 0.85
	classSuspectedFloor = 0.75

	actionWarnFloor = 0.80

	// per-field similarity at or above this counts as an exact field match
	fieldExactFloor = 1 - 1e-2

	// fields named in fuzzy reasoning text
	reasonFuzzyFloor = 0.70
)

// Options tunes one detection run. The zero value means: compare every
// registered field at weight 1, ignore case and whitespace, thresholds
// 0.95/0.75.
type Options struct {
	// ExactThreshold is the aggregate score at which a match is classified
	// Exact and the recommended action becomes Block.
	ExactThreshold float64

	// FuzzyThreshold is the minimum aggregate score for a match to be
	// reported as a duplicate at all.
	FuzzyThreshold float64

	// Fields restricts the comparison to a subset of the registered fields.
	// Empty means all.
	Fields []string

	// Weights assigns per-field weights; unlisted fields weigh 1.
	Weights map[string]float64

	CaseSensitive       bool
	WhitespaceSensitive bool
}

func (o Options) withDefaults() Options {
	if o.ExactThreshold <= 0 {
		o.ExactThreshold = defaultExactThreshold
	}
	if o.FuzzyThreshold <= 0 {
		o.FuzzyThreshold = defaultFuzzyThreshold
	}
	return o
}

func (o Options) weight(field string) float64 {
	if w, ok := o.Weights[field]; ok && w > 0 {
		return w
	}
	return 1
}
