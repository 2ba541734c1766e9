package dedup

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Fields maps comparable field names to their accessors for one record type.
// Registered once per type by the calling workflow; unknown field names in
// Options are skipped silently.
type Fields[T any] map[string]func(T) string

// FieldMatch is the per-field detail of one comparison.
type FieldMatch struct {
	Field          string  `json:"field"`
	CandidateValue string  `json:"candidate_value"`
	ExistingValue  string  `json:"existing_value"`
	Similarity     float64 `json:"similarity"`
	Exact          bool    `json:"exact"`
}

// Match is one existing record that scored at or above the fuzzy threshold.
type Match[T any] struct {
	Record         T              `json:"record"`
	Score          float64        `json:"score"`
	Classification Classification `json:"classification"`
	Fields         []FieldMatch   `json:"fields"`
	Reason         string         `json:"reason,omitempty"`
}

// Result is the verdict over the whole population.
type Result[T any] struct {
	HasDuplicates bool       `json:"has_duplicates"`
	Matches       []Match[T] `json:"matches"`
	Action        Action     `json:"recommended_action"`
}

// Best returns the highest-scoring match, if any.
func (r Result[T]) Best() *Match[T] {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// Detect compares candidate against every existing record and aggregates the
// per-field similarities into one verdict. An empty population allows the
// write; nothing here is ever fatal.
func Detect[T any](candidate T, population []T, fields Fields[T], opts Options) Result[T] {
	opts = opts.withDefaults()

	names := fieldNames(fields, opts)
	result := Result[T]{Action: ActionAllow}
	bestScore := 0.0

	for _, existing := range population {
		score, details := compare(candidate, existing, fields, names, opts)
		if score > bestScore {
			bestScore = score
		}
		if len(details) == 0 || score < opts.FuzzyThreshold {
			continue
		}
		result.Matches = append(result.Matches, Match[T]{
			Record:         existing,
			Score:          score,
			Classification: classify(score, opts),
			Fields:         details,
		})
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Score > result.Matches[j].Score
	})

	result.HasDuplicates = len(result.Matches) > 0
	result.Action = recommend(bestScore, opts)
	if best := result.Best(); best != nil {
		best.Reason = reason(*best)
	}
	return result
}

// compare produces the weighted aggregate over all fields with a comparable
// value on both sides. Blank fields contribute neither numerator nor
// denominator.
func compare[T any](candidate, existing T, fields Fields[T], names []string, opts Options) (float64, []FieldMatch) {
	var sum, weightSum float64
	var details []FieldMatch

	for _, name := range names {
		get := fields[name]
		rawA := get(candidate)
		rawB := get(existing)
		if strings.TrimSpace(rawA) == "" || strings.TrimSpace(rawB) == "" {
			continue
		}

		sim := Similarity(normalize(rawA, opts), normalize(rawB, opts))
		w := opts.weight(name)
		sum += sim * w
		weightSum += w
		details = append(details, FieldMatch{
			Field:          name,
			CandidateValue: rawA,
			ExistingValue:  rawB,
			Similarity:     sim,
			Exact:          sim >= fieldExactFloor,
		})
	}

	if weightSum == 0 {
		return 0, nil
	}
	return sum / weightSum, details
}

// Similarity is the normalized Levenshtein ratio in [0,1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func normalize(value string, opts Options) string {
	if !opts.CaseSensitive {
		value = strings.ToLower(value)
	}
	if !opts.WhitespaceSensitive {
		value = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, value)
	}
	return value
}

func classify(score float64, opts Options) Classification {
	switch {
	case score >= opts.ExactThreshold:
		return ClassificationExact
	case score >= classFuzzyFloor:
		return ClassificationFuzzy
	case score >= classSuspectedFloor:
		return ClassificationSuspected
	default:
		// reachable only with a fuzzy threshold configured below 0.75
		return ClassificationPossible
	}
}

func recommend(bestScore float64, opts Options) Action {
	switch {
	case bestScore >= opts.ExactThreshold:
		return ActionBlock
	case bestScore >= actionWarnFloor:
		return ActionWarn
	default:
		return ActionAllow
	}
}

// reason renders the human-readable explanation for the best match: exact
// field names first, fuzzy field names with the percentage next, the bare
// percentage last.
func reason[T any](m Match[T]) string {
	var exact, fuzzy []string
	for _, f := range m.Fields {
		switch {
		case f.Exact:
			exact = append(exact, f.Field)
		case f.Similarity >= reasonFuzzyFloor:
			fuzzy = append(fuzzy, f.Field)
		}
	}

	pct := int(m.Score*100 + 0.5)
	switch {
	case len(exact) > 0:
		return fmt.Sprintf("exact match on %s", strings.Join(exact, ", "))
	case len(fuzzy) > 0:
		return fmt.Sprintf("similar on %s (%d%% match)", strings.Join(fuzzy, ", "), pct)
	default:
		return fmt.Sprintf("%d%% similar to an existing record", pct)
	}
}

func fieldNames[T any](fields Fields[T], opts Options) []string {
	if len(opts.Fields) > 0 {
		names := make([]string, 0, len(opts.Fields))
		for _, name := range opts.Fields {
			if _, ok := fields[name]; ok {
				names = append(names, name)
			}
		}
		return names
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
