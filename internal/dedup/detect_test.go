package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	Name    string
	Email   string
	VAT     string
	Address string
}

var clientFields = Fields[client]{
	"name":    func(c client) string { return c.Name },
	"email":   func(c client) string { return c.Email },
	"vat":     func(c client) string { return c.VAT },
	"address": func(c client) string { return c.Address },
}

func TestDetect_EmptyPopulation(t *testing.T) {
	result := Detect(client{Name: "Huber GmbH"}, nil, clientFields, Options{})

	assert.False(t, result.HasDuplicates)
	assert.Equal(t, ActionAllow, result.Action)
	assert.Nil(t, result.Best())
}

func TestDetect_SingleExactField(t *testing.T) {
	candidate := client{Name: "Huber GmbH"}
	population := []client{{Name: "Huber GmbH"}}

	result := Detect(candidate, population, clientFields, Options{
		Weights: map[string]float64{"name": 2},
	})

	require.True(t, result.HasDuplicates)
	best := result.Best()
	require.NotNil(t, best)
	assert.Equal(t, 1.0, best.Score)
	assert.Equal(t, ClassificationExact, best.Classification)
	assert.Equal(t, ActionBlock, result.Action)
	assert.Equal(t, "exact match on name", best.Reason)
}

func TestDetect_BlankFieldsExcludedFromDenominator(t *testing.T) {
	candidate := client{Name: "Huber GmbH", Email: ""}
	withBlank := []client{{Name: "Huber GmbH", Email: "office@huber.at"}}
	withValue := []client{{Name: "Huber GmbH", Email: "office@huber.at"}}

	blankSide := Detect(candidate, withBlank, clientFields, Options{})
	require.True(t, blankSide.HasDuplicates)
	assert.Equal(t, 1.0, blankSide.Best().Score)

	// fill the candidate's email with something unrelated: the field now
	// enters the denominator and drags the aggregate down. A low reporting
	// threshold keeps the weakened match visible.
	candidate.Email = "nothing@alike.example"
	filled := Detect(candidate, withValue, clientFields, Options{FuzzyThreshold: 0.1})
	require.NotNil(t, filled.Best())
	assert.Less(t, filled.Best().Score, blankSide.Best().Score)
}

func TestDetect_ActionThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  Action
	}{
		{0.95, ActionBlock},
		{0.94, ActionWarn},
		{0.80, ActionWarn},
		{0.79, ActionAllow},
		{0.0, ActionAllow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, recommend(tt.score, Options{}.withDefaults()), "score %.2f", tt.score)
	}
}

func TestDetect_Classification(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, ClassificationExact, classify(0.96, opts))
	assert.Equal(t, ClassificationFuzzy, classify(0.90, opts))
	assert.Equal(t, ClassificationSuspected, classify(0.76, opts))

	low := Options{FuzzyThreshold: 0.5}.withDefaults()
	assert.Equal(t, ClassificationPossible, classify(0.60, low))
}

func TestDetect_NormalizationFlags(t *testing.T) {
	candidate := client{Name: "HUBER  GMBH"}
	population := []client{{Name: "huber gmbh"}}

	insensitive := Detect(candidate, population, clientFields, Options{})
	require.True(t, insensitive.HasDuplicates)
	assert.Equal(t, 1.0, insensitive.Best().Score)

	sensitive := Detect(candidate, population, clientFields, Options{
		CaseSensitive:       true,
		WhitespaceSensitive: true,
	})
	if sensitive.HasDuplicates {
		assert.Less(t, sensitive.Best().Score, 1.0)
	}
}

func TestDetect_WeightedAggregation(t *testing.T) {
	candidate := client{Name: "Huber GmbH", VAT: "ATU99999999"}
	population := []client{{Name: "Gruber GmbH", VAT: "ATU99999999"}}

	// vat matches exactly, name only partially; a heavy vat weight must pull
	// the aggregate above the plain average
	heavy := Detect(candidate, population, clientFields, Options{
		Weights: map[string]float64{"vat": 3},
	})
	flat := Detect(candidate, population, clientFields, Options{})

	require.NotNil(t, heavy.Best())
	require.NotNil(t, flat.Best())
	assert.Greater(t, heavy.Best().Score, flat.Best().Score)
}

func TestDetect_UnknownFieldsSkipped(t *testing.T) {
	candidate := client{Name: "Huber GmbH"}
	population := []client{{Name: "Huber GmbH"}}

	result := Detect(candidate, population, clientFields, Options{
		Fields: []string{"name", "no_such_field"},
	})

	require.True(t, result.HasDuplicates)
	assert.Equal(t, 1.0, result.Best().Score)
	assert.Len(t, result.Best().Fields, 1)
}

func TestDetect_ReasonNamesFuzzyFields(t *testing.T) {
	candidate := client{Name: "Huber Gmbh"}
	population := []client{{Name: "Huber GesmbH"}}

	result := Detect(candidate, population, clientFields, Options{FuzzyThreshold: 0.5})
	best := result.Best()
	require.NotNil(t, best)
	if !best.Fields[0].Exact && best.Fields[0].Similarity >= reasonFuzzyFloor {
		assert.Contains(t, best.Reason, "name")
		assert.Contains(t, best.Reason, "%")
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, 0.75, Similarity("abcd", "abcx"), 1e-9)
}
