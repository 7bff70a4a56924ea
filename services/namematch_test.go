package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "rahul kumar", NormalizeName("  Mr. Rahul   KUMAR "))
	assert.Equal(t, "sunita devi", NormalizeName("Smt. Sunita Devi"))
	assert.Equal(t, "", NormalizeName(" . "))
}

func TestMatchNames(t *testing.T) {
	t.Run("identical after normalisation", func(t *testing.T) {
		m := MatchNames("MR. RAHUL KUMAR", "rahul kumar")
		assert.Equal(t, 100.0, m.Similarity)
		assert.True(t, m.Matches)
		assert.Equal(t, "very_high", m.ConfidenceLevel)
		assert.Equal(t, "exact_match", m.Result)
	})

	t.Run("word order does not matter", func(t *testing.T) {
		m := MatchNames("Kumar Rahul", "Rahul Kumar")
		assert.Equal(t, 100.0, m.TokenSortRatio)
		assert.Equal(t, 100.0, m.TokenSetRatio)
		assert.Less(t, m.Ratio, 100.0)
	})

	t.Run("missing surname is an acceptable match", func(t *testing.T) {
		m := MatchNames("RAHUL KUMAR SHARMA", "Rahul Kumar")
		assert.Equal(t, 61.0, m.Ratio)
		assert.Equal(t, 100.0, m.PartialRatio)
		assert.Equal(t, 100.0, m.TokenSetRatio)
		assert.InDelta(t, 78.6, m.Similarity, 0.11)
		assert.True(t, m.Matches)
		assert.Equal(t, "medium", m.ConfidenceLevel)
		assert.Equal(t, "acceptable_match", m.Result)
	})

	t.Run("different people", func(t *testing.T) {
		m := MatchNames("Priya Singh", "Rahul Kumar")
		assert.False(t, m.Matches)
		assert.Less(t, m.Similarity, 70.0)
		assert.Equal(t, "no_match", m.Result)
	})

	t.Run("missing input", func(t *testing.T) {
		m := MatchNames("", "Rahul Kumar")
		assert.False(t, m.Matches)
		assert.Equal(t, 0.0, m.Similarity)
		assert.Equal(t, "insufficient_data", m.Result)
		assert.Equal(t, "no_data", m.ConfidenceLevel)
	})
}

func TestRatioHelpers(t *testing.T) {
	assert.Equal(t, 100.0, ratio("", ""))
	assert.Equal(t, 0.0, partialRatio("", "abc"))
	assert.Equal(t, 100.0, partialRatio("kumar", "rahul kumar"))
}
