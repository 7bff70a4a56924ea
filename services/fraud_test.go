package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kyc-hub/imaging"
	"kyc-hub/models"
)

func TestScoreFraud(t *testing.T) {
	t.Run("clean submission", func(t *testing.T) {
		a := ScoreFraud(FraudInput{
			DocType:       models.DocTypeAadhaar,
			Fields:        map[string]string{"name": "Rahul Kumar", "aadhaar_number": "234567890124"},
			NameMatch:     models.NameMatch{Similarity: 100, Matches: true},
			OCRConfidence: 100,
		})
		assert.Equal(t, 0.0, a.FraudScore)
		assert.Equal(t, models.RiskLow, a.RiskLevel)
		assert.False(t, a.RequiresReview)
		assert.Empty(t, a.RiskFactors)
		assert.Equal(t, 100.0, a.FinalConfidence)
	})

	t.Run("every signal adds up", func(t *testing.T) {
		a := ScoreFraud(FraudInput{
			DocType:       models.DocTypeAadhaar,
			Fields:        map[string]string{"name": "Test User"},
			NameMatch:     models.NameMatch{Similarity: 40, Result: "no_match"},
			Quality:       &imaging.Quality{Score: 60, IssuesDetected: true, Issues: []string{imaging.IssueLowResolution}},
			Duplicate:     models.DuplicateCheck{IsDuplicate: true},
			OCRConfidence: 50,
			Patterns:      []string{"suspicious_name"},
		})
		// 21 name + 18 quality + 15 missing number + 25 duplicate + 10 pattern
		assert.InDelta(t, 89.0, a.FraudScore, 0.01)
		assert.InDelta(t, 21.0, a.NameMismatchPenalty, 0.01)
		assert.Equal(t, models.RiskHigh, a.RiskLevel)
		assert.True(t, a.RequiresReview)
		assert.Len(t, a.RiskFactors, 5)
		assert.InDelta(t, 13.5, a.FinalConfidence, 0.01)
	})

	t.Run("quality without issues is ignored", func(t *testing.T) {
		a := ScoreFraud(FraudInput{
			DocType:   models.DocTypePAN,
			Fields:    map[string]string{"name": "RAHUL KUMAR", "pan_number": "ABCPK1234F"},
			NameMatch: models.NameMatch{Similarity: 100, Matches: true},
			Quality:   &imaging.Quality{Score: 25},
		})
		assert.Equal(t, 0.0, a.FraudScore)
	})

	t.Run("score is capped", func(t *testing.T) {
		a := ScoreFraud(FraudInput{
			DocType:   models.DocTypePAN,
			Fields:    map[string]string{},
			NameMatch: models.NameMatch{},
			Duplicate: models.DuplicateCheck{IsDuplicate: true},
			Patterns:  []string{"a", "b", "c"},
		})
		assert.Equal(t, 100.0, a.FraudScore)
		assert.Equal(t, 0.0, a.FinalConfidence)
	})
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, models.RiskHigh, RiskLevel(70))
	assert.Equal(t, models.RiskMedium, RiskLevel(40))
	assert.Equal(t, models.RiskLow, RiskLevel(39.9))
}

func TestValidate(t *testing.T) {
	t.Run("missing name is an error", func(t *testing.T) {
		v := Validate(models.DocTypeAadhaar, map[string]string{}, models.FraudAnalysis{FraudScore: 75}, nil)
		assert.False(t, v.IsValid)
		assert.Contains(t, v.Errors, "Name extraction failed")
		assert.Contains(t, v.Errors, "High fraud risk detected")
		assert.Equal(t, 25.0, v.ValidationScore)
	})

	t.Run("warnings do not invalidate", func(t *testing.T) {
		v := Validate(models.DocTypeAadhaar,
			map[string]string{"name": "Rahul", "aadhaar_number": "234567890123"},
			models.FraudAnalysis{FraudScore: 45},
			&imaging.Quality{IssuesDetected: true})
		assert.True(t, v.IsValid)
		assert.Empty(t, v.Errors)
		assert.ElementsMatch(t, []string{
			"Medium fraud risk detected",
			"Poor image quality detected",
			"Aadhaar number failed checksum verification",
		}, v.Warnings)
	})

	t.Run("pan holder type", func(t *testing.T) {
		v := Validate(models.DocTypePAN, map[string]string{"name": "X", "pan_number": "ABCDE1234F"}, models.FraudAnalysis{}, nil)
		assert.Equal(t, []string{"PAN holder type is not recognised"}, v.Warnings)

		v = Validate(models.DocTypePAN, map[string]string{"name": "X", "pan_number": "ABCPE1234F"}, models.FraudAnalysis{}, nil)
		assert.Empty(t, v.Warnings)
	})
}

func TestRecommendStatus(t *testing.T) {
	assert.Equal(t, models.RecommendVerified, RecommendStatus(10, nil))
	assert.Equal(t, models.RecommendPending, RecommendStatus(40, nil))
	assert.Equal(t, models.RecommendFlagged, RecommendStatus(70, nil))
	assert.Equal(t, models.RecommendRejected, RecommendStatus(85, nil))
	assert.Equal(t, models.RecommendFlagged, RecommendStatus(0, []models.Alert{{Severity: models.SeverityHigh}}))
	assert.Equal(t, models.RecommendRejected, RecommendStatus(0, []models.Alert{{Severity: models.SeverityMedium}, {Severity: models.SeverityCritical}}))
}
