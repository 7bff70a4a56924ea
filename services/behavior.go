package services

import (
	"fmt"
	"strings"
	"time"

	"kyc-hub/models"
)

// submissions are judged against Indian local time
var ist = time.FixedZone("IST", 5*3600+1800)

const (
	rapidSubmissionCount  = 5
	fieldSimilarityLimit  = 0.8
	nightRatioLimit       = 0.6
	repeatedDocTypeLimit  = 3
	nameVariationRatio    = 0.5
	scoreImprovementLimit = 15
)

// AnalyzeBehavior looks for patterns across a user's earlier submissions.
// history must be ordered oldest first.
func AnalyzeBehavior(history []models.Record, fields map[string]string, now time.Time) models.BehaviorAnalysis {
	b := models.BehaviorAnalysis{Flags: []string{}, HistoryChecked: len(history), RiskLevel: models.RiskLow}
	if len(history) == 0 {
		b.Flags = append(b.Flags, "first_submission")
		return b
	}

	recent := 0
	for _, r := range history {
		if now.Sub(r.CreatedAt) <= 24*time.Hour {
			recent++
		}
	}
	if recent >= rapidSubmissionCount {
		b.Score += 25
		b.Flags = append(b.Flags, fmt.Sprintf("rapid_submissions:%d_in_24h", recent))
	}

	start := max(0, len(history)-10)
	for _, r := range history[start:] {
		if fieldSimilarity(fields, r.ExtractedFields) > fieldSimilarityLimit {
			b.Score += 20
			b.Flags = append(b.Flags, "duplicate_data")
			break
		}
	}

	night := 0
	for _, r := range history {
		if h := r.CreatedAt.In(ist).Hour(); h <= 6 {
			night++
		}
	}
	if float64(night)/float64(len(history)) > nightRatioLimit {
		b.Score += 15
		b.Flags = append(b.Flags, "unusual_timing")
	}

	docTypes := map[string]int{}
	for _, r := range history {
		docTypes[r.DocumentType]++
	}
	for docType, n := range docTypes {
		if n > repeatedDocTypeLimit {
			b.Score += 10
			b.Flags = append(b.Flags, fmt.Sprintf("repeated_document_type:%s", docType))
		}
	}

	var names []string
	unique := map[string]bool{}
	for _, r := range history {
		for _, n := range []string{r.ExtractedFields["name"], r.UserEnteredName} {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				names = append(names, n)
				unique[n] = true
			}
		}
	}
	if len(unique) > 2 && float64(len(unique))/float64(len(names)) > nameVariationRatio {
		b.Score += 18
		b.Flags = append(b.Flags, "name_inconsistency")
	}

	if len(history) >= 3 {
		last := history[len(history)-3:]
		if last[1].FraudScore < last[0].FraudScore && last[2].FraudScore < last[1].FraudScore {
			if (last[0].FraudScore-last[2].FraudScore)/3 > scoreImprovementLimit {
				b.Score += 12
				b.Flags = append(b.Flags, "score_manipulation")
			}
		}
	}

	b.Score = min(100, b.Score)
	switch {
	case b.Score >= 50:
		b.RiskLevel = models.RiskHigh
	case b.Score >= 25:
		b.RiskLevel = models.RiskMedium
	}
	return b
}

// fieldSimilarity is the share of common, non-empty fields holding the same value.
// Names count partially when they are close.
func fieldSimilarity(a, b map[string]string) float64 {
	total, matches := 0, 0.0
	for k, va := range a {
		vb, ok := b[k]
		if !ok {
			continue
		}
		va, vb = strings.ToLower(strings.TrimSpace(va)), strings.ToLower(strings.TrimSpace(vb))
		if va == "" || vb == "" {
			continue
		}
		total++
		switch {
		case va == vb:
			matches++
		case k == "name":
			if r := ratio(va, vb) / 100; r > 0.8 {
				matches += r
			}
		}
	}
	if total == 0 {
		return 0
	}
	return matches / float64(total)
}
