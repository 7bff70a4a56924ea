package services

import (
	"fmt"
	"math"
	"strings"

	"kyc-hub/imaging"
	"kyc-hub/models"
	"kyc-hub/ocr"
)

const (
	HighRiskThreshold   = 70
	MediumRiskThreshold = 40
)

var requiredFields = map[string][]string{
	models.DocTypeAadhaar: {ocr.FieldName, ocr.FieldAadhaarNumber},
	models.DocTypePAN:     {ocr.FieldName, ocr.FieldPANNumber},
}

// FraudInput gathers the signals the fraud score is computed from
type FraudInput struct {
	DocType       string
	Fields        map[string]string
	NameMatch     models.NameMatch
	Quality       *imaging.Quality
	Duplicate     models.DuplicateCheck
	OCRConfidence float64
	Patterns      []string
}

// ScoreFraud turns the collected signals into a 0..100 fraud score
func ScoreFraud(in FraudInput) models.FraudAnalysis {
	var (
		score   float64
		factors = []string{}
		a       models.FraudAnalysis
	)

	if !in.NameMatch.Matches {
		a.NameMismatchPenalty = 35 * (1 - in.NameMatch.Similarity/100)
		score += a.NameMismatchPenalty
		factors = append(factors, fmt.Sprintf("Name mismatch detected (%s, similarity %.1f%%)", in.NameMatch.Result, in.NameMatch.Similarity))
	}

	if in.Quality != nil && in.Quality.IssuesDetected {
		score += 30 * (in.Quality.Score / 100)
		factors = append(factors, "Poor image quality: "+strings.Join(in.Quality.Issues, ", "))
	}

	var missing []string
	for _, f := range requiredFields[in.DocType] {
		if in.Fields[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		score += float64(len(missing)) * 15
		factors = append(factors, "Missing critical fields: "+strings.Join(missing, ", "))
	}

	if in.Duplicate.IsDuplicate {
		score += 25
		factors = append(factors, "Similar document found in system")
	}

	for _, p := range in.Patterns {
		score += 10
		factors = append(factors, "Suspicious pattern: "+p)
	}

	a.FraudScore = round1(math.Min(100, score))
	a.RiskFactors = factors
	a.RiskLevel = RiskLevel(a.FraudScore)
	a.RequiresReview = a.FraudScore >= MediumRiskThreshold
	a.FinalConfidence = round1(clamp(in.OCRConfidence+in.NameMatch.Similarity*0.2-a.FraudScore*0.5, 0, 100))
	return a
}

// RiskLevel buckets a fraud score
func RiskLevel(score float64) string {
	switch {
	case score >= HighRiskThreshold:
		return models.RiskHigh
	case score >= MediumRiskThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Validate summarises whether a submission can be accepted without review
func Validate(docType string, fields map[string]string, fraud models.FraudAnalysis, quality *imaging.Quality) models.Validation {
	v := models.Validation{
		IsValid:         fraud.FraudScore < HighRiskThreshold && fields[ocr.FieldName] != "",
		ValidationScore: math.Max(0, 100-fraud.FraudScore),
		Errors:          []string{},
		Warnings:        []string{},
	}

	if fields[ocr.FieldName] == "" {
		v.Errors = append(v.Errors, "Name extraction failed")
	}
	switch {
	case fraud.FraudScore >= HighRiskThreshold:
		v.Errors = append(v.Errors, "High fraud risk detected")
	case fraud.FraudScore >= MediumRiskThreshold:
		v.Warnings = append(v.Warnings, "Medium fraud risk detected")
	}
	if quality != nil && quality.IssuesDetected {
		v.Warnings = append(v.Warnings, "Poor image quality detected")
	}

	switch docType {
	case models.DocTypeAadhaar:
		if num := fields[ocr.FieldAadhaarNumber]; num != "" && !ocr.AadhaarChecksumValid(num) {
			v.Warnings = append(v.Warnings, "Aadhaar number failed checksum verification")
		}
	case models.DocTypePAN:
		if num := fields[ocr.FieldPANNumber]; num != "" && !ocr.PANHolderTypeValid(num) {
			v.Warnings = append(v.Warnings, "PAN holder type is not recognised")
		}
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
