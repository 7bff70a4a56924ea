package models

type NameMatch struct {
	Similarity      float64 `json:"similarity" bson:"similarity"`
	Ratio           float64 `json:"ratio" bson:"ratio"`
	PartialRatio    float64 `json:"partial_ratio" bson:"partial_ratio"`
	TokenSortRatio  float64 `json:"token_sort_ratio" bson:"token_sort_ratio"`
	TokenSetRatio   float64 `json:"token_set_ratio" bson:"token_set_ratio"`
	Matches         bool    `json:"matches" bson:"matches"`
	ConfidenceLevel string  `json:"confidence_level" bson:"confidence_level"`
	Result          string  `json:"result" bson:"result"`
	Extracted       string  `json:"extracted_normalized" bson:"extracted_normalized"`
	Entered         string  `json:"entered_normalized" bson:"entered_normalized"`
}

type DuplicateCheck struct {
	IsDuplicate     bool     `json:"is_duplicate" bson:"is_duplicate"`
	DuplicateCount  int      `json:"duplicate_count" bson:"duplicate_count"`
	DuplicateUsers  []string `json:"duplicate_users,omitempty" bson:"duplicate_users,omitempty"`
	DuplicateRecord []string `json:"duplicate_records,omitempty" bson:"duplicate_records,omitempty"`
}

type BehaviorAnalysis struct {
	Score          float64  `json:"score" bson:"score"`
	RiskLevel      string   `json:"risk_level" bson:"risk_level"`
	Flags          []string `json:"flags" bson:"flags"`
	HistoryChecked int      `json:"history_checked" bson:"history_checked"`
}

type Validation struct {
	IsValid         bool     `json:"is_valid" bson:"is_valid"`
	ValidationScore float64  `json:"validation_score" bson:"validation_score"`
	Errors          []string `json:"errors" bson:"errors"`
	Warnings        []string `json:"warnings" bson:"warnings"`
}

type FraudAnalysis struct {
	FraudScore          float64  `json:"fraud_score" bson:"fraud_score"`
	RiskLevel           string   `json:"risk_level" bson:"risk_level"`
	RiskFactors         []string `json:"risk_factors" bson:"risk_factors"`
	RequiresReview      bool     `json:"requires_manual_review" bson:"requires_manual_review"`
	FinalConfidence     float64  `json:"final_confidence" bson:"final_confidence"`
	NameMismatchPenalty float64  `json:"name_mismatch_penalty" bson:"name_mismatch_penalty"`
}
