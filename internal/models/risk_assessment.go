package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskLevel is the categorical overall verdict for a statement.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelVeryHigh RiskLevel = "very_high"
)

// RiskAssessment is the aggregated verdict for one statement: five sub-risk
// scores on a 0-100 scale, the weighted overall score, the categorical
// level, and a generated narrative. Created or replaced whole on each
// recompute, never patched.
type RiskAssessment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	StatementID      uuid.UUID       `json:"statement_id" db:"statement_id"`
	DistressRisk     decimal.Decimal `json:"distress_risk" db:"distress_risk"`
	ManipulationRisk decimal.Decimal `json:"manipulation_risk" db:"manipulation_risk"`
	StrengthRisk     decimal.Decimal `json:"strength_risk" db:"strength_risk"`
	RatioRisk        decimal.Decimal `json:"ratio_risk" db:"ratio_risk"`
	PredictionRisk   decimal.Decimal `json:"prediction_risk" db:"prediction_risk"`
	OverallScore     decimal.Decimal `json:"overall_score" db:"overall_score"`
	RiskLevel        RiskLevel       `json:"risk_level" db:"risk_level"`
	Summary          string          `json:"summary" db:"summary"`
	AssessedBy       string          `json:"assessed_by" db:"assessed_by"`
	AssessedAt       time.Time       `json:"assessed_at" db:"assessed_at"`
}
