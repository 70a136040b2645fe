package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prediction is one model application to a statement's feature set.
// Several predictions may exist per statement; only the latest from an
// active model is authoritative for risk aggregation.
type Prediction struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	StatementID       uuid.UUID          `json:"statement_id" db:"statement_id"`
	ModelID           uuid.UUID          `json:"model_id" db:"model_id"`
	Probability       decimal.Decimal    `json:"probability" db:"probability"`
	FeatureImportance map[string]float64 `json:"feature_importance" db:"feature_importance"`
	Explanation       string             `json:"explanation" db:"explanation"`
	IsFallback        bool               `json:"is_fallback" db:"is_fallback"`
	PredictedAt       time.Time          `json:"predicted_at" db:"predicted_at"`
}

// FeatureContribution is one ranked (feature, contribution) pair from a
// prediction strategy.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}
