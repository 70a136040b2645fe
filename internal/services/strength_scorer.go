package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridia/fraudlens/internal/models"
)

// StrengthScorer computes the Piotroski-style composite of nine boolean
// balance-sheet strength signals. Pure: the caller persists the result.
//
// Two signals (current-ratio improvement, no new share issuance) need a
// prior-period snapshot the pipeline does not receive and default to true.
// This is a known simplification; the remaining seven are driven by the
// current period and the supplied growth rates.
type StrengthScorer struct{}

// NewStrengthScorer creates a new scorer instance.
func NewStrengthScorer() *StrengthScorer {
	return &StrengthScorer{}
}

// Score evaluates the nine signals for one statement.
func (s *StrengthScorer) Score(data *models.FinancialData) *models.StrengthScore {
	score := &models.StrengthScore{
		ID:          uuid.New(),
		StatementID: data.StatementID,
		CreatedAt:   time.Now().UTC(),
	}

	score.PositiveNetIncome = isPositive(data.NetIncome)
	score.PositiveOperatingCash = isPositive(data.OperatingCashFlow)
	score.CashExceedsIncome = exceeds(data.OperatingCashFlow, data.NetIncome)
	score.ImprovingROA = isPositive(data.NetIncomeGrowth)
	score.DecreasingLeverage = isNegative(data.LiabilityGrowth)
	score.ImprovingCurrentRatio = true // prior-period baseline unavailable
	score.NoNewShares = true           // prior-period baseline unavailable
	score.ImprovingGrossMargin = exceeds(data.GrossProfitGrowth, data.RevenueGrowth)
	score.ImprovingAssetTurnover = exceeds(data.RevenueGrowth, data.AssetGrowth)

	for _, signal := range []bool{
		score.PositiveNetIncome,
		score.PositiveOperatingCash,
		score.CashExceedsIncome,
		score.ImprovingROA,
		score.DecreasingLeverage,
		score.ImprovingCurrentRatio,
		score.NoNewShares,
		score.ImprovingGrossMargin,
		score.ImprovingAssetTurnover,
	} {
		if signal {
			score.Total++
		}
	}

	score.Category = categorizeStrength(score.Total)
	return score
}

// categorizeStrength maps a signal sum to its 3-way category.
func categorizeStrength(total int) models.StrengthCategory {
	switch {
	case total <= 3:
		return models.StrengthCategoryWeak
	case total <= 6:
		return models.StrengthCategoryModerate
	default:
		return models.StrengthCategoryStrong
	}
}

func isPositive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}

func isNegative(d *decimal.Decimal) bool {
	return d != nil && d.IsNegative()
}

// exceeds reports a > b, false when either side is missing.
func exceeds(a, b *decimal.Decimal) bool {
	return a != nil && b != nil && a.GreaterThan(*b)
}
