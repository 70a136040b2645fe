package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// Altman Z-score weights and category cut-offs.
var (
	distressWeightX1 = decimal.NewFromFloat(1.2)
	distressWeightX2 = decimal.NewFromFloat(1.4)
	distressWeightX3 = decimal.NewFromFloat(3.3)
	distressWeightX4 = decimal.NewFromFloat(0.6)
	distressWeightX5 = decimal.NewFromFloat(1.0)

	distressCutoff = decimal.NewFromFloat(1.8)
	greyCutoff     = decimal.NewFromFloat(3.0)
)

// DistressScorer computes the Altman-style bankruptcy distress score.
// Pure: the caller persists the result.
type DistressScorer struct{}

// NewDistressScorer creates a new scorer instance.
func NewDistressScorer() *DistressScorer {
	return &DistressScorer{}
}

// Score computes X1-X5 and the composite for one statement. The composite
// (and therefore the category) is nil unless all five components could be
// derived.
func (s *DistressScorer) Score(data *models.FinancialData) *models.DistressScore {
	score := &models.DistressScore{
		ID:          uuid.New(),
		StatementID: data.StatementID,
		CreatedAt:   time.Now().UTC(),
	}

	marketEquity := data.MarketValueEquity
	if marketEquity == nil {
		marketEquity = data.MarketCap
	}

	score.X1 = utils.SafeDiv(data.WorkingCapital(), data.TotalAssets)
	score.X2 = utils.SafeDiv(data.RetainedEarnings, data.TotalAssets)
	score.X3 = utils.SafeDiv(data.EBIT(), data.TotalAssets)
	score.X4 = utils.SafeDiv(marketEquity, data.TotalLiabilities)
	score.X5 = utils.SafeDiv(data.Revenue, data.TotalAssets)

	if score.X1 == nil || score.X2 == nil || score.X3 == nil || score.X4 == nil || score.X5 == nil {
		return score
	}

	composite := distressWeightX1.Mul(*score.X1).
		Add(distressWeightX2.Mul(*score.X2)).
		Add(distressWeightX3.Mul(*score.X3)).
		Add(distressWeightX4.Mul(*score.X4)).
		Add(distressWeightX5.Mul(*score.X5))
	composite = utils.ClampDecimal(composite)

	score.Composite = &composite
	score.Category = categorizeDistress(composite)
	return score
}

// categorizeDistress maps a composite to its 3-way category. The distress
// band is strictly below 1.8; the boundary itself is grey.
func categorizeDistress(composite decimal.Decimal) models.DistressCategory {
	switch {
	case composite.LessThan(distressCutoff):
		return models.DistressCategoryDistress
	case composite.LessThan(greyCutoff):
		return models.DistressCategoryGrey
	default:
		return models.DistressCategorySafe
	}
}
