package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// Beneish M-score intercept, weights and probability cut-offs.
var (
	manipIntercept  = decimal.NewFromFloat(-4.84)
	manipWeightDSRI = decimal.NewFromFloat(0.92)
	manipWeightGMI  = decimal.NewFromFloat(0.528)
	manipWeightAQI  = decimal.NewFromFloat(0.404)
	manipWeightSGI  = decimal.NewFromFloat(0.892)
	manipWeightDEPI = decimal.NewFromFloat(0.115)
	manipWeightSGAI = decimal.NewFromFloat(0.172)
	manipWeightTATA = decimal.NewFromFloat(4.679)
	manipWeightLVGI = decimal.NewFromFloat(0.327)

	manipHighCutoff   = decimal.NewFromFloat(-1.78)
	manipMediumCutoff = decimal.NewFromFloat(-2.22)

	indexNeutral = decimal.NewFromInt(1)
)

// ManipulationScorer computes the Beneish-style earnings manipulation
// score from the current period plus the externally supplied year-over-year
// growth ratios. Pure: the caller persists the result.
//
// The growth fields carry enough of the prior period to derive DSRI, GMI,
// SGI and LVGI exactly. AQI, DEPI and SGAI need prior-period balance-sheet
// detail the data model does not supply and are held at the neutral index
// value of 1, which removes them from the composite's swing without
// removing their weight.
type ManipulationScorer struct{}

// NewManipulationScorer creates a new scorer instance.
func NewManipulationScorer() *ManipulationScorer {
	return &ManipulationScorer{}
}

// Score computes the eight indices and the composite for one statement.
// The composite (and the probability) is nil unless every index could be
// derived.
func (s *ManipulationScorer) Score(data *models.FinancialData) *models.ManipulationScore {
	score := &models.ManipulationScore{
		ID:          uuid.New(),
		StatementID: data.StatementID,
		CreatedAt:   time.Now().UTC(),
	}

	revenueFactor := growthFactor(data.RevenueGrowth)
	receivablesFactor := growthFactor(data.ReceivablesGrowth)
	grossProfitFactor := growthFactor(data.GrossProfitGrowth)
	assetFactor := growthFactor(data.AssetGrowth)
	liabilityFactor := growthFactor(data.LiabilityGrowth)

	// DSRI: (receivables_t/sales_t) / (receivables_t-1/sales_t-1)
	score.DSRI = utils.SafeDiv(receivablesFactor, revenueFactor)
	// GMI: prior gross margin over current gross margin
	score.GMI = utils.SafeDiv(revenueFactor, grossProfitFactor)
	// SGI: sales_t / sales_t-1
	score.SGI = clone(revenueFactor)
	// LVGI: (liabilities_t/assets_t) / (liabilities_t-1/assets_t-1)
	score.LVGI = utils.SafeDiv(liabilityFactor, assetFactor)
	// TATA: (net income - operating cash flow) / total assets
	score.TATA = utils.SafeDiv(diff(data.NetIncome, data.OperatingCashFlow), data.TotalAssets)

	// Neutral without prior-period asset mix, depreciation rate and SG&A.
	score.AQI = clone(&indexNeutral)
	score.DEPI = clone(&indexNeutral)
	score.SGAI = clone(&indexNeutral)

	if score.DSRI == nil || score.GMI == nil || score.SGI == nil || score.LVGI == nil || score.TATA == nil {
		return score
	}

	composite := manipIntercept.
		Add(manipWeightDSRI.Mul(*score.DSRI)).
		Add(manipWeightGMI.Mul(*score.GMI)).
		Add(manipWeightAQI.Mul(*score.AQI)).
		Add(manipWeightSGI.Mul(*score.SGI)).
		Add(manipWeightDEPI.Mul(*score.DEPI)).
		Sub(manipWeightSGAI.Mul(*score.SGAI)).
		Add(manipWeightTATA.Mul(*score.TATA)).
		Sub(manipWeightLVGI.Mul(*score.LVGI))
	composite = utils.ClampDecimal(composite)

	score.Composite = &composite
	score.Probability = categorizeManipulation(composite)
	return score
}

// categorizeManipulation maps a composite to its probability band.
func categorizeManipulation(composite decimal.Decimal) models.ManipulationProbability {
	switch {
	case composite.GreaterThan(manipHighCutoff):
		return models.ManipulationProbabilityHigh
	case composite.GreaterThan(manipMediumCutoff):
		return models.ManipulationProbabilityMedium
	default:
		return models.ManipulationProbabilityLow
	}
}

// growthFactor converts a year-over-year growth rate into the current-to-
// prior ratio (1 + growth), or nil when the rate is missing.
func growthFactor(growth *decimal.Decimal) *decimal.Decimal {
	if growth == nil {
		return nil
	}
	factor := indexNeutral.Add(*growth)
	return &factor
}

// clone copies a decimal pointer so persisted scores never alias shared
// package state.
func clone(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
