package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
)

func manipulationFixture() *models.FinancialData {
	return &models.FinancialData{
		StatementID:       uuid.New(),
		NetIncome:         dec(100000),
		OperatingCashFlow: dec(100000),
		TotalAssets:       dec(1000000),
		RevenueGrowth:     dec(0),
		ReceivablesGrowth: dec(0),
		GrossProfitGrowth: dec(0),
		AssetGrowth:       dec(0),
		LiabilityGrowth:   dec(0),
	}
}

func TestManipulationScorerNeutralBaseline(t *testing.T) {
	scorer := NewManipulationScorer()
	score := scorer.Score(manipulationFixture())

	// Flat growth makes every derivable index 1 and TATA 0:
	// -4.84 + 0.92 + 0.528 + 0.404 + 0.892 + 0.115 - 0.172 + 0 - 0.327 = -2.48
	require.NotNil(t, score.Composite)
	assert.True(t, score.Composite.Equal(decimal.NewFromFloat(-2.48)),
		"expected -2.48, got %s", score.Composite)
	assert.Equal(t, models.ManipulationProbabilityLow, score.Probability)

	for _, index := range []*decimal.Decimal{score.DSRI, score.GMI, score.SGI, score.LVGI, score.AQI, score.DEPI, score.SGAI} {
		require.NotNil(t, index)
		assert.True(t, index.Equal(decimal.NewFromInt(1)))
	}
	require.NotNil(t, score.TATA)
	assert.True(t, score.TATA.IsZero())
}

func TestManipulationScorerGrowthDrivenIndices(t *testing.T) {
	scorer := NewManipulationScorer()
	data := manipulationFixture()
	data.ReceivablesGrowth = dec(0.5) // receivables outpacing revenue
	data.RevenueGrowth = dec(0.25)
	data.GrossProfitGrowth = dec(-0.2) // margins deteriorating
	data.LiabilityGrowth = dec(0.3)
	data.AssetGrowth = dec(0.04)

	score := scorer.Score(data)

	require.NotNil(t, score.DSRI)
	assert.True(t, score.DSRI.Equal(decimal.NewFromFloat(1.2)), "1.5/1.25, got %s", score.DSRI)
	require.NotNil(t, score.GMI)
	assert.True(t, score.GMI.Equal(decimal.NewFromFloat(1.5625)), "1.25/0.8, got %s", score.GMI)
	require.NotNil(t, score.SGI)
	assert.True(t, score.SGI.Equal(decimal.NewFromFloat(1.25)))
	require.NotNil(t, score.LVGI)
	assert.True(t, score.LVGI.Equal(decimal.NewFromFloat(1.25)), "1.3/1.04, got %s", score.LVGI)
	require.NotNil(t, score.Composite)
}

func TestManipulationScorerProbabilityBands(t *testing.T) {
	tests := []struct {
		name      string
		composite float64
		want      models.ManipulationProbability
	}{
		{"above high cutoff", -1.0, models.ManipulationProbabilityHigh},
		{"exactly -1.78 is medium", -1.78, models.ManipulationProbabilityMedium},
		{"between cutoffs", -2.0, models.ManipulationProbabilityMedium},
		{"exactly -2.22 is low", -2.22, models.ManipulationProbabilityLow},
		{"well below", -3.5, models.ManipulationProbabilityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeManipulation(decimal.NewFromFloat(tt.composite))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManipulationScorerMissingGrowth(t *testing.T) {
	scorer := NewManipulationScorer()
	data := manipulationFixture()
	data.RevenueGrowth = nil

	score := scorer.Score(data)

	assert.Nil(t, score.DSRI)
	assert.Nil(t, score.SGI)
	assert.Nil(t, score.Composite, "composite requires every index")
	assert.Empty(t, score.Probability)
	assert.NotNil(t, score.TATA, "indices with intact inputs still computed")
}

func TestManipulationScorerAliasSafety(t *testing.T) {
	scorer := NewManipulationScorer()
	score := scorer.Score(manipulationFixture())

	// Mutating a persisted index must not leak into later scores.
	*score.AQI = decimal.NewFromInt(99)
	next := scorer.Score(manipulationFixture())
	require.NotNil(t, next.AQI)
	assert.True(t, next.AQI.Equal(decimal.NewFromInt(1)))
}
