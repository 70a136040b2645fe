package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
)

func distressFixture() *models.FinancialData {
	return &models.FinancialData{
		StatementID:        uuid.New(),
		CurrentAssets:      dec(500000),
		CurrentLiabilities: dec(300000),
		RetainedEarnings:   dec(250000),
		PretaxIncome:       dec(180000),
		InterestExpense:    dec(20000),
		MarketValueEquity:  dec(1200000),
		TotalLiabilities:   dec(800000),
		Revenue:            dec(2000000),
		TotalAssets:        dec(1000000),
	}
}

func TestDistressScorerComposite(t *testing.T) {
	scorer := NewDistressScorer()
	score := scorer.Score(distressFixture())

	// X1=0.2, X2=0.25, X3=0.2, X4=1.5, X5=2.0
	// 1.2*0.2 + 1.4*0.25 + 3.3*0.2 + 0.6*1.5 + 1.0*2.0 = 4.15
	require.NotNil(t, score.Composite)
	assert.True(t, score.Composite.Equal(decimal.NewFromFloat(4.15)),
		"expected 4.15, got %s", score.Composite)
	assert.Equal(t, models.DistressCategorySafe, score.Category)
}

func TestDistressScorerCategories(t *testing.T) {
	tests := []struct {
		name      string
		composite float64
		want      models.DistressCategory
	}{
		{"deep distress", 0.5, models.DistressCategoryDistress},
		{"just under the distress boundary", 1.7999, models.DistressCategoryDistress},
		{"exactly 1.8 is grey, not distress", 1.8, models.DistressCategoryGrey},
		{"mid grey zone", 2.5, models.DistressCategoryGrey},
		{"exactly 3.0 is safe", 3.0, models.DistressCategorySafe},
		{"well clear", 5.0, models.DistressCategorySafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeDistress(decimal.NewFromFloat(tt.composite))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDistressScorerMissingComponent(t *testing.T) {
	scorer := NewDistressScorer()
	data := distressFixture()
	data.TotalLiabilities = nil // kills X4

	score := scorer.Score(data)

	assert.Nil(t, score.X4)
	assert.Nil(t, score.Composite, "composite requires all five components")
	assert.Empty(t, score.Category)
	assert.NotNil(t, score.X1, "other components still computed")
}

func TestDistressScorerMarketCapFallback(t *testing.T) {
	scorer := NewDistressScorer()
	data := distressFixture()
	data.MarketValueEquity = nil
	data.MarketCap = dec(1200000)

	score := scorer.Score(data)

	require.NotNil(t, score.X4)
	assert.True(t, score.X4.Equal(decimal.NewFromFloat(1.5)))
}

func TestDistressScorerDeterministic(t *testing.T) {
	scorer := NewDistressScorer()
	data := distressFixture()

	first := scorer.Score(data)
	second := scorer.Score(data)

	require.NotNil(t, first.Composite)
	require.NotNil(t, second.Composite)
	assert.True(t, first.Composite.Equal(*second.Composite))
	assert.Equal(t, first.Category, second.Category)
}
