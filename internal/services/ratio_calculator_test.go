package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// dec builds a decimal pointer for test fixtures.
func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func allRatios(r *models.FinancialRatios) []*decimal.Decimal {
	return []*decimal.Decimal{
		r.CurrentRatio, r.QuickRatio, r.CashRatio,
		r.GrossMargin, r.OperatingMargin, r.NetMargin,
		r.ReturnOnAssets, r.ReturnOnEquity,
		r.AssetTurnover, r.InventoryTurnover, r.ReceivablesTurnover, r.DaysSalesOutstanding,
		r.DebtToEquity, r.DebtRatio, r.InterestCoverage,
		r.MarketToBook, r.AccrualRatio, r.EarningsQuality,
	}
}

func TestRatioCalculatorCurrentRatio(t *testing.T) {
	calc := NewRatioCalculator()
	data := &models.FinancialData{
		StatementID:        uuid.New(),
		CurrentAssets:      dec(800000),
		CurrentLiabilities: dec(250000),
	}

	ratios := calc.Calculate(data)

	require.NotNil(t, ratios.CurrentRatio)
	assert.True(t, ratios.CurrentRatio.Equal(decimal.NewFromFloat(3.2)),
		"expected 3.2, got %s", ratios.CurrentRatio)
	assert.Equal(t, data.StatementID, ratios.StatementID)
}

func TestRatioCalculatorZeroDenominator(t *testing.T) {
	calc := NewRatioCalculator()
	data := &models.FinancialData{
		StatementID:        uuid.New(),
		CurrentAssets:      dec(800000),
		CurrentLiabilities: dec(0),
		Revenue:            dec(1000000),
		NetIncome:          dec(0),
		OperatingCashFlow:  dec(50000),
	}

	ratios := calc.Calculate(data)

	assert.Nil(t, ratios.CurrentRatio, "zero denominator must yield nil, never infinity")
	assert.Nil(t, ratios.EarningsQuality, "zero net income must yield nil earnings quality")
}

func TestRatioCalculatorMissingOperands(t *testing.T) {
	calc := NewRatioCalculator()
	ratios := calc.Calculate(&models.FinancialData{StatementID: uuid.New()})

	for i, ratio := range allRatios(ratios) {
		assert.Nil(t, ratio, "ratio %d should be nil with no inputs", i)
	}
}

func TestRatioCalculatorClampsExtremeValues(t *testing.T) {
	calc := NewRatioCalculator()
	data := &models.FinancialData{
		StatementID:        uuid.New(),
		CurrentAssets:      dec(1e18),
		CurrentLiabilities: dec(0.0001),
		TotalLiabilities:   dec(1e18),
		TotalEquity:        dec(-0.0001),
	}

	ratios := calc.Calculate(data)

	require.NotNil(t, ratios.CurrentRatio)
	assert.True(t, ratios.CurrentRatio.Equal(utils.RatioBound),
		"oversized ratio must clamp to the upper bound, got %s", ratios.CurrentRatio)
	require.NotNil(t, ratios.DebtToEquity)
	assert.True(t, ratios.DebtToEquity.Equal(utils.RatioBound.Neg()),
		"oversized negative ratio must clamp to the lower bound, got %s", ratios.DebtToEquity)
}

func TestRatioCalculatorDaysSalesOutstanding(t *testing.T) {
	calc := NewRatioCalculator()
	data := &models.FinancialData{
		StatementID: uuid.New(),
		Revenue:     dec(3650000),
		Receivables: dec(100000),
	}

	ratios := calc.Calculate(data)

	require.NotNil(t, ratios.ReceivablesTurnover)
	require.NotNil(t, ratios.DaysSalesOutstanding)
	assert.True(t, ratios.ReceivablesTurnover.Equal(decimal.NewFromFloat(36.5)))
	assert.True(t, ratios.DaysSalesOutstanding.Equal(decimal.NewFromInt(10)),
		"365/36.5 should be 10, got %s", ratios.DaysSalesOutstanding)
}

// Every output stays nil or inside the bounded range, whatever the input,
// including zero denominators and wild magnitudes.
func TestRatioCalculatorBoundedOutputProperty(t *testing.T) {
	calc := NewRatioCalculator()
	rng := rand.New(rand.NewSource(42))

	randomField := func() *decimal.Decimal {
		switch rng.Intn(4) {
		case 0:
			return nil
		case 1:
			return dec(0)
		case 2:
			return dec((rng.Float64() - 0.5) * 2e12)
		default:
			return dec((rng.Float64() - 0.5) * 1e4)
		}
	}

	for i := 0; i < 500; i++ {
		data := &models.FinancialData{
			StatementID:        uuid.New(),
			Revenue:            randomField(),
			CostOfSales:        randomField(),
			GrossProfit:        randomField(),
			OperatingIncome:    randomField(),
			InterestExpense:    randomField(),
			NetIncome:          randomField(),
			Cash:               randomField(),
			ShortTermInvestments: randomField(),
			Receivables:        randomField(),
			Inventory:          randomField(),
			CurrentAssets:      randomField(),
			TotalAssets:        randomField(),
			CurrentLiabilities: randomField(),
			TotalLiabilities:   randomField(),
			TotalEquity:        randomField(),
			OperatingCashFlow:  randomField(),
			MarketCap:          randomField(),
		}

		ratios := calc.Calculate(data)
		for j, ratio := range allRatios(ratios) {
			if ratio == nil {
				continue
			}
			assert.True(t, ratio.Abs().LessThanOrEqual(utils.RatioBound),
				"iteration %d ratio %d out of range: %s", i, j, ratio)
		}
	}
}

func TestRatioCalculatorDeterministic(t *testing.T) {
	calc := NewRatioCalculator()
	data := &models.FinancialData{
		StatementID:        uuid.New(),
		Revenue:            dec(5000000),
		GrossProfit:        dec(2000000),
		NetIncome:          dec(400000),
		TotalAssets:        dec(9000000),
		TotalEquity:        dec(4000000),
		CurrentAssets:      dec(3000000),
		CurrentLiabilities: dec(1500000),
		OperatingCashFlow:  dec(600000),
	}

	first := calc.Calculate(data)
	second := calc.Calculate(data)

	firstRatios, secondRatios := allRatios(first), allRatios(second)
	for i := range firstRatios {
		if firstRatios[i] == nil {
			assert.Nil(t, secondRatios[i])
			continue
		}
		require.NotNil(t, secondRatios[i])
		assert.True(t, firstRatios[i].Equal(*secondRatios[i]))
	}
}
