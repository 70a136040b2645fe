package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// RatioCalculator derives the 18 financial ratios from raw statement
// figures. It is pure: no persistence, no side effects. Every division is
// guarded, so a ratio is nil whenever an operand is missing or a
// denominator is zero, and every computed value is clamped to the bounded
// range the fixed-precision columns can hold.
type RatioCalculator struct{}

// NewRatioCalculator creates a new calculator instance.
func NewRatioCalculator() *RatioCalculator {
	return &RatioCalculator{}
}

// Calculate derives all ratios for one statement's financial data.
func (calc *RatioCalculator) Calculate(data *models.FinancialData) *models.FinancialRatios {
	ratios := &models.FinancialRatios{
		ID:          uuid.New(),
		StatementID: data.StatementID,
		CreatedAt:   time.Now().UTC(),
	}

	// Liquidity
	ratios.CurrentRatio = utils.SafeDiv(data.CurrentAssets, data.CurrentLiabilities)
	ratios.QuickRatio = utils.SafeDiv(sum(data.Cash, data.ShortTermInvestments, data.Receivables), data.CurrentLiabilities)
	ratios.CashRatio = utils.SafeDiv(sum(data.Cash, data.ShortTermInvestments), data.CurrentLiabilities)

	// Profitability, expressed as percentages
	ratios.GrossMargin = percentOf(data.GrossProfit, data.Revenue)
	ratios.OperatingMargin = percentOf(data.OperatingIncome, data.Revenue)
	ratios.NetMargin = percentOf(data.NetIncome, data.Revenue)
	ratios.ReturnOnAssets = percentOf(data.NetIncome, data.TotalAssets)
	ratios.ReturnOnEquity = percentOf(data.NetIncome, data.TotalEquity)

	// Efficiency
	ratios.AssetTurnover = utils.SafeDiv(data.Revenue, data.TotalAssets)
	ratios.InventoryTurnover = utils.SafeDiv(data.CostOfSales, data.Inventory)
	ratios.ReceivablesTurnover = utils.SafeDiv(data.Revenue, data.Receivables)
	ratios.DaysSalesOutstanding = utils.SafeDiv(&daysPerYear, ratios.ReceivablesTurnover)

	// Leverage
	ratios.DebtToEquity = utils.SafeDiv(data.TotalLiabilities, data.TotalEquity)
	ratios.DebtRatio = utils.SafeDiv(data.TotalLiabilities, data.TotalAssets)
	ratios.InterestCoverage = utils.SafeDiv(data.OperatingIncome, data.InterestExpense)

	// Valuation
	ratios.MarketToBook = utils.SafeDiv(data.MarketCap, data.TotalEquity)

	// Earnings quality
	ratios.AccrualRatio = utils.SafeDiv(diff(data.NetIncome, data.OperatingCashFlow), data.TotalAssets)
	ratios.EarningsQuality = utils.SafeDiv(data.OperatingCashFlow, data.NetIncome)

	return ratios
}

// sum adds its operands, or returns nil when any is missing.
func sum(operands ...*decimal.Decimal) *decimal.Decimal {
	total := decimal.Zero
	for _, op := range operands {
		if op == nil {
			return nil
		}
		total = total.Add(*op)
	}
	return &total
}

// diff subtracts b from a, or returns nil when either is missing.
func diff(a, b *decimal.Decimal) *decimal.Decimal {
	if a == nil || b == nil {
		return nil
	}
	d := a.Sub(*b)
	return &d
}

// percentOf divides num by den and scales to a percentage, clamped.
func percentOf(num, den *decimal.Decimal) *decimal.Decimal {
	q := utils.SafeDiv(num, den)
	if q == nil {
		return nil
	}
	pct := utils.ClampDecimal(q.Mul(hundred))
	return &pct
}
