package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialRatios holds the 18 derived ratios for one statement. A nil field
// means a required operand was missing or a denominator was zero; the
// calculator never persists a computed infinity or NaN.
type FinancialRatios struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StatementID uuid.UUID `json:"statement_id" db:"statement_id"`

	// Liquidity
	CurrentRatio *decimal.Decimal `json:"current_ratio" db:"current_ratio"`
	QuickRatio   *decimal.Decimal `json:"quick_ratio" db:"quick_ratio"`
	CashRatio    *decimal.Decimal `json:"cash_ratio" db:"cash_ratio"`

	// Profitability (percentages)
	GrossMargin     *decimal.Decimal `json:"gross_margin" db:"gross_margin"`
	OperatingMargin *decimal.Decimal `json:"operating_margin" db:"operating_margin"`
	NetMargin       *decimal.Decimal `json:"net_margin" db:"net_margin"`
	ReturnOnAssets  *decimal.Decimal `json:"return_on_assets" db:"return_on_assets"`
	ReturnOnEquity  *decimal.Decimal `json:"return_on_equity" db:"return_on_equity"`

	// Efficiency
	AssetTurnover        *decimal.Decimal `json:"asset_turnover" db:"asset_turnover"`
	InventoryTurnover    *decimal.Decimal `json:"inventory_turnover" db:"inventory_turnover"`
	ReceivablesTurnover  *decimal.Decimal `json:"receivables_turnover" db:"receivables_turnover"`
	DaysSalesOutstanding *decimal.Decimal `json:"days_sales_outstanding" db:"days_sales_outstanding"`

	// Leverage
	DebtToEquity     *decimal.Decimal `json:"debt_to_equity" db:"debt_to_equity"`
	DebtRatio        *decimal.Decimal `json:"debt_ratio" db:"debt_ratio"`
	InterestCoverage *decimal.Decimal `json:"interest_coverage" db:"interest_coverage"`

	// Valuation
	MarketToBook *decimal.Decimal `json:"market_to_book" db:"market_to_book"`

	// Earnings quality
	AccrualRatio    *decimal.Decimal `json:"accrual_ratio" db:"accrual_ratio"`
	EarningsQuality *decimal.Decimal `json:"earnings_quality" db:"earnings_quality"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
