package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialData holds the raw statement fields one analysis run consumes.
// At most one row exists per statement. Every monetary field is nullable;
// a nil pointer means the figure was not disclosed, which downstream
// calculators translate into null ratios rather than zeroes.
type FinancialData struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StatementID uuid.UUID `json:"statement_id" db:"statement_id"`

	// Income statement
	Revenue                  *decimal.Decimal `json:"revenue" db:"revenue"`
	CostOfSales              *decimal.Decimal `json:"cost_of_sales" db:"cost_of_sales"`
	GrossProfit              *decimal.Decimal `json:"gross_profit" db:"gross_profit"`
	OperatingExpenses        *decimal.Decimal `json:"operating_expenses" db:"operating_expenses"`
	SellingGeneralAdmin      *decimal.Decimal `json:"selling_general_admin" db:"selling_general_admin"`
	ResearchDevelopment      *decimal.Decimal `json:"research_development" db:"research_development"`
	DepreciationAmortization *decimal.Decimal `json:"depreciation_amortization" db:"depreciation_amortization"`
	OperatingIncome          *decimal.Decimal `json:"operating_income" db:"operating_income"`
	InterestExpense          *decimal.Decimal `json:"interest_expense" db:"interest_expense"`
	InterestIncome           *decimal.Decimal `json:"interest_income" db:"interest_income"`
	OtherIncome              *decimal.Decimal `json:"other_income" db:"other_income"`
	PretaxIncome             *decimal.Decimal `json:"pretax_income" db:"pretax_income"`
	IncomeTaxExpense         *decimal.Decimal `json:"income_tax_expense" db:"income_tax_expense"`
	NetIncome                *decimal.Decimal `json:"net_income" db:"net_income"`
	EarningsPerShare         *decimal.Decimal `json:"earnings_per_share" db:"earnings_per_share"`

	// Balance sheet: assets
	Cash                  *decimal.Decimal `json:"cash" db:"cash"`
	ShortTermInvestments  *decimal.Decimal `json:"short_term_investments" db:"short_term_investments"`
	Receivables           *decimal.Decimal `json:"receivables" db:"receivables"`
	Inventory             *decimal.Decimal `json:"inventory" db:"inventory"`
	PrepaidExpenses       *decimal.Decimal `json:"prepaid_expenses" db:"prepaid_expenses"`
	OtherCurrentAssets    *decimal.Decimal `json:"other_current_assets" db:"other_current_assets"`
	CurrentAssets         *decimal.Decimal `json:"current_assets" db:"current_assets"`
	PropertyPlantEquip    *decimal.Decimal `json:"property_plant_equipment" db:"property_plant_equipment"`
	AccumulatedDeprec     *decimal.Decimal `json:"accumulated_depreciation" db:"accumulated_depreciation"`
	Goodwill              *decimal.Decimal `json:"goodwill" db:"goodwill"`
	IntangibleAssets      *decimal.Decimal `json:"intangible_assets" db:"intangible_assets"`
	LongTermInvestments   *decimal.Decimal `json:"long_term_investments" db:"long_term_investments"`
	OtherNonCurrentAssets *decimal.Decimal `json:"other_non_current_assets" db:"other_non_current_assets"`
	TotalAssets           *decimal.Decimal `json:"total_assets" db:"total_assets"`

	// Balance sheet: liabilities and equity
	AccountsPayable       *decimal.Decimal `json:"accounts_payable" db:"accounts_payable"`
	ShortTermDebt         *decimal.Decimal `json:"short_term_debt" db:"short_term_debt"`
	AccruedLiabilities    *decimal.Decimal `json:"accrued_liabilities" db:"accrued_liabilities"`
	CurrentLiabilities    *decimal.Decimal `json:"current_liabilities" db:"current_liabilities"`
	LongTermDebt          *decimal.Decimal `json:"long_term_debt" db:"long_term_debt"`
	DeferredTaxes         *decimal.Decimal `json:"deferred_taxes" db:"deferred_taxes"`
	OtherNonCurrentLiab   *decimal.Decimal `json:"other_non_current_liabilities" db:"other_non_current_liabilities"`
	TotalLiabilities      *decimal.Decimal `json:"total_liabilities" db:"total_liabilities"`
	CommonStock           *decimal.Decimal `json:"common_stock" db:"common_stock"`
	AdditionalPaidCapital *decimal.Decimal `json:"additional_paid_capital" db:"additional_paid_capital"`
	RetainedEarnings      *decimal.Decimal `json:"retained_earnings" db:"retained_earnings"`
	TreasuryStock         *decimal.Decimal `json:"treasury_stock" db:"treasury_stock"`
	TotalEquity           *decimal.Decimal `json:"total_equity" db:"total_equity"`

	// Cash flow statement
	OperatingCashFlow   *decimal.Decimal `json:"operating_cash_flow" db:"operating_cash_flow"`
	CapitalExpenditures *decimal.Decimal `json:"capital_expenditures" db:"capital_expenditures"`
	InvestingCashFlow   *decimal.Decimal `json:"investing_cash_flow" db:"investing_cash_flow"`
	FinancingCashFlow   *decimal.Decimal `json:"financing_cash_flow" db:"financing_cash_flow"`
	DividendsPaid       *decimal.Decimal `json:"dividends_paid" db:"dividends_paid"`
	StockIssuance       *decimal.Decimal `json:"stock_issuance" db:"stock_issuance"`
	StockRepurchase     *decimal.Decimal `json:"stock_repurchase" db:"stock_repurchase"`
	NetChangeInCash     *decimal.Decimal `json:"net_change_in_cash" db:"net_change_in_cash"`
	FreeCashFlow        *decimal.Decimal `json:"free_cash_flow" db:"free_cash_flow"`

	// Market data
	SharePrice        *decimal.Decimal `json:"share_price" db:"share_price"`
	SharesOutstanding *decimal.Decimal `json:"shares_outstanding" db:"shares_outstanding"`
	MarketCap         *decimal.Decimal `json:"market_cap" db:"market_cap"`
	MarketValueEquity *decimal.Decimal `json:"market_value_equity" db:"market_value_equity"`
	BookValuePerShare *decimal.Decimal `json:"book_value_per_share" db:"book_value_per_share"`

	// Year-over-year growth rates, computed by the ingestion layer from the
	// prior fiscal year before the pipeline ever sees this row.
	RevenueGrowth           *decimal.Decimal `json:"revenue_growth" db:"revenue_growth"`
	ReceivablesGrowth       *decimal.Decimal `json:"receivables_growth" db:"receivables_growth"`
	GrossProfitGrowth       *decimal.Decimal `json:"gross_profit_growth" db:"gross_profit_growth"`
	AssetGrowth             *decimal.Decimal `json:"asset_growth" db:"asset_growth"`
	LiabilityGrowth         *decimal.Decimal `json:"liability_growth" db:"liability_growth"`
	NetIncomeGrowth         *decimal.Decimal `json:"net_income_growth" db:"net_income_growth"`
	OperatingCashFlowGrowth *decimal.Decimal `json:"operating_cash_flow_growth" db:"operating_cash_flow_growth"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WorkingCapital returns currentAssets - currentLiabilities, or nil when
// either side is missing.
func (f *FinancialData) WorkingCapital() *decimal.Decimal {
	if f.CurrentAssets == nil || f.CurrentLiabilities == nil {
		return nil
	}
	wc := f.CurrentAssets.Sub(*f.CurrentLiabilities)
	return &wc
}

// EBIT returns pretax income plus interest expense, or nil when either
// component is missing.
func (f *FinancialData) EBIT() *decimal.Decimal {
	if f.PretaxIncome == nil || f.InterestExpense == nil {
		return nil
	}
	ebit := f.PretaxIncome.Add(*f.InterestExpense)
	return &ebit
}
