package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// FinancialDataRepository is the read-only provider of raw statement
// figures. Rows are written by the ingestion layer, never by the pipeline.
type FinancialDataRepository struct {
	db DB
}

// NewFinancialDataRepository creates a new financial data repository.
func NewFinancialDataRepository(db DB) *FinancialDataRepository {
	return &FinancialDataRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FinancialDataRepository) WithTx(tx pgx.Tx) *FinancialDataRepository {
	return &FinancialDataRepository{db: tx}
}

// GetByStatement fetches the single financial data row for a statement.
// A missing row is a typed NotFoundError, distinct from a row whose fields
// are all null.
func (r *FinancialDataRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.FinancialData, error) {
	query := `
		SELECT id, statement_id,
			revenue, cost_of_sales, gross_profit, operating_expenses,
			selling_general_admin, research_development, depreciation_amortization,
			operating_income, interest_expense, interest_income, other_income,
			pretax_income, income_tax_expense, net_income, earnings_per_share,
			cash, short_term_investments, receivables, inventory, prepaid_expenses,
			other_current_assets, current_assets, property_plant_equipment,
			accumulated_depreciation, goodwill, intangible_assets,
			long_term_investments, other_non_current_assets, total_assets,
			accounts_payable, short_term_debt, accrued_liabilities,
			current_liabilities, long_term_debt, deferred_taxes,
			other_non_current_liabilities, total_liabilities, common_stock,
			additional_paid_capital, retained_earnings, treasury_stock, total_equity,
			operating_cash_flow, capital_expenditures, investing_cash_flow,
			financing_cash_flow, dividends_paid, stock_issuance, stock_repurchase,
			net_change_in_cash, free_cash_flow,
			share_price, shares_outstanding, market_cap, market_value_equity,
			book_value_per_share,
			revenue_growth, receivables_growth, gross_profit_growth, asset_growth,
			liability_growth, net_income_growth, operating_cash_flow_growth,
			created_at
		FROM financial_data
		WHERE statement_id = $1
	`

	var fd models.FinancialData
	err := r.db.QueryRow(ctx, query, statementID).Scan(
		&fd.ID, &fd.StatementID,
		&fd.Revenue, &fd.CostOfSales, &fd.GrossProfit, &fd.OperatingExpenses,
		&fd.SellingGeneralAdmin, &fd.ResearchDevelopment, &fd.DepreciationAmortization,
		&fd.OperatingIncome, &fd.InterestExpense, &fd.InterestIncome, &fd.OtherIncome,
		&fd.PretaxIncome, &fd.IncomeTaxExpense, &fd.NetIncome, &fd.EarningsPerShare,
		&fd.Cash, &fd.ShortTermInvestments, &fd.Receivables, &fd.Inventory, &fd.PrepaidExpenses,
		&fd.OtherCurrentAssets, &fd.CurrentAssets, &fd.PropertyPlantEquip,
		&fd.AccumulatedDeprec, &fd.Goodwill, &fd.IntangibleAssets,
		&fd.LongTermInvestments, &fd.OtherNonCurrentAssets, &fd.TotalAssets,
		&fd.AccountsPayable, &fd.ShortTermDebt, &fd.AccruedLiabilities,
		&fd.CurrentLiabilities, &fd.LongTermDebt, &fd.DeferredTaxes,
		&fd.OtherNonCurrentLiab, &fd.TotalLiabilities, &fd.CommonStock,
		&fd.AdditionalPaidCapital, &fd.RetainedEarnings, &fd.TreasuryStock, &fd.TotalEquity,
		&fd.OperatingCashFlow, &fd.CapitalExpenditures, &fd.InvestingCashFlow,
		&fd.FinancingCashFlow, &fd.DividendsPaid, &fd.StockIssuance, &fd.StockRepurchase,
		&fd.NetChangeInCash, &fd.FreeCashFlow,
		&fd.SharePrice, &fd.SharesOutstanding, &fd.MarketCap, &fd.MarketValueEquity,
		&fd.BookValuePerShare,
		&fd.RevenueGrowth, &fd.ReceivablesGrowth, &fd.GrossProfitGrowth, &fd.AssetGrowth,
		&fd.LiabilityGrowth, &fd.NetIncomeGrowth, &fd.OperatingCashFlowGrowth,
		&fd.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("financial data for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get financial data: %w", err)
	}

	return &fd, nil
}
