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

// RatioRepository handles database operations for derived financial ratios.
type RatioRepository struct {
	db DB
}

// NewRatioRepository creates a new ratio repository.
func NewRatioRepository(db DB) *RatioRepository {
	return &RatioRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *RatioRepository) WithTx(tx pgx.Tx) *RatioRepository {
	return &RatioRepository{db: tx}
}

const ratioColumns = `id, statement_id, current_ratio, quick_ratio, cash_ratio,
	gross_margin, operating_margin, net_margin, return_on_assets, return_on_equity,
	asset_turnover, inventory_turnover, receivables_turnover, days_sales_outstanding,
	debt_to_equity, debt_ratio, interest_coverage, market_to_book,
	accrual_ratio, earnings_quality, created_at`

func scanRatios(row pgx.Row) (*models.FinancialRatios, error) {
	var fr models.FinancialRatios
	err := row.Scan(
		&fr.ID, &fr.StatementID, &fr.CurrentRatio, &fr.QuickRatio, &fr.CashRatio,
		&fr.GrossMargin, &fr.OperatingMargin, &fr.NetMargin, &fr.ReturnOnAssets, &fr.ReturnOnEquity,
		&fr.AssetTurnover, &fr.InventoryTurnover, &fr.ReceivablesTurnover, &fr.DaysSalesOutstanding,
		&fr.DebtToEquity, &fr.DebtRatio, &fr.InterestCoverage, &fr.MarketToBook,
		&fr.AccrualRatio, &fr.EarningsQuality, &fr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

// Insert persists a computed ratio set.
func (r *RatioRepository) Insert(ctx context.Context, fr *models.FinancialRatios) error {
	query := `
		INSERT INTO financial_ratios (
			id, statement_id, current_ratio, quick_ratio, cash_ratio,
			gross_margin, operating_margin, net_margin, return_on_assets, return_on_equity,
			asset_turnover, inventory_turnover, receivables_turnover, days_sales_outstanding,
			debt_to_equity, debt_ratio, interest_coverage, market_to_book,
			accrual_ratio, earnings_quality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.Exec(ctx, query,
		fr.ID, fr.StatementID, fr.CurrentRatio, fr.QuickRatio, fr.CashRatio,
		fr.GrossMargin, fr.OperatingMargin, fr.NetMargin, fr.ReturnOnAssets, fr.ReturnOnEquity,
		fr.AssetTurnover, fr.InventoryTurnover, fr.ReceivablesTurnover, fr.DaysSalesOutstanding,
		fr.DebtToEquity, fr.DebtRatio, fr.InterestCoverage, fr.MarketToBook,
		fr.AccrualRatio, fr.EarningsQuality,
	)
	if err != nil {
		return fmt.Errorf("failed to insert financial ratios: %w", err)
	}
	return nil
}

// GetByStatement fetches the ratio set for one statement.
func (r *RatioRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.FinancialRatios, error) {
	query := `SELECT ` + ratioColumns + ` FROM financial_ratios WHERE statement_id = $1`

	fr, err := scanRatios(r.db.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("financial ratios for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get financial ratios: %w", err)
	}
	return fr, nil
}

// GetLatestByCompany fetches the ratio set of the company's most recent
// analyzed fiscal year.
func (r *RatioRepository) GetLatestByCompany(ctx context.Context, companyID uuid.UUID) (*models.FinancialRatios, error) {
	// Columns are qualified here because statements carries an id and a
	// created_at too.
	query := `
		SELECT fr.id, fr.statement_id, fr.current_ratio, fr.quick_ratio, fr.cash_ratio,
			fr.gross_margin, fr.operating_margin, fr.net_margin, fr.return_on_assets, fr.return_on_equity,
			fr.asset_turnover, fr.inventory_turnover, fr.receivables_turnover, fr.days_sales_outstanding,
			fr.debt_to_equity, fr.debt_ratio, fr.interest_coverage, fr.market_to_book,
			fr.accrual_ratio, fr.earnings_quality, fr.created_at
		FROM financial_ratios fr
		JOIN statements s ON s.id = fr.statement_id
		WHERE s.company_id = $1
		ORDER BY s.fiscal_year DESC, fr.created_at DESC
		LIMIT 1
	`

	fr, err := scanRatios(r.db.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("financial ratios for company", companyID.String())
		}
		return nil, fmt.Errorf("failed to get latest financial ratios: %w", err)
	}
	return fr, nil
}

// DeleteByStatement removes the ratio set for one statement.
func (r *RatioRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM financial_ratios WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete financial ratios: %w", err)
	}
	return nil
}
