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

// StatementRepository handles database operations for statements.
type StatementRepository struct {
	db DB
}

// NewStatementRepository creates a new statement repository.
func NewStatementRepository(db DB) *StatementRepository {
	return &StatementRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StatementRepository) WithTx(tx pgx.Tx) *StatementRepository {
	return &StatementRepository{db: tx}
}

const statementColumns = `id, company_id, company_name, fiscal_year, period, status, created_at, updated_at`

func scanStatement(row pgx.Row) (*models.Statement, error) {
	var s models.Statement
	err := row.Scan(
		&s.ID,
		&s.CompanyID,
		&s.CompanyName,
		&s.FiscalYear,
		&s.Period,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID fetches one statement by its identifier.
func (r *StatementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE id = $1`

	s, err := scanStatement(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("statement", id.String())
		}
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return s, nil
}

// FindEligible returns one page of statements that have financial data and
// can therefore be analyzed, ordered by creation time. hasMore reports
// whether another page exists past this one.
func (r *StatementRepository) FindEligible(ctx context.Context, offset, limit int) ([]*models.Statement, bool, error) {
	query := `
		SELECT ` + statementColumns + `
		FROM statements s
		WHERE EXISTS (SELECT 1 FROM financial_data fd WHERE fd.statement_id = s.id)
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`

	// Fetch one row beyond the page to detect a following page.
	rows, err := r.db.Query(ctx, query, offset, limit+1)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query eligible statements: %w", err)
	}
	defer rows.Close()

	var statements []*models.Statement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read eligible statements: %w", err)
	}

	hasMore := len(statements) > limit
	if hasMore {
		statements = statements[:limit]
	}
	return statements, hasMore, nil
}

// FindEligibleByCompany returns every analyzable statement for one company
// in a single pass.
func (r *StatementRepository) FindEligibleByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Statement, error) {
	query := `
		SELECT ` + statementColumns + `
		FROM statements s
		WHERE s.company_id = $1
		  AND EXISTS (SELECT 1 FROM financial_data fd WHERE fd.statement_id = s.id)
		ORDER BY fiscal_year, id
	`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query company statements: %w", err)
	}
	defer rows.Close()

	var statements []*models.Statement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		statements = append(statements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read company statements: %w", err)
	}
	return statements, nil
}

// MarkAnalyzed flips a statement to the analyzed status after a successful
// pipeline run.
func (r *StatementRepository) MarkAnalyzed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE statements
		SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, models.StatementStatusAnalyzed)
	if err != nil {
		return fmt.Errorf("failed to mark statement analyzed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return utils.NewNotFoundError("statement", id.String())
	}
	return nil
}
