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

// AssessmentRepository handles database operations for risk assessments.
type AssessmentRepository struct {
	db DB
}

// NewAssessmentRepository creates a new assessment repository.
func NewAssessmentRepository(db DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AssessmentRepository) WithTx(tx pgx.Tx) *AssessmentRepository {
	return &AssessmentRepository{db: tx}
}

const assessmentColumns = `id, statement_id, distress_risk, manipulation_risk, strength_risk,
	ratio_risk, prediction_risk, overall_score, risk_level, summary, assessed_by, assessed_at`

func scanAssessment(row pgx.Row) (*models.RiskAssessment, error) {
	var a models.RiskAssessment
	err := row.Scan(
		&a.ID, &a.StatementID, &a.DistressRisk, &a.ManipulationRisk, &a.StrengthRisk,
		&a.RatioRisk, &a.PredictionRisk, &a.OverallScore, &a.RiskLevel, &a.Summary,
		&a.AssessedBy, &a.AssessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert persists an assessment.
func (r *AssessmentRepository) Insert(ctx context.Context, a *models.RiskAssessment) error {
	query := `
		INSERT INTO risk_assessments (
			id, statement_id, distress_risk, manipulation_risk, strength_risk,
			ratio_risk, prediction_risk, overall_score, risk_level, summary,
			assessed_by, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID, a.StatementID, a.DistressRisk, a.ManipulationRisk, a.StrengthRisk,
		a.RatioRisk, a.PredictionRisk, a.OverallScore, a.RiskLevel, a.Summary,
		a.AssessedBy, a.AssessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert risk assessment: %w", err)
	}
	return nil
}

// GetByStatement fetches the assessment for one statement.
func (r *AssessmentRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.RiskAssessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM risk_assessments WHERE statement_id = $1`

	a, err := scanAssessment(r.db.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("risk assessment for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get risk assessment: %w", err)
	}
	return a, nil
}

// GetLatestByCompany fetches the assessment of the company's most recent
// fiscal year.
func (r *AssessmentRepository) GetLatestByCompany(ctx context.Context, companyID uuid.UUID) (*models.RiskAssessment, error) {
	// Columns are qualified here because statements carries an id too.
	query := `
		SELECT ra.id, ra.statement_id, ra.distress_risk, ra.manipulation_risk, ra.strength_risk,
			ra.ratio_risk, ra.prediction_risk, ra.overall_score, ra.risk_level, ra.summary,
			ra.assessed_by, ra.assessed_at
		FROM risk_assessments ra
		JOIN statements s ON s.id = ra.statement_id
		WHERE s.company_id = $1
		ORDER BY s.fiscal_year DESC, ra.assessed_at DESC
		LIMIT 1
	`

	a, err := scanAssessment(r.db.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("risk assessment for company", companyID.String())
		}
		return nil, fmt.Errorf("failed to get latest risk assessment: %w", err)
	}
	return a, nil
}

// DeleteByStatement removes the assessment for one statement.
func (r *AssessmentRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM risk_assessments WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete risk assessment: %w", err)
	}
	return nil
}
