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

// DistressScoreRepository handles database operations for Altman-style
// distress scores.
type DistressScoreRepository struct {
	db DB
}

// NewDistressScoreRepository creates a new distress score repository.
func NewDistressScoreRepository(db DB) *DistressScoreRepository {
	return &DistressScoreRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *DistressScoreRepository) WithTx(tx pgx.Tx) *DistressScoreRepository {
	return &DistressScoreRepository{db: tx}
}

// Insert persists a computed distress score.
func (r *DistressScoreRepository) Insert(ctx context.Context, s *models.DistressScore) error {
	query := `
		INSERT INTO distress_scores (id, statement_id, x1, x2, x3, x4, x5, composite, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.StatementID, s.X1, s.X2, s.X3, s.X4, s.X5, s.Composite, nullableCategory(string(s.Category)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert distress score: %w", err)
	}
	return nil
}

// GetByStatement fetches the distress score for one statement.
func (r *DistressScoreRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.DistressScore, error) {
	query := `
		SELECT id, statement_id, x1, x2, x3, x4, x5, composite, COALESCE(category, ''), created_at
		FROM distress_scores WHERE statement_id = $1
	`

	var s models.DistressScore
	err := r.db.QueryRow(ctx, query, statementID).Scan(
		&s.ID, &s.StatementID, &s.X1, &s.X2, &s.X3, &s.X4, &s.X5, &s.Composite, &s.Category, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("distress score for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get distress score: %w", err)
	}
	return &s, nil
}

// DeleteByStatement removes the distress score for one statement.
func (r *DistressScoreRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM distress_scores WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete distress score: %w", err)
	}
	return nil
}

// ManipulationScoreRepository handles database operations for Beneish-style
// manipulation scores.
type ManipulationScoreRepository struct {
	db DB
}

// NewManipulationScoreRepository creates a new manipulation score repository.
func NewManipulationScoreRepository(db DB) *ManipulationScoreRepository {
	return &ManipulationScoreRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ManipulationScoreRepository) WithTx(tx pgx.Tx) *ManipulationScoreRepository {
	return &ManipulationScoreRepository{db: tx}
}

// Insert persists a computed manipulation score.
func (r *ManipulationScoreRepository) Insert(ctx context.Context, s *models.ManipulationScore) error {
	query := `
		INSERT INTO manipulation_scores (
			id, statement_id, dsri, gmi, aqi, sgi, depi, sgai, lvgi, tata, composite, probability
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.StatementID, s.DSRI, s.GMI, s.AQI, s.SGI, s.DEPI, s.SGAI, s.LVGI, s.TATA,
		s.Composite, nullableCategory(string(s.Probability)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert manipulation score: %w", err)
	}
	return nil
}

// GetByStatement fetches the manipulation score for one statement.
func (r *ManipulationScoreRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.ManipulationScore, error) {
	query := `
		SELECT id, statement_id, dsri, gmi, aqi, sgi, depi, sgai, lvgi, tata,
			composite, COALESCE(probability, ''), created_at
		FROM manipulation_scores WHERE statement_id = $1
	`

	var s models.ManipulationScore
	err := r.db.QueryRow(ctx, query, statementID).Scan(
		&s.ID, &s.StatementID, &s.DSRI, &s.GMI, &s.AQI, &s.SGI, &s.DEPI, &s.SGAI, &s.LVGI, &s.TATA,
		&s.Composite, &s.Probability, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("manipulation score for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get manipulation score: %w", err)
	}
	return &s, nil
}

// DeleteByStatement removes the manipulation score for one statement.
func (r *ManipulationScoreRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM manipulation_scores WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete manipulation score: %w", err)
	}
	return nil
}

// StrengthScoreRepository handles database operations for Piotroski-style
// strength scores.
type StrengthScoreRepository struct {
	db DB
}

// NewStrengthScoreRepository creates a new strength score repository.
func NewStrengthScoreRepository(db DB) *StrengthScoreRepository {
	return &StrengthScoreRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StrengthScoreRepository) WithTx(tx pgx.Tx) *StrengthScoreRepository {
	return &StrengthScoreRepository{db: tx}
}

// Insert persists a computed strength score.
func (r *StrengthScoreRepository) Insert(ctx context.Context, s *models.StrengthScore) error {
	query := `
		INSERT INTO strength_scores (
			id, statement_id, positive_net_income, positive_operating_cash,
			cash_exceeds_income, improving_roa, decreasing_leverage,
			improving_current_ratio, no_new_shares, improving_gross_margin,
			improving_asset_turnover, total, category
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID, s.StatementID, s.PositiveNetIncome, s.PositiveOperatingCash,
		s.CashExceedsIncome, s.ImprovingROA, s.DecreasingLeverage,
		s.ImprovingCurrentRatio, s.NoNewShares, s.ImprovingGrossMargin,
		s.ImprovingAssetTurnover, s.Total, string(s.Category),
	)
	if err != nil {
		return fmt.Errorf("failed to insert strength score: %w", err)
	}
	return nil
}

// GetByStatement fetches the strength score for one statement.
func (r *StrengthScoreRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.StrengthScore, error) {
	query := `
		SELECT id, statement_id, positive_net_income, positive_operating_cash,
			cash_exceeds_income, improving_roa, decreasing_leverage,
			improving_current_ratio, no_new_shares, improving_gross_margin,
			improving_asset_turnover, total, category, created_at
		FROM strength_scores WHERE statement_id = $1
	`

	var s models.StrengthScore
	err := r.db.QueryRow(ctx, query, statementID).Scan(
		&s.ID, &s.StatementID, &s.PositiveNetIncome, &s.PositiveOperatingCash,
		&s.CashExceedsIncome, &s.ImprovingROA, &s.DecreasingLeverage,
		&s.ImprovingCurrentRatio, &s.NoNewShares, &s.ImprovingGrossMargin,
		&s.ImprovingAssetTurnover, &s.Total, &s.Category, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("strength score for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get strength score: %w", err)
	}
	return &s, nil
}

// DeleteByStatement removes the strength score for one statement.
func (r *StrengthScoreRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM strength_scores WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete strength score: %w", err)
	}
	return nil
}

// nullableCategory maps an unset category to NULL so a null composite keeps
// a null classification in the database.
func nullableCategory(category string) interface{} {
	if category == "" {
		return nil
	}
	return category
}
