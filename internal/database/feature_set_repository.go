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

// FeatureSetRepository handles database operations for serialized feature
// vectors.
type FeatureSetRepository struct {
	db DB
}

// NewFeatureSetRepository creates a new feature set repository.
func NewFeatureSetRepository(db DB) *FeatureSetRepository {
	return &FeatureSetRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FeatureSetRepository) WithTx(tx pgx.Tx) *FeatureSetRepository {
	return &FeatureSetRepository{db: tx}
}

// Insert persists a serialized feature set.
func (r *FeatureSetRepository) Insert(ctx context.Context, fs *models.FeatureSet) error {
	query := `
		INSERT INTO feature_sets (id, statement_id, features)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, fs.ID, fs.StatementID, fs.Features)
	if err != nil {
		return fmt.Errorf("failed to insert feature set: %w", err)
	}
	return nil
}

// GetByStatement fetches the feature set for one statement.
func (r *FeatureSetRepository) GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.FeatureSet, error) {
	query := `
		SELECT id, statement_id, features, generated_at
		FROM feature_sets WHERE statement_id = $1
	`

	var fs models.FeatureSet
	err := r.db.QueryRow(ctx, query, statementID).Scan(&fs.ID, &fs.StatementID, &fs.Features, &fs.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("feature set for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get feature set: %w", err)
	}
	return &fs, nil
}

// Exists reports whether a feature set exists for the statement without
// loading the blob. Used by bulk pre-flight checks.
func (r *FeatureSetRepository) Exists(ctx context.Context, statementID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM feature_sets WHERE statement_id = $1)`, statementID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check feature set existence: %w", err)
	}
	return exists, nil
}

// DeleteByStatement removes the feature set for one statement.
func (r *FeatureSetRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM feature_sets WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete feature set: %w", err)
	}
	return nil
}
