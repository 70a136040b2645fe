package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// PredictionRepository handles database operations for model predictions.
// A statement can accumulate many predictions; only the latest from an
// active model is authoritative for aggregation.
type PredictionRepository struct {
	db DB
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PredictionRepository) WithTx(tx pgx.Tx) *PredictionRepository {
	return &PredictionRepository{db: tx}
}

// Insert persists a prediction.
func (r *PredictionRepository) Insert(ctx context.Context, p *models.Prediction) error {
	importanceRaw, err := json.Marshal(p.FeatureImportance)
	if err != nil {
		return fmt.Errorf("failed to serialize feature importance: %w", err)
	}

	query := `
		INSERT INTO predictions (
			id, statement_id, model_id, probability, feature_importance,
			explanation, is_fallback, predicted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(ctx, query,
		p.ID, p.StatementID, p.ModelID, p.Probability, importanceRaw,
		p.Explanation, p.IsFallback, p.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// GetLatestActiveByStatement fetches the newest prediction for a statement
// produced by a currently active model.
func (r *PredictionRepository) GetLatestActiveByStatement(ctx context.Context, statementID uuid.UUID) (*models.Prediction, error) {
	query := `
		SELECT p.id, p.statement_id, p.model_id, p.probability, p.feature_importance,
			p.explanation, p.is_fallback, p.predicted_at
		FROM predictions p
		JOIN ml_models m ON m.id = p.model_id
		WHERE p.statement_id = $1 AND m.is_active = true
		ORDER BY p.predicted_at DESC
		LIMIT 1
	`

	p, err := r.scanPrediction(r.db.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("active-model prediction for statement", statementID.String())
		}
		return nil, fmt.Errorf("failed to get latest prediction: %w", err)
	}
	return p, nil
}

// FindByStatement returns the prediction history for a statement, newest
// first.
func (r *PredictionRepository) FindByStatement(ctx context.Context, statementID uuid.UUID) ([]*models.Prediction, error) {
	query := `
		SELECT id, statement_id, model_id, probability, feature_importance,
			explanation, is_fallback, predicted_at
		FROM predictions
		WHERE statement_id = $1
		ORDER BY predicted_at DESC
	`

	rows, err := r.db.Query(ctx, query, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := r.scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	return predictions, nil
}

// DeleteByStatement removes all predictions for one statement.
func (r *PredictionRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM predictions WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete predictions: %w", err)
	}
	return nil
}

func (r *PredictionRepository) scanPrediction(row pgx.Row) (*models.Prediction, error) {
	var p models.Prediction
	var importanceRaw []byte
	err := row.Scan(
		&p.ID, &p.StatementID, &p.ModelID, &p.Probability, &importanceRaw,
		&p.Explanation, &p.IsFallback, &p.PredictedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(importanceRaw) > 0 {
		if err := json.Unmarshal(importanceRaw, &p.FeatureImportance); err != nil {
			return nil, fmt.Errorf("failed to parse feature importance: %w", err)
		}
	}
	return &p, nil
}
