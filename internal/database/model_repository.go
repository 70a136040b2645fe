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

// TxDB is a DB that can also open transactions. *pgxpool.Pool satisfies it,
// as does pgxmock's pool.
type TxDB interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ModelRepository handles database operations for trained models.
// (name, version) is unique.
type ModelRepository struct {
	db TxDB
}

// NewModelRepository creates a new model repository.
func NewModelRepository(db TxDB) *ModelRepository {
	return &ModelRepository{db: db}
}

// WithTx returns a copy bound to the transaction. pgx transactions open
// nested transactions as savepoints, so Activate stays usable inside one.
func (r *ModelRepository) WithTx(tx pgx.Tx) *ModelRepository {
	return &ModelRepository{db: tx}
}

const modelColumns = `id, name, version, model_type, storage_path, feature_indexes,
	performance_metrics, is_active, trained_at, created_at`

func scanModel(row pgx.Row) (*models.MLModel, error) {
	var m models.MLModel
	var metricsRaw []byte
	err := row.Scan(
		&m.ID, &m.Name, &m.Version, &m.ModelType, &m.StoragePath, &m.FeatureIndexes,
		&metricsRaw, &m.IsActive, &m.TrainedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metricsRaw) > 0 {
		if err := json.Unmarshal(metricsRaw, &m.PerformanceMetrics); err != nil {
			return nil, fmt.Errorf("failed to parse model performance metrics: %w", err)
		}
	}
	return &m, nil
}

// Insert persists a trained model.
func (r *ModelRepository) Insert(ctx context.Context, m *models.MLModel) error {
	metricsRaw, err := json.Marshal(m.PerformanceMetrics)
	if err != nil {
		return fmt.Errorf("failed to serialize model performance metrics: %w", err)
	}

	query := `
		INSERT INTO ml_models (
			id, name, version, model_type, storage_path, feature_indexes,
			performance_metrics, is_active, trained_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		m.ID, m.Name, m.Version, m.ModelType, m.StoragePath, m.FeatureIndexes,
		metricsRaw, m.IsActive, m.TrainedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}
	return nil
}

// GetByID fetches one model.
func (r *ModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MLModel, error) {
	query := `SELECT ` + modelColumns + ` FROM ml_models WHERE id = $1`

	m, err := scanModel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("model", id.String())
		}
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return m, nil
}

// FindActive returns every currently active model.
func (r *ModelRepository) FindActive(ctx context.Context) ([]*models.MLModel, error) {
	query := `SELECT ` + modelColumns + ` FROM ml_models WHERE is_active = true ORDER BY trained_at DESC`
	return r.queryModels(ctx, query)
}

// FindActiveByType returns the active model for one strategy type, or a
// NotFoundError when none is active.
func (r *ModelRepository) FindActiveByType(ctx context.Context, modelType models.ModelType) (*models.MLModel, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM ml_models
		WHERE is_active = true AND model_type = $1
		ORDER BY trained_at DESC
		LIMIT 1
	`

	m, err := scanModel(r.db.QueryRow(ctx, query, modelType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("active model of type", string(modelType))
		}
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}
	return m, nil
}

// FindMostRecentlyTrained returns the newest model across all types, or a
// NotFoundError when no model exists at all.
func (r *ModelRepository) FindMostRecentlyTrained(ctx context.Context) (*models.MLModel, error) {
	query := `SELECT ` + modelColumns + ` FROM ml_models ORDER BY trained_at DESC LIMIT 1`

	m, err := scanModel(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("model", "any")
		}
		return nil, fmt.Errorf("failed to get most recently trained model: %w", err)
	}
	return m, nil
}

// FindAll returns every stored model.
func (r *ModelRepository) FindAll(ctx context.Context) ([]*models.MLModel, error) {
	query := `SELECT ` + modelColumns + ` FROM ml_models ORDER BY trained_at DESC`
	return r.queryModels(ctx, query)
}

// Activate makes the given model the single active one of its type. The
// deactivation of siblings and the activation commit together in one
// transaction, so concurrent activations serialize at the database instead
// of racing through a read-then-write window.
func (r *ModelRepository) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin activation transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var modelType models.ModelType
	err = tx.QueryRow(ctx, `SELECT model_type FROM ml_models WHERE id = $1`, id).Scan(&modelType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.NewNotFoundError("model", id.String())
		}
		return fmt.Errorf("failed to load model for activation: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE ml_models SET is_active = false WHERE model_type = $1 AND is_active = true`, modelType,
	); err != nil {
		return fmt.Errorf("failed to deactivate sibling models: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE ml_models SET is_active = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to activate model: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit model activation: %w", err)
	}
	return nil
}

// Delete removes a model. Deleting the currently active model is a
// conflict; deactivate or activate a replacement first.
func (r *ModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.IsActive {
		return utils.NewConflictErrorf("model %s v%s is active and cannot be deleted", m.Name, m.Version)
	}

	_, err = r.db.Exec(ctx, `DELETE FROM ml_models WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}
	return nil
}

func (r *ModelRepository) queryModels(ctx context.Context, query string, args ...interface{}) ([]*models.MLModel, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var result []*models.MLModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read models: %w", err)
	}
	return result, nil
}
