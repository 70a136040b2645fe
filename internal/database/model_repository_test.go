package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

func modelRow(id uuid.UUID, modelType models.ModelType, active bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "version", "model_type", "storage_path", "feature_indexes",
		"performance_metrics", "is_active", "trained_at", "created_at",
	}).AddRow(
		id, "fraud-detector", "1.4.0", modelType, "/var/models/fraud-detector-1.4.0.bin", "{}",
		[]byte(`{"accuracy":0.87}`), active, time.Now(), time.Now(),
	)
}

func TestModelRepositoryActivate(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectBegin()
	mockPool.ExpectQuery("SELECT model_type FROM ml_models").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"model_type"}).AddRow(models.ModelTypeWeightedSigmoid))
	mockPool.ExpectExec("UPDATE ml_models SET is_active = false").
		WithArgs(models.ModelTypeWeightedSigmoid).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectExec("UPDATE ml_models SET is_active = true").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()

	repo := NewModelRepository(mockPool)
	err = repo.Activate(context.Background(), id)

	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestModelRepositoryActivateMissingModel(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectBegin()
	mockPool.ExpectQuery("SELECT model_type FROM ml_models").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"model_type"}))
	mockPool.ExpectRollback()

	repo := NewModelRepository(mockPool)
	err = repo.Activate(context.Background(), id)

	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestModelRepositoryFindActiveByTypeNotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery("FROM ml_models").
		WithArgs(models.ModelTypeLogisticBlend).
		WillReturnRows(modelRow(uuid.New(), models.ModelTypeLogisticBlend, true))

	repo := NewModelRepository(mockPool)
	m, err := repo.FindActiveByType(context.Background(), models.ModelTypeLogisticBlend)

	require.NoError(t, err)
	assert.Equal(t, models.ModelTypeLogisticBlend, m.ModelType)
	assert.InDelta(t, 0.87, m.PerformanceMetrics["accuracy"], 1e-9)

	mockPool.ExpectQuery("FROM ml_models").
		WithArgs(models.ModelTypeRedFlagCount).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "version", "model_type", "storage_path", "feature_indexes",
			"performance_metrics", "is_active", "trained_at", "created_at",
		}))

	_, err = repo.FindActiveByType(context.Background(), models.ModelTypeRedFlagCount)
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestModelRepositoryDeleteActiveModelConflict(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectQuery("FROM ml_models WHERE id").
		WithArgs(id).
		WillReturnRows(modelRow(id, models.ModelTypeRedFlagCount, true))

	repo := NewModelRepository(mockPool)
	err = repo.Delete(context.Background(), id)

	require.Error(t, err)
	assert.True(t, utils.IsConflict(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
