package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelType tags the scoring strategy a trained model is applied with.
// The set is closed; constructing a predictor strategy for any other tag
// is an error.
type ModelType string

const (
	ModelTypeRedFlagCount    ModelType = "red_flag_count"
	ModelTypeWeightedSigmoid ModelType = "weighted_sigmoid"
	ModelTypeLogisticBlend   ModelType = "logistic_blend"
)

// MLModel is a versioned, activatable trained model. (Name, Version) is
// unique. At most one model per type should be active at a time; activation
// enforces that transactionally rather than through a schema constraint.
type MLModel struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	Name               string             `json:"name" db:"name"`
	Version            string             `json:"version" db:"version"`
	ModelType          ModelType          `json:"model_type" db:"model_type"`
	StoragePath        string             `json:"storage_path" db:"storage_path"`
	FeatureIndexes     string             `json:"feature_indexes" db:"feature_indexes"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics" db:"performance_metrics"`
	IsActive           bool               `json:"is_active" db:"is_active"`
	TrainedAt          time.Time          `json:"trained_at" db:"trained_at"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
}

// Accuracy returns the model's reported accuracy in (0,1], or 1 when the
// metric is absent or unusable, so callers can multiply by it directly.
func (m *MLModel) Accuracy() float64 {
	acc, ok := m.PerformanceMetrics["accuracy"]
	if !ok || acc <= 0 || acc > 1 {
		return 1
	}
	return acc
}
