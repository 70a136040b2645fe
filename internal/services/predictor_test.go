package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

type fakeModelStore struct {
	active     map[models.ModelType]*models.MLModel
	mostRecent *models.MLModel
	activated  []uuid.UUID
}

func (s *fakeModelStore) FindActiveByType(_ context.Context, modelType models.ModelType) (*models.MLModel, error) {
	if m, ok := s.active[modelType]; ok {
		return m, nil
	}
	return nil, utils.NewNotFoundError("active model of type", string(modelType))
}

func (s *fakeModelStore) FindMostRecentlyTrained(_ context.Context) (*models.MLModel, error) {
	if s.mostRecent == nil {
		return nil, utils.NewNotFoundError("trained model", "any")
	}
	return s.mostRecent, nil
}

func (s *fakeModelStore) Activate(_ context.Context, id uuid.UUID) error {
	s.activated = append(s.activated, id)
	return nil
}

type fakePredictionStore struct {
	inserted []*models.Prediction
}

func (s *fakePredictionStore) Insert(_ context.Context, p *models.Prediction) error {
	s.inserted = append(s.inserted, p)
	return nil
}

func (s *fakePredictionStore) GetLatestActiveByStatement(_ context.Context, statementID uuid.UUID) (*models.Prediction, error) {
	for i := len(s.inserted) - 1; i >= 0; i-- {
		if s.inserted[i].StatementID == statementID {
			return s.inserted[i], nil
		}
	}
	return nil, utils.NewNotFoundError("prediction for statement", statementID.String())
}

func (s *fakePredictionStore) DeleteByStatement(_ context.Context, statementID uuid.UUID) error {
	kept := s.inserted[:0]
	for _, p := range s.inserted {
		if p.StatementID != statementID {
			kept = append(kept, p)
		}
	}
	s.inserted = kept
	return nil
}

func testModel(modelType models.ModelType, accuracy float64) *models.MLModel {
	return &models.MLModel{
		ID:                 uuid.New(),
		Name:               "fraud-detector",
		Version:            "1.0.0",
		ModelType:          modelType,
		PerformanceMetrics: map[string]float64{"accuracy": accuracy},
		IsActive:           true,
		TrainedAt:          time.Now(),
	}
}

// cleanFeatures crosses no fraud threshold.
func cleanFeatures() models.FeatureMap {
	fm := make(models.FeatureMap)
	fm.SetNumber("manipulation_composite", -3.0)
	fm.SetNumber("distress_composite", 4.0)
	fm.SetNumber("accrual_ratio", 0.01)
	fm.SetNumber("earnings_quality", 1.2)
	fm.SetNumber("strength_total", 8)
	fm.SetNumber("days_sales_outstanding", 30)
	fm.SetNumber("receivables_growth", 0.05)
	fm.SetNumber("revenue_growth", 0.1)
	fm.SetNumber("debt_to_equity", 1.0)
	fm.SetNumber("net_margin", 5.0)
	return fm
}

// riskyFeatures crosses every fraud threshold.
func riskyFeatures() models.FeatureMap {
	fm := make(models.FeatureMap)
	fm.SetNumber("manipulation_composite", -1.0)
	fm.SetNumber("distress_composite", 1.0)
	fm.SetNumber("accrual_ratio", 0.2)
	fm.SetNumber("earnings_quality", 0.5)
	fm.SetNumber("strength_total", 2)
	fm.SetNumber("days_sales_outstanding", 120)
	fm.SetNumber("receivables_growth", 0.9)
	fm.SetNumber("revenue_growth", 0.6)
	fm.SetNumber("debt_to_equity", 3.0)
	fm.SetNumber("net_margin", -2.0)
	return fm
}

func TestStrategyForClosedSet(t *testing.T) {
	for _, modelType := range []models.ModelType{
		models.ModelTypeRedFlagCount,
		models.ModelTypeWeightedSigmoid,
		models.ModelTypeLogisticBlend,
	} {
		strategy, err := strategyFor(modelType)
		require.NoError(t, err)
		assert.Equal(t, string(modelType), strategy.name())
	}

	_, err := strategyFor(models.ModelType("gradient_boosted"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model type")
}

func TestFeatureOrdering(t *testing.T) {
	model := testModel(models.ModelTypeRedFlagCount, 1)

	model.FeatureIndexes = `{"net_margin": 0, "accrual_ratio": 1, "debt_to_equity": 2}`
	assert.Equal(t, []string{"net_margin", "accrual_ratio", "debt_to_equity"}, featureOrdering(model))

	model.FeatureIndexes = `not json`
	assert.Equal(t, defaultIndicatorOrder, featureOrdering(model), "unparsable map falls back")

	model.FeatureIndexes = ""
	assert.Equal(t, defaultIndicatorOrder, featureOrdering(model))
}

func TestRedFlagCountStrategyBuckets(t *testing.T) {
	strategy := redFlagCountStrategy{}

	clean, err := strategy.score(cleanFeatures(), defaultIndicatorOrder)
	require.NoError(t, err)
	assert.Equal(t, 0.05, clean.probability)
	assert.Empty(t, clean.contributions)
	assert.Equal(t, 0, clean.metadata["red_flags"])

	risky, err := strategy.score(riskyFeatures(), defaultIndicatorOrder)
	require.NoError(t, err)
	assert.Equal(t, 0.90, risky.probability)
	assert.Len(t, risky.contributions, 10)
	assert.Equal(t, 10, risky.metadata["red_flags"])
}

func TestRedFlagCountStrategyNoIndicators(t *testing.T) {
	strategy := redFlagCountStrategy{}
	_, err := strategy.score(models.FeatureMap{"unrelated": 1.0}, defaultIndicatorOrder)
	assert.Error(t, err)
}

func TestWeightedSigmoidStrategyMonotonic(t *testing.T) {
	strategy := weightedSigmoidStrategy{}

	clean, err := strategy.score(cleanFeatures(), defaultIndicatorOrder)
	require.NoError(t, err)
	risky, err := strategy.score(riskyFeatures(), defaultIndicatorOrder)
	require.NoError(t, err)

	assert.InDelta(t, 0.1192, clean.probability, 0.001, "no flags leaves the bias alone")
	assert.Greater(t, risky.probability, 0.9)
	assert.Greater(t, risky.probability, clean.probability)
}

func TestLogisticBlendStrategyRequiresComposites(t *testing.T) {
	strategy := logisticBlendStrategy{}

	_, err := strategy.score(models.FeatureMap{"manipulation_composite": -2.0}, nil)
	assert.Error(t, err)

	result, err := strategy.score(riskyFeatures(), nil)
	require.NoError(t, err)
	assert.Greater(t, result.probability, 0.5)
	assert.Len(t, result.contributions, 3)
}

func TestFallbackEstimateCapped(t *testing.T) {
	result := fallbackEstimate(riskyFeatures())
	assert.Equal(t, 0.95, result.probability)

	calm := fallbackEstimate(cleanFeatures())
	assert.Equal(t, 0.10, calm.probability)

	noSignals := fallbackEstimate(models.FeatureMap{})
	assert.Equal(t, 0.10, noSignals.probability)
	assert.Empty(t, noSignals.contributions)
}

func TestPredictorUsesActiveModel(t *testing.T) {
	model := testModel(models.ModelTypeRedFlagCount, 0.8)
	modelStore := &fakeModelStore{active: map[models.ModelType]*models.MLModel{model.ModelType: model}}
	predictions := &fakePredictionStore{}
	predictor := NewPredictor(modelStore, predictions, models.ModelTypeRedFlagCount)

	statementID := uuid.New()
	prediction, err := predictor.Predict(context.Background(), statementID, riskyFeatures())

	require.NoError(t, err)
	assert.Equal(t, model.ID, prediction.ModelID)
	assert.False(t, prediction.IsFallback)
	// 0.90 bucket scaled by 0.8 accuracy.
	assert.True(t, prediction.Probability.Equal(decimal.NewFromFloat(0.72)),
		"expected 0.72, got %s", prediction.Probability)
	assert.Empty(t, modelStore.activated)
	require.Len(t, predictions.inserted, 1)
	assert.True(t, strings.HasPrefix(prediction.Explanation, "Moderate"))
}

func TestPredictorActivatesMostRecentlyTrained(t *testing.T) {
	model := testModel(models.ModelTypeLogisticBlend, 1)
	model.IsActive = false
	modelStore := &fakeModelStore{active: map[models.ModelType]*models.MLModel{}, mostRecent: model}
	predictions := &fakePredictionStore{}
	predictor := NewPredictor(modelStore, predictions, models.ModelTypeWeightedSigmoid)

	prediction, err := predictor.Predict(context.Background(), uuid.New(), riskyFeatures())

	require.NoError(t, err)
	assert.Equal(t, model.ID, prediction.ModelID)
	require.Len(t, modelStore.activated, 1)
	assert.Equal(t, model.ID, modelStore.activated[0])
}

func TestPredictorNoModelAvailable(t *testing.T) {
	modelStore := &fakeModelStore{active: map[models.ModelType]*models.MLModel{}}
	predictor := NewPredictor(modelStore, &fakePredictionStore{}, "")

	_, err := predictor.Predict(context.Background(), uuid.New(), riskyFeatures())

	require.Error(t, err)
	assert.True(t, utils.IsMissingPrerequisite(err))
}

func TestPredictorFallsBackOnStrategyFailure(t *testing.T) {
	model := testModel(models.ModelTypeLogisticBlend, 1)
	modelStore := &fakeModelStore{active: map[models.ModelType]*models.MLModel{model.ModelType: model}}
	predictions := &fakePredictionStore{}
	predictor := NewPredictor(modelStore, predictions, models.ModelTypeLogisticBlend)

	// No composite features: the blend strategy cannot score this map.
	prediction, err := predictor.Predict(context.Background(), uuid.New(), models.FeatureMap{"unrelated": 1.0})

	require.NoError(t, err, "strategy failure degrades, never errors")
	assert.True(t, prediction.IsFallback)
	assert.True(t, prediction.Probability.Equal(decimal.NewFromFloat(0.10)))
}

func TestPredictorRoundsProbability(t *testing.T) {
	model := testModel(models.ModelTypeWeightedSigmoid, 1)
	modelStore := &fakeModelStore{active: map[models.ModelType]*models.MLModel{model.ModelType: model}}
	predictions := &fakePredictionStore{}
	predictor := NewPredictor(modelStore, predictions, models.ModelTypeWeightedSigmoid)

	prediction, err := predictor.Predict(context.Background(), uuid.New(), cleanFeatures())

	require.NoError(t, err)
	assert.Equal(t, int32(-4), prediction.Probability.Exponent(),
		"probability persisted at 4 decimal places, got %s", prediction.Probability)
}

func TestBuildExplanation(t *testing.T) {
	contributions := []models.FeatureContribution{
		{Feature: "manipulation_composite", Contribution: 1},
		{Feature: "distress_composite", Contribution: 0.5},
		{Feature: "accrual_ratio", Contribution: 0.33},
		{Feature: "net_margin", Contribution: 0.25},
	}

	text := BuildExplanation(0.8, contributions)

	assert.True(t, strings.HasPrefix(text, "High"))
	assert.Equal(t, 3, strings.Count(text, "\n- "), "at most three bullets")
	assert.Contains(t, text, "earnings-manipulation indicators")

	generic := BuildExplanation(0.1, []models.FeatureContribution{{Feature: "mystery_signal", Contribution: 1}})
	assert.True(t, strings.HasPrefix(generic, "Very low"))
	assert.Contains(t, generic, "mystery signal deviates from peer norms")

	bands := map[float64]string{0.24: "Very low", 0.25: "Low", 0.5: "Moderate", 0.75: "High"}
	for p, prefix := range bands {
		assert.True(t, strings.HasPrefix(BuildExplanation(p, nil), prefix), "probability %v", p)
	}
}
