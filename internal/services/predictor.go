package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/logging"
	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// ModelStore serves and activates trained models.
type ModelStore interface {
	FindActiveByType(ctx context.Context, modelType models.ModelType) (*models.MLModel, error)
	FindMostRecentlyTrained(ctx context.Context) (*models.MLModel, error)
	Activate(ctx context.Context, id uuid.UUID) error
}

// PredictionStore persists and serves model predictions.
type PredictionStore interface {
	Insert(ctx context.Context, p *models.Prediction) error
	GetLatestActiveByStatement(ctx context.Context, statementID uuid.UUID) (*models.Prediction, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// Predictor applies a selected model's scoring strategy to a statement's
// feature map and persists the prediction.
type Predictor struct {
	modelStore    ModelStore
	predictions   PredictionStore
	preferredType models.ModelType
	logger        *logrus.Entry
}

// NewPredictor creates a predictor that prefers the active model of the
// given type. An empty preferred type defaults to weighted_sigmoid.
func NewPredictor(modelStore ModelStore, predictions PredictionStore, preferredType models.ModelType) *Predictor {
	if preferredType == "" {
		preferredType = models.ModelTypeWeightedSigmoid
	}
	return &Predictor{
		modelStore:    modelStore,
		predictions:   predictions,
		preferredType: preferredType,
		logger:        logging.WithComponent("predictor"),
	}
}

// Predict runs the selected model over the feature map and persists the
// result. Strategy failures degrade to the three-factor fallback estimate
// instead of surfacing as errors; only model selection and persistence can
// fail.
func (p *Predictor) Predict(ctx context.Context, statementID uuid.UUID, features models.FeatureMap) (*models.Prediction, error) {
	model, err := p.selectModel(ctx)
	if err != nil {
		return nil, err
	}
	strategy, err := strategyFor(model.ModelType)
	if err != nil {
		return nil, err
	}

	result, fellBack := p.applyStrategy(strategy, model, features)
	probability := roundProbability(result.probability)

	p.logger.WithFields(logrus.Fields{
		"statement_id": statementID,
		"model":        model.Name,
		"version":      model.Version,
		"probability":  probability.String(),
		"fallback":     fellBack,
		"metadata":     result.metadata,
	}).Debug("scored statement")

	prediction := &models.Prediction{
		ID:                uuid.New(),
		StatementID:       statementID,
		ModelID:           model.ID,
		Probability:       probability,
		FeatureImportance: importanceMap(result.contributions),
		Explanation:       BuildExplanation(probability.InexactFloat64(), result.contributions),
		IsFallback:        fellBack,
		PredictedAt:       time.Now().UTC(),
	}
	if err := p.predictions.Insert(ctx, prediction); err != nil {
		return nil, err
	}
	return prediction, nil
}

// selectModel prefers the active model of the preferred type. When none is
// active it falls back to the most recently trained model across all
// types, activating it as a side effect.
func (p *Predictor) selectModel(ctx context.Context) (*models.MLModel, error) {
	model, err := p.modelStore.FindActiveByType(ctx, p.preferredType)
	if err == nil {
		return model, nil
	}
	if !utils.IsNotFound(err) {
		return nil, err
	}

	model, err = p.modelStore.FindMostRecentlyTrained(ctx)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no trained model available")
		}
		return nil, err
	}
	if err := p.modelStore.Activate(ctx, model.ID); err != nil {
		return nil, err
	}
	p.logger.WithFields(logrus.Fields{
		"model":   model.Name,
		"version": model.Version,
		"type":    model.ModelType,
	}).Info("no active model of preferred type, activated most recently trained model")
	return model, nil
}

// applyStrategy runs the strategy and scales its probability by the
// model's reported accuracy. Panics and errors inside the strategy are
// absorbed into the fallback estimate.
func (p *Predictor) applyStrategy(strategy scoringStrategy, model *models.MLModel, features models.FeatureMap) (result strategyResult, fellBack bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("strategy", strategy.name()).Errorf("strategy panicked: %v", r)
			result = fallbackEstimate(features)
			fellBack = true
		}
	}()

	res, err := strategy.score(features, featureOrdering(model))
	if err != nil {
		p.logger.WithError(err).WithField("strategy", strategy.name()).Warn("strategy failed, using fallback estimate")
		return fallbackEstimate(features), true
	}
	res.probability *= model.Accuracy()
	return res, false
}

func importanceMap(contributions []models.FeatureContribution) map[string]float64 {
	m := make(map[string]float64, len(contributions))
	for _, c := range contributions {
		m[c.Feature] = c.Contribution
	}
	return m
}

func roundProbability(p float64) decimal.Decimal {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return decimal.NewFromFloat(p).Round(4)
}
