package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/cache"
	"github.com/veridia/fraudlens/internal/database"
	"github.com/veridia/fraudlens/internal/logging"
	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// PipelineDeps bundles everything the analysis pipeline needs. All
// repositories must be bound to the same pool as DB.
type PipelineDeps struct {
	DB                 database.TxDB
	Statements         *database.StatementRepository
	FinancialData      *database.FinancialDataRepository
	Ratios             *database.RatioRepository
	DistressScores     *database.DistressScoreRepository
	ManipulationScores *database.ManipulationScoreRepository
	StrengthScores     *database.StrengthScoreRepository
	FeatureSets        *database.FeatureSetRepository
	Models             *database.ModelRepository
	Predictions        *database.PredictionRepository
	Assessments        *database.AssessmentRepository
	Alerts             *database.AlertRepository
	Cache              *cache.AssessmentCache
	Audit              *AuditService
	ModelType          models.ModelType
	AssessorID         string
}

// AnalysisPipeline runs the full single-statement recompute: ratios, the
// three scores, the feature set, a prediction, the aggregated assessment
// and its alerts, then the statement's status flip. The whole recompute is
// one transaction, so either every artifact exists afterwards or the prior
// analysis is left untouched.
type AnalysisPipeline struct {
	db                 database.TxDB
	statements         *database.StatementRepository
	financialData      *database.FinancialDataRepository
	ratios             *database.RatioRepository
	distressScores     *database.DistressScoreRepository
	manipulationScores *database.ManipulationScoreRepository
	strengthScores     *database.StrengthScoreRepository
	featureSets        *database.FeatureSetRepository
	modelRepo          *database.ModelRepository
	predictions        *database.PredictionRepository
	assessments        *database.AssessmentRepository
	alerts             *database.AlertRepository

	calculator         *RatioCalculator
	distressScorer     *DistressScorer
	manipulationScorer *ManipulationScorer
	strengthScorer     *StrengthScorer

	cache      *cache.AssessmentCache
	audit      *AuditService
	modelType  models.ModelType
	assessorID string
	logger     *logrus.Entry
}

// NewAnalysisPipeline wires the pipeline from its dependencies.
func NewAnalysisPipeline(deps PipelineDeps) *AnalysisPipeline {
	return &AnalysisPipeline{
		db:                 deps.DB,
		statements:         deps.Statements,
		financialData:      deps.FinancialData,
		ratios:             deps.Ratios,
		distressScores:     deps.DistressScores,
		manipulationScores: deps.ManipulationScores,
		strengthScores:     deps.StrengthScores,
		featureSets:        deps.FeatureSets,
		modelRepo:          deps.Models,
		predictions:        deps.Predictions,
		assessments:        deps.Assessments,
		alerts:             deps.Alerts,
		calculator:         NewRatioCalculator(),
		distressScorer:     NewDistressScorer(),
		manipulationScorer: NewManipulationScorer(),
		strengthScorer:     NewStrengthScorer(),
		cache:              deps.Cache,
		audit:              deps.Audit,
		modelType:          deps.ModelType,
		assessorID:         deps.AssessorID,
		logger:             logging.WithComponent("analysis_pipeline"),
	}
}

// Analyze recomputes the full analysis for one statement. Prior artifacts
// are deleted and regenerated inside a single transaction; the cache and
// audit trail are updated only after commit.
func (p *AnalysisPipeline) Analyze(ctx context.Context, statementID uuid.UUID) (*models.RiskAssessment, error) {
	statement, err := p.statements.GetByID(ctx, statementID)
	if err != nil {
		return nil, err
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin analysis transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	assessment, err := p.run(ctx, tx, statement)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit analysis: %w", err)
	}

	p.cache.InvalidateStatement(ctx, statementID)
	p.cache.SetAssessment(ctx, assessment)
	p.audit.Record(ctx, nil, "statement_analyzed", "statement", statementID.String(),
		fmt.Sprintf("overall risk %s (%s)", assessment.OverallScore, assessment.RiskLevel))
	p.logger.WithFields(logrus.Fields{
		"statement_id": statementID,
		"company":      statement.CompanyName,
		"overall":      assessment.OverallScore.String(),
		"risk_level":   assessment.RiskLevel,
	}).Info("statement analyzed")
	return assessment, nil
}

// run executes every pipeline step against transaction-bound repositories.
func (p *AnalysisPipeline) run(ctx context.Context, tx pgx.Tx, statement *models.Statement) (*models.RiskAssessment, error) {
	data, err := p.financialData.WithTx(tx).GetByStatement(ctx, statement.ID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no financial data for statement %s", statement.ID)
		}
		return nil, err
	}

	ratioRepo := p.ratios.WithTx(tx)
	distressRepo := p.distressScores.WithTx(tx)
	manipulationRepo := p.manipulationScores.WithTx(tx)
	strengthRepo := p.strengthScores.WithTx(tx)
	featureSetRepo := p.featureSets.WithTx(tx)
	predictionRepo := p.predictions.WithTx(tx)
	assessmentRepo := p.assessments.WithTx(tx)
	alertRepo := p.alerts.WithTx(tx)

	// The prior analysis is removed whole, dependents first.
	deletes := []func(context.Context, uuid.UUID) error{
		alertRepo.DeleteByStatement,
		assessmentRepo.DeleteByStatement,
		predictionRepo.DeleteByStatement,
		featureSetRepo.DeleteByStatement,
		strengthRepo.DeleteByStatement,
		manipulationRepo.DeleteByStatement,
		distressRepo.DeleteByStatement,
		ratioRepo.DeleteByStatement,
	}
	for _, del := range deletes {
		if err := del(ctx, statement.ID); err != nil {
			return nil, err
		}
	}

	ratios := p.calculator.Calculate(data)
	if err := ratioRepo.Insert(ctx, ratios); err != nil {
		return nil, err
	}
	distress := p.distressScorer.Score(data)
	if err := distressRepo.Insert(ctx, distress); err != nil {
		return nil, err
	}
	manipulation := p.manipulationScorer.Score(data)
	if err := manipulationRepo.Insert(ctx, manipulation); err != nil {
		return nil, err
	}
	strength := p.strengthScorer.Score(data)
	if err := strengthRepo.Insert(ctx, strength); err != nil {
		return nil, err
	}

	featureMap := BuildFeatureMap(data, ratios, distress, manipulation, strength)
	blob, err := featureMap.Marshal()
	if err != nil {
		return nil, err
	}
	featureSet := &models.FeatureSet{
		ID:          uuid.New(),
		StatementID: statement.ID,
		Features:    blob,
		GeneratedAt: time.Now().UTC(),
	}
	if err := featureSetRepo.Insert(ctx, featureSet); err != nil {
		return nil, err
	}

	predictor := NewPredictor(p.modelRepo.WithTx(tx), predictionRepo, p.modelType)
	if _, err := predictor.Predict(ctx, statement.ID, featureMap); err != nil {
		return nil, err
	}

	aggregator := NewRiskAggregator(ratioRepo, distressRepo, manipulationRepo, strengthRepo,
		predictionRepo, assessmentRepo, p.assessorID)
	assessment, err := aggregator.Assess(ctx, statement)
	if err != nil {
		return nil, err
	}

	if _, err := NewAlertGenerator(alertRepo).Generate(ctx, assessment); err != nil {
		return nil, err
	}

	if err := p.statements.WithTx(tx).MarkAnalyzed(ctx, statement.ID); err != nil {
		return nil, err
	}
	return assessment, nil
}
