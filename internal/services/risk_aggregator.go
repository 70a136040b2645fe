package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

var (
	neutralSubRisk = decimal.NewFromInt(50)
	two            = decimal.NewFromInt(2)

	riskWeightDistress     = decimal.NewFromFloat(0.20)
	riskWeightManipulation = decimal.NewFromFloat(0.25)
	riskWeightStrength     = decimal.NewFromFloat(0.15)
	riskWeightRatio        = decimal.NewFromFloat(0.15)
	riskWeightPrediction   = decimal.NewFromFloat(0.25)

	veryHighRiskThreshold = decimal.NewFromInt(75)
	highRiskThreshold     = decimal.NewFromInt(60)
	mediumRiskThreshold   = decimal.NewFromInt(40)

	accrualHighCutoff      = decimal.NewFromFloat(0.10)
	accrualWarnCutoff      = decimal.NewFromFloat(0.05)
	earningsQualityLow     = decimal.NewFromFloat(0.8)
	earningsQualityParLine = decimal.NewFromInt(1)
)

// AssessmentStore persists and serves risk assessments.
type AssessmentStore interface {
	Insert(ctx context.Context, a *models.RiskAssessment) error
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.RiskAssessment, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// RiskAggregator combines the three scores, the ratio quality signals and
// the latest active-model prediction into one weighted assessment.
type RiskAggregator struct {
	ratios       RatioStore
	distress     DistressScoreStore
	manipulation ManipulationScoreStore
	strength     StrengthScoreStore
	predictions  PredictionStore
	assessments  AssessmentStore
	assessedBy   string
}

// NewRiskAggregator creates an aggregator over the given stores. assessedBy
// is recorded on every assessment it produces.
func NewRiskAggregator(
	ratios RatioStore,
	distress DistressScoreStore,
	manipulation ManipulationScoreStore,
	strength StrengthScoreStore,
	predictions PredictionStore,
	assessments AssessmentStore,
	assessedBy string,
) *RiskAggregator {
	return &RiskAggregator{
		ratios:       ratios,
		distress:     distress,
		manipulation: manipulation,
		strength:     strength,
		predictions:  predictions,
		assessments:  assessments,
		assessedBy:   assessedBy,
	}
}

// Assess loads every signal for the statement, maps each to its 0-100
// sub-risk, combines them by fixed weights and persists the assessment,
// replacing any prior one. Every signal must already exist; the prediction
// is the one that most commonly does not, since model activation can fail
// upstream.
func (a *RiskAggregator) Assess(ctx context.Context, statement *models.Statement) (*models.RiskAssessment, error) {
	ratios, err := a.ratios.GetByStatement(ctx, statement.ID)
	if err != nil {
		return nil, asPrerequisiteErr(err, "financial ratios", statement.ID)
	}
	distress, err := a.distress.GetByStatement(ctx, statement.ID)
	if err != nil {
		return nil, asPrerequisiteErr(err, "distress score", statement.ID)
	}
	manipulation, err := a.manipulation.GetByStatement(ctx, statement.ID)
	if err != nil {
		return nil, asPrerequisiteErr(err, "manipulation score", statement.ID)
	}
	strength, err := a.strength.GetByStatement(ctx, statement.ID)
	if err != nil {
		return nil, asPrerequisiteErr(err, "strength score", statement.ID)
	}
	prediction, err := a.predictions.GetLatestActiveByStatement(ctx, statement.ID)
	if err != nil {
		return nil, asPrerequisiteErr(err, "prediction from an active model", statement.ID)
	}

	distressRisk := distressSubRisk(distress)
	manipulationRisk := manipulationSubRisk(manipulation)
	strengthRisk := strengthSubRisk(strength)
	ratioRisk := ratioQualitySubRisk(ratios)
	predictionRisk := prediction.Probability.Mul(hundred).Round(2)

	overall := riskWeightDistress.Mul(distressRisk).
		Add(riskWeightManipulation.Mul(manipulationRisk)).
		Add(riskWeightStrength.Mul(strengthRisk)).
		Add(riskWeightRatio.Mul(ratioRisk)).
		Add(riskWeightPrediction.Mul(predictionRisk)).
		Round(2)
	level := riskLevelFor(overall)

	assessment := &models.RiskAssessment{
		ID:               uuid.New(),
		StatementID:      statement.ID,
		DistressRisk:     distressRisk,
		ManipulationRisk: manipulationRisk,
		StrengthRisk:     strengthRisk,
		RatioRisk:        ratioRisk,
		PredictionRisk:   predictionRisk,
		OverallScore:     overall,
		RiskLevel:        level,
		Summary:          buildSummary(statement, assessmentFigures{distressRisk, manipulationRisk, strengthRisk, ratioRisk, predictionRisk, overall, level}),
		AssessedBy:       a.assessedBy,
		AssessedAt:       time.Now().UTC(),
	}

	if err := a.assessments.DeleteByStatement(ctx, statement.ID); err != nil {
		return nil, err
	}
	if err := a.assessments.Insert(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

func asPrerequisiteErr(err error, artifact string, statementID uuid.UUID) error {
	if utils.IsNotFound(err) {
		return utils.NewMissingPrerequisiteErrorf("no %s for statement %s", artifact, statementID)
	}
	return err
}

func distressSubRisk(score *models.DistressScore) decimal.Decimal {
	if score.Composite == nil {
		return neutralSubRisk
	}
	switch {
	case score.Composite.LessThan(distressCutoff):
		return decimal.NewFromInt(80)
	case score.Composite.LessThan(greyCutoff):
		return decimal.NewFromInt(50)
	default:
		return decimal.NewFromInt(20)
	}
}

func manipulationSubRisk(score *models.ManipulationScore) decimal.Decimal {
	if score.Composite == nil {
		return neutralSubRisk
	}
	switch {
	case score.Composite.GreaterThan(manipHighCutoff):
		return decimal.NewFromInt(85)
	case score.Composite.GreaterThan(manipMediumCutoff):
		return decimal.NewFromInt(60)
	default:
		return decimal.NewFromInt(25)
	}
}

func strengthSubRisk(score *models.StrengthScore) decimal.Decimal {
	switch {
	case score.Total <= 3:
		return decimal.NewFromInt(75)
	case score.Total <= 6:
		return decimal.NewFromInt(45)
	default:
		return decimal.NewFromInt(20)
	}
}

// ratioQualitySubRisk averages an accrual-ratio bucket with an
// earnings-quality bucket. A missing ratio contributes the neutral 50.
func ratioQualitySubRisk(ratios *models.FinancialRatios) decimal.Decimal {
	accrual := neutralSubRisk
	if ratios.AccrualRatio != nil {
		switch {
		case ratios.AccrualRatio.GreaterThan(accrualHighCutoff):
			accrual = decimal.NewFromInt(70)
		case ratios.AccrualRatio.GreaterThan(accrualWarnCutoff):
			accrual = decimal.NewFromInt(40)
		default:
			accrual = decimal.NewFromInt(20)
		}
	}
	quality := neutralSubRisk
	if ratios.EarningsQuality != nil {
		switch {
		case ratios.EarningsQuality.LessThan(earningsQualityLow):
			quality = decimal.NewFromInt(75)
		case ratios.EarningsQuality.LessThan(earningsQualityParLine):
			quality = decimal.NewFromInt(45)
		default:
			quality = decimal.NewFromInt(25)
		}
	}
	return accrual.Add(quality).Div(two).Round(2)
}

func riskLevelFor(overall decimal.Decimal) models.RiskLevel {
	switch {
	case overall.GreaterThanOrEqual(veryHighRiskThreshold):
		return models.RiskLevelVeryHigh
	case overall.GreaterThanOrEqual(highRiskThreshold):
		return models.RiskLevelHigh
	case overall.GreaterThanOrEqual(mediumRiskThreshold):
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

type assessmentFigures struct {
	distress     decimal.Decimal
	manipulation decimal.Decimal
	strength     decimal.Decimal
	ratio        decimal.Decimal
	prediction   decimal.Decimal
	overall      decimal.Decimal
	level        models.RiskLevel
}

// buildSummary renders the narrative line plus conditional flag bullets
// for any component sitting above the alert threshold.
func buildSummary(statement *models.Statement, f assessmentFigures) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %d: overall fraud risk %s (%s). Sub-risks: distress %s, manipulation %s, strength %s, ratio quality %s, prediction %s.",
		statement.CompanyName, statement.Period, statement.FiscalYear,
		f.overall, f.level,
		f.distress, f.manipulation, f.strength, f.ratio, f.prediction)
	if f.distress.GreaterThanOrEqual(componentAlertThreshold) {
		b.WriteString("\n- Bankruptcy-distress indicators are in the danger zone.")
	}
	if f.manipulation.GreaterThanOrEqual(componentAlertThreshold) {
		b.WriteString("\n- Earnings-manipulation indices exceed the benchmark threshold.")
	}
	if f.strength.GreaterThanOrEqual(componentAlertThreshold) {
		b.WriteString("\n- Balance-sheet strength signals are weak.")
	}
	if f.prediction.GreaterThanOrEqual(componentAlertThreshold) {
		b.WriteString("\n- The prediction model assigns a high fraud probability.")
	}
	return b.String()
}
