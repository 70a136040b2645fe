package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridia/fraudlens/internal/models"
)

// componentAlertThreshold is the sub-risk level at which a per-component
// alert fires.
var componentAlertThreshold = decimal.NewFromInt(70)

// AlertStore persists and serves alerts.
type AlertStore interface {
	Insert(ctx context.Context, a *models.Alert) error
	FindByStatement(ctx context.Context, statementID uuid.UUID) ([]*models.Alert, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// AlertGenerator inspects a persisted assessment and emits one alert per
// crossed threshold.
type AlertGenerator struct {
	alerts AlertStore
}

// NewAlertGenerator creates a generator over the given store.
func NewAlertGenerator(alerts AlertStore) *AlertGenerator {
	return &AlertGenerator{alerts: alerts}
}

// Generate emits the alerts an assessment warrants: one overall alert when
// the level is high or very high, plus one alert per component whose
// sub-risk crosses the threshold. All alerts start unresolved. The created
// alerts are returned; an assessment below every threshold produces none.
func (g *AlertGenerator) Generate(ctx context.Context, assessment *models.RiskAssessment) ([]*models.Alert, error) {
	var alerts []*models.Alert

	if assessment.RiskLevel == models.RiskLevelHigh || assessment.RiskLevel == models.RiskLevelVeryHigh {
		severity := models.AlertSeverityHigh
		if assessment.RiskLevel == models.RiskLevelVeryHigh {
			severity = models.AlertSeverityVeryHigh
		}
		alerts = append(alerts, g.newAlert(assessment, models.AlertTypeOverallRisk, severity,
			fmt.Sprintf("Overall fraud risk is %s (score %s).", assessment.RiskLevel, assessment.OverallScore)))
	}

	components := []struct {
		alertType models.AlertType
		subRisk   decimal.Decimal
		message   string
	}{
		{models.AlertTypeDistressRisk, assessment.DistressRisk, "Bankruptcy-distress risk is elevated (sub-risk %s)."},
		{models.AlertTypeManipulationRisk, assessment.ManipulationRisk, "Earnings-manipulation risk is elevated (sub-risk %s)."},
		{models.AlertTypeStrengthRisk, assessment.StrengthRisk, "Balance-sheet strength is weak (sub-risk %s)."},
		{models.AlertTypePredictionRisk, assessment.PredictionRisk, "Prediction model flags high fraud probability (sub-risk %s)."},
	}
	for _, c := range components {
		if c.subRisk.GreaterThanOrEqual(componentAlertThreshold) {
			alerts = append(alerts, g.newAlert(assessment, c.alertType, models.AlertSeverityHigh,
				fmt.Sprintf(c.message, c.subRisk)))
		}
	}

	for _, alert := range alerts {
		if err := g.alerts.Insert(ctx, alert); err != nil {
			return nil, err
		}
	}
	return alerts, nil
}

func (g *AlertGenerator) newAlert(assessment *models.RiskAssessment, alertType models.AlertType, severity models.AlertSeverity, message string) *models.Alert {
	return &models.Alert{
		ID:           uuid.New(),
		AssessmentID: assessment.ID,
		StatementID:  assessment.StatementID,
		AlertType:    alertType,
		Severity:     severity,
		Message:      message,
		CreatedAt:    time.Now().UTC(),
	}
}
