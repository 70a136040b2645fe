package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType identifies which signal crossed its threshold.
type AlertType string

const (
	AlertTypeOverallRisk      AlertType = "overall_risk"
	AlertTypeDistressRisk     AlertType = "distress_risk"
	AlertTypeManipulationRisk AlertType = "manipulation_risk"
	AlertTypeStrengthRisk     AlertType = "strength_risk"
	AlertTypePredictionRisk   AlertType = "prediction_risk"
)

// AlertSeverity mirrors the triggering risk level.
type AlertSeverity string

const (
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityVeryHigh AlertSeverity = "very_high"
)

// Alert is one threshold crossing emitted against a persisted assessment.
// Alerts start unresolved; resolution is an external mutation and is
// rejected once the alert is already resolved.
type Alert struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	AssessmentID    uuid.UUID     `json:"assessment_id" db:"assessment_id"`
	StatementID     uuid.UUID     `json:"statement_id" db:"statement_id"`
	AlertType       AlertType     `json:"alert_type" db:"alert_type"`
	Severity        AlertSeverity `json:"severity" db:"severity"`
	Message         string        `json:"message" db:"message"`
	IsResolved      bool          `json:"is_resolved" db:"is_resolved"`
	ResolvedBy      *string       `json:"resolved_by" db:"resolved_by"`
	ResolvedAt      *time.Time    `json:"resolved_at" db:"resolved_at"`
	ResolutionNotes *string       `json:"resolution_notes" db:"resolution_notes"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}
