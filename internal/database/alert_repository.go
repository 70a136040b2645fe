package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// AlertRepository handles database operations for risk alerts.
type AlertRepository struct {
	db DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AlertRepository) WithTx(tx pgx.Tx) *AlertRepository {
	return &AlertRepository{db: tx}
}

const alertColumns = `id, assessment_id, statement_id, alert_type, severity, message,
	is_resolved, resolved_by, resolved_at, resolution_notes, created_at`

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(
		&a.ID, &a.AssessmentID, &a.StatementID, &a.AlertType, &a.Severity, &a.Message,
		&a.IsResolved, &a.ResolvedBy, &a.ResolvedAt, &a.ResolutionNotes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert persists a new, unresolved alert.
func (r *AlertRepository) Insert(ctx context.Context, a *models.Alert) error {
	query := `
		INSERT INTO alerts (id, assessment_id, statement_id, alert_type, severity, message, is_resolved)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`

	_, err := r.db.Exec(ctx, query, a.ID, a.AssessmentID, a.StatementID, a.AlertType, a.Severity, a.Message)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetByID fetches one alert.
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	a, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("alert", id.String())
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return a, nil
}

// FindByStatement returns every alert raised against a statement, newest
// first.
func (r *AlertRepository) FindByStatement(ctx context.Context, statementID uuid.UUID) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE statement_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}
	return alerts, nil
}

// Resolve marks an alert resolved by an external actor. Resolving an
// already-resolved alert is a conflict.
func (r *AlertRepository) Resolve(ctx context.Context, id uuid.UUID, resolvedBy, notes string) error {
	query := `
		UPDATE alerts
		SET is_resolved = true, resolved_by = $2, resolved_at = $3, resolution_notes = $4
		WHERE id = $1 AND is_resolved = false
	`

	tag, err := r.db.Exec(ctx, query, id, resolvedBy, time.Now().UTC(), notes)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the alert does not exist or it was already resolved;
		// look it up to report the right error.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return utils.NewConflictErrorf("alert %s is already resolved", id)
	}
	return nil
}

// DeleteByStatement removes all alerts for one statement.
func (r *AlertRepository) DeleteByStatement(ctx context.Context, statementID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE statement_id = $1`, statementID)
	if err != nil {
		return fmt.Errorf("failed to delete alerts: %w", err)
	}
	return nil
}
