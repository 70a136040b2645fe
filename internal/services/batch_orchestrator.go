package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/logging"
	"github.com/veridia/fraudlens/internal/models"
)

// DefaultBatchPageSize bounds one page of the all-eligible batch run.
const DefaultBatchPageSize = 50

// StatementAnalyzer runs the full recompute for one statement.
type StatementAnalyzer interface {
	Analyze(ctx context.Context, statementID uuid.UUID) (*models.RiskAssessment, error)
}

// StatementSource lists statements eligible for analysis.
type StatementSource interface {
	FindEligible(ctx context.Context, offset, limit int) ([]*models.Statement, bool, error)
	FindEligibleByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Statement, error)
}

// BatchResult aggregates one batch run's outcome. Per-item errors are not
// surfaced directly; their details go to the audit trail.
type BatchResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// BatchOrchestrator runs the single-statement pipeline over many
// statements. Each statement is analyzed in its own transaction, so one
// failure cannot abort siblings and partial progress survives.
type BatchOrchestrator struct {
	statements StatementSource
	pipeline   StatementAnalyzer
	audit      *AuditService
	pageSize   int
	logger     *logrus.Entry
}

// NewBatchOrchestrator creates an orchestrator. pageSize below one falls
// back to the default.
func NewBatchOrchestrator(statements StatementSource, pipeline StatementAnalyzer, audit *AuditService, pageSize int) *BatchOrchestrator {
	if pageSize < 1 {
		pageSize = DefaultBatchPageSize
	}
	return &BatchOrchestrator{
		statements: statements,
		pipeline:   pipeline,
		audit:      audit,
		pageSize:   pageSize,
		logger:     logging.WithComponent("batch_orchestrator"),
	}
}

// RunAll pages through every eligible statement and analyzes each one.
// The returned counts cover everything processed before a paging error,
// if any.
func (o *BatchOrchestrator) RunAll(ctx context.Context) (*BatchResult, error) {
	result := &BatchResult{}
	offset := 0
	for {
		statements, hasMore, err := o.statements.FindEligible(ctx, offset, o.pageSize)
		if err != nil {
			return result, err
		}
		o.process(ctx, statements, result)
		if !hasMore {
			break
		}
		offset += o.pageSize
	}
	o.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"errors":    result.Errors,
	}).Info("batch analysis finished")
	return result, nil
}

// RunCompany analyzes every eligible statement of one company in a single
// pass, no paging.
func (o *BatchOrchestrator) RunCompany(ctx context.Context, companyID uuid.UUID) (*BatchResult, error) {
	statements, err := o.statements.FindEligibleByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	result := &BatchResult{}
	o.process(ctx, statements, result)
	o.logger.WithFields(logrus.Fields{
		"company_id": companyID,
		"processed":  result.Processed,
		"errors":     result.Errors,
	}).Info("company batch analysis finished")
	return result, nil
}

// RunAllAsync starts RunAll in the background, detached from the caller's
// context, and returns a channel that yields the result once. Paging
// failures are logged; the channel is closed either way.
func (o *BatchOrchestrator) RunAllAsync() <-chan BatchResult {
	done := make(chan BatchResult, 1)
	go func() {
		defer close(done)
		result, err := o.RunAll(context.Background())
		if err != nil {
			o.logger.WithError(err).Error("background batch analysis failed")
		}
		if result != nil {
			done <- *result
		}
	}()
	return done
}

func (o *BatchOrchestrator) process(ctx context.Context, statements []*models.Statement, result *BatchResult) {
	for _, statement := range statements {
		if _, err := o.pipeline.Analyze(ctx, statement.ID); err != nil {
			result.Errors++
			o.logger.WithError(err).WithField("statement_id", statement.ID).Error("statement analysis failed")
			// The audit write runs outside the failed transaction and
			// swallows its own errors.
			o.audit.Record(ctx, nil, "statement_analysis_failed", "statement", statement.ID.String(), err.Error())
			continue
		}
		result.Processed++
	}
}
