package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
)

type fakeAuditSink struct {
	mu      sync.Mutex
	entries []*models.AuditEntry
	fail    bool
}

func (s *fakeAuditSink) Record(_ context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("audit table unavailable")
	}
	s.entries = append(s.entries, entry)
	return nil
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	analyzed []uuid.UUID
	failFor  map[uuid.UUID]error
}

func (a *fakeAnalyzer) Analyze(_ context.Context, statementID uuid.UUID) (*models.RiskAssessment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err, ok := a.failFor[statementID]; ok {
		return nil, err
	}
	a.analyzed = append(a.analyzed, statementID)
	return &models.RiskAssessment{ID: uuid.New(), StatementID: statementID}, nil
}

type fakeStatementSource struct {
	statements []*models.Statement
	listErr    error
}

func (s *fakeStatementSource) FindEligible(_ context.Context, offset, limit int) ([]*models.Statement, bool, error) {
	if s.listErr != nil {
		return nil, false, s.listErr
	}
	if offset >= len(s.statements) {
		return nil, false, nil
	}
	end := offset + limit
	if end > len(s.statements) {
		end = len(s.statements)
	}
	return s.statements[offset:end], end < len(s.statements), nil
}

func (s *fakeStatementSource) FindEligibleByCompany(_ context.Context, companyID uuid.UUID) ([]*models.Statement, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*models.Statement
	for _, st := range s.statements {
		if st.CompanyID == companyID {
			out = append(out, st)
		}
	}
	return out, nil
}

func eligibleStatements(n int, companyID uuid.UUID) []*models.Statement {
	statements := make([]*models.Statement, n)
	for i := range statements {
		statements[i] = &models.Statement{
			ID:         uuid.New(),
			CompanyID:  companyID,
			FiscalYear: 2016 + i,
			Period:     "FY",
		}
	}
	return statements
}

func TestBatchRunAllPagesThroughEverything(t *testing.T) {
	statements := eligibleStatements(7, uuid.New())
	source := &fakeStatementSource{statements: statements}
	analyzer := &fakeAnalyzer{}
	orchestrator := NewBatchOrchestrator(source, analyzer, NewAuditService(&fakeAuditSink{}), 3)

	result, err := orchestrator.RunAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 7, result.Processed)
	assert.Equal(t, 0, result.Errors)
	assert.Len(t, analyzer.analyzed, 7)
}

func TestBatchRunAllIsolatesFailures(t *testing.T) {
	statements := eligibleStatements(5, uuid.New())
	broken := statements[2].ID
	source := &fakeStatementSource{statements: statements}
	analyzer := &fakeAnalyzer{failFor: map[uuid.UUID]error{broken: errors.New("missing financial data")}}
	sink := &fakeAuditSink{}
	orchestrator := NewBatchOrchestrator(source, analyzer, NewAuditService(sink), 2)

	result, err := orchestrator.RunAll(context.Background())

	require.NoError(t, err, "per-statement failures are counted, not returned")
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 1, result.Errors)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, "statement_analysis_failed", sink.entries[0].Action)
	assert.Equal(t, broken.String(), sink.entries[0].EntityID)
	assert.Contains(t, sink.entries[0].Details, "missing financial data")
}

func TestBatchRunAllPagingError(t *testing.T) {
	source := &fakeStatementSource{listErr: errors.New("connection reset")}
	orchestrator := NewBatchOrchestrator(source, &fakeAnalyzer{}, NewAuditService(&fakeAuditSink{}), 0)

	result, err := orchestrator.RunAll(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, result.Processed)
}

func TestBatchRunCompany(t *testing.T) {
	companyID := uuid.New()
	statements := append(eligibleStatements(3, companyID), eligibleStatements(2, uuid.New())...)
	source := &fakeStatementSource{statements: statements}
	analyzer := &fakeAnalyzer{}
	orchestrator := NewBatchOrchestrator(source, analyzer, NewAuditService(&fakeAuditSink{}), 0)

	result, err := orchestrator.RunCompany(context.Background(), companyID)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 0, result.Errors)
}

func TestBatchRunAllAsync(t *testing.T) {
	statements := eligibleStatements(4, uuid.New())
	source := &fakeStatementSource{statements: statements}
	orchestrator := NewBatchOrchestrator(source, &fakeAnalyzer{}, NewAuditService(&fakeAuditSink{}), 0)

	select {
	case result, ok := <-orchestrator.RunAllAsync():
		require.True(t, ok)
		assert.Equal(t, 4, result.Processed)
	case <-time.After(5 * time.Second):
		t.Fatal("background batch did not finish")
	}
}

func TestAuditServiceSwallowsSinkErrors(t *testing.T) {
	service := NewAuditService(&fakeAuditSink{fail: true})

	// Must not panic or surface the failure.
	service.Record(context.Background(), nil, "statement_analyzed", "statement", uuid.New().String(), "")
}
