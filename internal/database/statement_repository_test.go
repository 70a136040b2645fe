package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

func statementRows(ids ...uuid.UUID) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "company_id", "company_name", "fiscal_year", "period", "status", "created_at", "updated_at",
	})
	for i, id := range ids {
		rows.AddRow(id, uuid.New(), "Northwind Manufacturing", 2020+i, "FY",
			models.StatementStatusPending, time.Now(), time.Now())
	}
	return rows
}

func TestStatementRepositoryFindEligiblePaging(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	// The repository over-fetches one row to detect the next page.
	mockPool.ExpectQuery("FROM statements").
		WithArgs(0, 3).
		WillReturnRows(statementRows(ids...))

	repo := NewStatementRepository(mockPool)
	statements, hasMore, err := repo.FindEligible(context.Background(), 0, 2)

	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.True(t, hasMore)
	assert.Equal(t, ids[0], statements[0].ID)
	assert.Equal(t, ids[1], statements[1].ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestStatementRepositoryFindEligibleLastPage(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery("FROM statements").
		WithArgs(4, 3).
		WillReturnRows(statementRows(uuid.New()))

	repo := NewStatementRepository(mockPool)
	statements, hasMore, err := repo.FindEligible(context.Background(), 4, 2)

	require.NoError(t, err)
	assert.Len(t, statements, 1)
	assert.False(t, hasMore)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestStatementRepositoryMarkAnalyzed(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectExec("UPDATE statements").
		WithArgs(id, models.StatementStatusAnalyzed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewStatementRepository(mockPool)
	require.NoError(t, repo.MarkAnalyzed(context.Background(), id))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestStatementRepositoryMarkAnalyzedMissing(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectExec("UPDATE statements").
		WithArgs(id, models.StatementStatusAnalyzed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewStatementRepository(mockPool)
	err = repo.MarkAnalyzed(context.Background(), id)

	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
