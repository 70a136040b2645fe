package models

import (
	"time"

	"github.com/google/uuid"
)

// StatementStatus tracks where a statement sits in the analysis lifecycle.
type StatementStatus string

const (
	StatementStatusPending  StatementStatus = "pending"
	StatementStatusAnalyzed StatementStatus = "analyzed"
)

// Statement represents one financial disclosure for a company-fiscal-year.
// It is the unit all per-statement analysis artifacts key off.
type Statement struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CompanyID   uuid.UUID       `json:"company_id" db:"company_id"`
	CompanyName string          `json:"company_name" db:"company_name"`
	FiscalYear  int             `json:"fiscal_year" db:"fiscal_year"`
	Period      string          `json:"period" db:"period"`
	Status      StatementStatus `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
