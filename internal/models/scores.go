package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistressCategory is the 3-way Altman Z-score classification.
type DistressCategory string

const (
	DistressCategoryDistress DistressCategory = "distress"
	DistressCategoryGrey     DistressCategory = "grey"
	DistressCategorySafe     DistressCategory = "safe"
)

// DistressScore holds the Altman Z-score components for one statement.
// Composite is nil unless all five components could be computed.
type DistressScore struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	StatementID uuid.UUID        `json:"statement_id" db:"statement_id"`
	X1          *decimal.Decimal `json:"x1" db:"x1"` // working capital / total assets
	X2          *decimal.Decimal `json:"x2" db:"x2"` // retained earnings / total assets
	X3          *decimal.Decimal `json:"x3" db:"x3"` // EBIT / total assets
	X4          *decimal.Decimal `json:"x4" db:"x4"` // market value of equity / total liabilities
	X5          *decimal.Decimal `json:"x5" db:"x5"` // revenue / total assets
	Composite   *decimal.Decimal `json:"composite" db:"composite"`
	Category    DistressCategory `json:"category" db:"category"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// ManipulationProbability is the 3-way Beneish M-score classification.
type ManipulationProbability string

const (
	ManipulationProbabilityLow    ManipulationProbability = "low"
	ManipulationProbabilityMedium ManipulationProbability = "medium"
	ManipulationProbabilityHigh   ManipulationProbability = "high"
)

// ManipulationScore holds the Beneish M-score indices for one statement.
// Composite is nil unless every index could be computed.
type ManipulationScore struct {
	ID          uuid.UUID               `json:"id" db:"id"`
	StatementID uuid.UUID               `json:"statement_id" db:"statement_id"`
	DSRI        *decimal.Decimal        `json:"dsri" db:"dsri"` // days sales in receivables index
	GMI         *decimal.Decimal        `json:"gmi" db:"gmi"`   // gross margin index
	AQI         *decimal.Decimal        `json:"aqi" db:"aqi"`   // asset quality index
	SGI         *decimal.Decimal        `json:"sgi" db:"sgi"`   // sales growth index
	DEPI        *decimal.Decimal        `json:"depi" db:"depi"` // depreciation index
	SGAI        *decimal.Decimal        `json:"sgai" db:"sgai"` // SG&A expenses index
	LVGI        *decimal.Decimal        `json:"lvgi" db:"lvgi"` // leverage index
	TATA        *decimal.Decimal        `json:"tata" db:"tata"` // total accruals to total assets
	Composite   *decimal.Decimal        `json:"composite" db:"composite"`
	Probability ManipulationProbability `json:"probability" db:"probability"`
	CreatedAt   time.Time               `json:"created_at" db:"created_at"`
}

// StrengthCategory is the 3-way Piotroski F-score classification.
type StrengthCategory string

const (
	StrengthCategoryWeak     StrengthCategory = "weak"
	StrengthCategoryModerate StrengthCategory = "moderate"
	StrengthCategoryStrong   StrengthCategory = "strong"
)

// StrengthScore holds the nine Piotroski signals and their sum for one
// statement.
type StrengthScore struct {
	ID                     uuid.UUID        `json:"id" db:"id"`
	StatementID            uuid.UUID        `json:"statement_id" db:"statement_id"`
	PositiveNetIncome      bool             `json:"positive_net_income" db:"positive_net_income"`
	PositiveOperatingCash  bool             `json:"positive_operating_cash" db:"positive_operating_cash"`
	CashExceedsIncome      bool             `json:"cash_exceeds_income" db:"cash_exceeds_income"`
	ImprovingROA           bool             `json:"improving_roa" db:"improving_roa"`
	DecreasingLeverage     bool             `json:"decreasing_leverage" db:"decreasing_leverage"`
	ImprovingCurrentRatio  bool             `json:"improving_current_ratio" db:"improving_current_ratio"`
	NoNewShares            bool             `json:"no_new_shares" db:"no_new_shares"`
	ImprovingGrossMargin   bool             `json:"improving_gross_margin" db:"improving_gross_margin"`
	ImprovingAssetTurnover bool             `json:"improving_asset_turnover" db:"improving_asset_turnover"`
	Total                  int              `json:"total" db:"total"`
	Category               StrengthCategory `json:"category" db:"category"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
}
