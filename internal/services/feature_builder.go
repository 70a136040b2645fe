package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/veridia/fraudlens/internal/cache"
	"github.com/veridia/fraudlens/internal/models"
	"github.com/veridia/fraudlens/internal/utils"
)

// DefaultFeatureWorkers bounds concurrent feature-set generation in bulk
// rebuilds.
const DefaultFeatureWorkers = 10

// FinancialDataStore is the read-only provider of raw statement figures.
type FinancialDataStore interface {
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.FinancialData, error)
}

// RatioStore persists and serves derived ratio sets.
type RatioStore interface {
	Insert(ctx context.Context, ratios *models.FinancialRatios) error
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.FinancialRatios, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// DistressScoreStore persists and serves distress scores.
type DistressScoreStore interface {
	Insert(ctx context.Context, score *models.DistressScore) error
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.DistressScore, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// ManipulationScoreStore persists and serves manipulation scores.
type ManipulationScoreStore interface {
	Insert(ctx context.Context, score *models.ManipulationScore) error
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.ManipulationScore, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// StrengthScoreStore persists and serves strength scores.
type StrengthScoreStore interface {
	Insert(ctx context.Context, score *models.StrengthScore) error
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.StrengthScore, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// FeatureSetStore persists and serves serialized feature sets.
type FeatureSetStore interface {
	Insert(ctx context.Context, fs *models.FeatureSet) error
	GetByStatement(ctx context.Context, statementID uuid.UUID) (*models.FeatureSet, error)
	Exists(ctx context.Context, statementID uuid.UUID) (bool, error)
	DeleteByStatement(ctx context.Context, statementID uuid.UUID) error
}

// FeatureVectorBuilder merges every ratio, growth figure and score
// component into the flat named map the predictor consumes, and manages
// its persisted form.
type FeatureVectorBuilder struct {
	financialData FinancialDataStore
	ratios        RatioStore
	distress      DistressScoreStore
	manipulation  ManipulationScoreStore
	strength      StrengthScoreStore
	featureSets   FeatureSetStore
	cache         *cache.AssessmentCache
	workers       int
}

// NewFeatureVectorBuilder creates a new builder over the given stores.
// cache may be nil; existence checks then always hit the store. workers
// bounds bulk generation; values below one fall back to the default pool
// size.
func NewFeatureVectorBuilder(
	financialData FinancialDataStore,
	ratios RatioStore,
	distress DistressScoreStore,
	manipulation ManipulationScoreStore,
	strength StrengthScoreStore,
	featureSets FeatureSetStore,
	assessmentCache *cache.AssessmentCache,
	workers int,
) *FeatureVectorBuilder {
	if workers < 1 {
		workers = DefaultFeatureWorkers
	}
	return &FeatureVectorBuilder{
		financialData: financialData,
		ratios:        ratios,
		distress:      distress,
		manipulation:  manipulation,
		strength:      strength,
		featureSets:   featureSets,
		cache:         assessmentCache,
		workers:       workers,
	}
}

// BuildFeatureMap is the pure merge step: it flattens the four upstream
// artifacts plus the raw growth figures into one named map. Missing
// numeric values are default-filled with zero so every feature set carries
// the same key set.
func BuildFeatureMap(
	data *models.FinancialData,
	ratios *models.FinancialRatios,
	distress *models.DistressScore,
	manipulation *models.ManipulationScore,
	strength *models.StrengthScore,
) models.FeatureMap {
	fm := make(models.FeatureMap)

	setDecimal := func(name string, d *decimal.Decimal) {
		if d == nil {
			fm.SetNumber(name, 0)
			return
		}
		fm.SetNumber(name, d.InexactFloat64())
	}

	// Ratios
	setDecimal("current_ratio", ratios.CurrentRatio)
	setDecimal("quick_ratio", ratios.QuickRatio)
	setDecimal("cash_ratio", ratios.CashRatio)
	setDecimal("gross_margin", ratios.GrossMargin)
	setDecimal("operating_margin", ratios.OperatingMargin)
	setDecimal("net_margin", ratios.NetMargin)
	setDecimal("return_on_assets", ratios.ReturnOnAssets)
	setDecimal("return_on_equity", ratios.ReturnOnEquity)
	setDecimal("asset_turnover", ratios.AssetTurnover)
	setDecimal("inventory_turnover", ratios.InventoryTurnover)
	setDecimal("receivables_turnover", ratios.ReceivablesTurnover)
	setDecimal("days_sales_outstanding", ratios.DaysSalesOutstanding)
	setDecimal("debt_to_equity", ratios.DebtToEquity)
	setDecimal("debt_ratio", ratios.DebtRatio)
	setDecimal("interest_coverage", ratios.InterestCoverage)
	setDecimal("market_to_book", ratios.MarketToBook)
	setDecimal("accrual_ratio", ratios.AccrualRatio)
	setDecimal("earnings_quality", ratios.EarningsQuality)

	// Growth figures
	setDecimal("revenue_growth", data.RevenueGrowth)
	setDecimal("receivables_growth", data.ReceivablesGrowth)
	setDecimal("gross_profit_growth", data.GrossProfitGrowth)
	setDecimal("asset_growth", data.AssetGrowth)
	setDecimal("liability_growth", data.LiabilityGrowth)
	setDecimal("net_income_growth", data.NetIncomeGrowth)
	setDecimal("operating_cash_flow_growth", data.OperatingCashFlowGrowth)

	// Distress score components
	setDecimal("distress_x1", distress.X1)
	setDecimal("distress_x2", distress.X2)
	setDecimal("distress_x3", distress.X3)
	setDecimal("distress_x4", distress.X4)
	setDecimal("distress_x5", distress.X5)
	setDecimal("distress_composite", distress.Composite)

	// Manipulation score components
	setDecimal("manipulation_dsri", manipulation.DSRI)
	setDecimal("manipulation_gmi", manipulation.GMI)
	setDecimal("manipulation_aqi", manipulation.AQI)
	setDecimal("manipulation_sgi", manipulation.SGI)
	setDecimal("manipulation_depi", manipulation.DEPI)
	setDecimal("manipulation_sgai", manipulation.SGAI)
	setDecimal("manipulation_lvgi", manipulation.LVGI)
	setDecimal("manipulation_tata", manipulation.TATA)
	setDecimal("manipulation_composite", manipulation.Composite)

	// Strength signals, booleans kept as booleans in the blob
	fm.SetBool("strength_positive_net_income", strength.PositiveNetIncome)
	fm.SetBool("strength_positive_operating_cash", strength.PositiveOperatingCash)
	fm.SetBool("strength_cash_exceeds_income", strength.CashExceedsIncome)
	fm.SetBool("strength_improving_roa", strength.ImprovingROA)
	fm.SetBool("strength_decreasing_leverage", strength.DecreasingLeverage)
	fm.SetBool("strength_improving_current_ratio", strength.ImprovingCurrentRatio)
	fm.SetBool("strength_no_new_shares", strength.NoNewShares)
	fm.SetBool("strength_improving_gross_margin", strength.ImprovingGrossMargin)
	fm.SetBool("strength_improving_asset_turnover", strength.ImprovingAssetTurnover)
	fm.SetNumber("strength_total", float64(strength.Total))

	return fm
}

// Build regenerates the feature set for one statement from the persisted
// upstream artifacts. All four artifacts must already exist; a missing one
// is a missing-prerequisite error. Any prior feature set is replaced.
func (b *FeatureVectorBuilder) Build(ctx context.Context, statementID uuid.UUID) (*models.FeatureSet, error) {
	data, err := b.financialData.GetByStatement(ctx, statementID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no financial data for statement %s", statementID)
		}
		return nil, err
	}

	ratios, err := b.ratios.GetByStatement(ctx, statementID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no financial ratios for statement %s", statementID)
		}
		return nil, err
	}

	distress, err := b.distress.GetByStatement(ctx, statementID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no distress score for statement %s", statementID)
		}
		return nil, err
	}

	manipulation, err := b.manipulation.GetByStatement(ctx, statementID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no manipulation score for statement %s", statementID)
		}
		return nil, err
	}

	strength, err := b.strength.GetByStatement(ctx, statementID)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewMissingPrerequisiteErrorf("no strength score for statement %s", statementID)
		}
		return nil, err
	}

	fm := BuildFeatureMap(data, ratios, distress, manipulation, strength)
	blob, err := fm.Marshal()
	if err != nil {
		return nil, err
	}

	fs := &models.FeatureSet{
		ID:          uuid.New(),
		StatementID: statementID,
		Features:    blob,
		GeneratedAt: time.Now().UTC(),
	}

	// Delete-then-insert keeps regeneration idempotent.
	if err := b.featureSets.DeleteByStatement(ctx, statementID); err != nil {
		return nil, err
	}
	if err := b.featureSets.Insert(ctx, fs); err != nil {
		return nil, err
	}
	if b.cache != nil {
		b.cache.SetFeatureSetExists(ctx, statementID, true)
	}
	return fs, nil
}

// Exists reports whether a feature set exists for the statement, without
// regenerating anything. Used for bulk pre-flight checks, so hits are
// cached.
func (b *FeatureVectorBuilder) Exists(ctx context.Context, statementID uuid.UUID) (bool, error) {
	if b.cache != nil {
		if exists, ok := b.cache.FeatureSetExists(ctx, statementID); ok {
			return exists, nil
		}
	}
	exists, err := b.featureSets.Exists(ctx, statementID)
	if err != nil {
		return false, err
	}
	if b.cache != nil {
		b.cache.SetFeatureSetExists(ctx, statementID, exists)
	}
	return exists, nil
}

// BuildBatch regenerates feature sets for many statements with bounded
// parallelism. Each statement is fault-isolated: its error is captured in
// the returned map and does not cancel the others. The worker pool is torn
// down when every task finishes, whatever the outcome.
func (b *FeatureVectorBuilder) BuildBatch(ctx context.Context, statementIDs []uuid.UUID) map[uuid.UUID]error {
	var mu sync.Mutex
	failures := make(map[uuid.UUID]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, id := range statementIDs {
		g.Go(func() error {
			if _, err := b.Build(gctx, id); err != nil {
				logrus.WithError(err).WithField("statement_id", id).Error("feature set generation failed")
				mu.Lock()
				failures[id] = err
				mu.Unlock()
			}
			// Failures are collected, not returned, so siblings keep running.
			return nil
		})
	}

	_ = g.Wait()
	return failures
}
