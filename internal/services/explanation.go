package services

import (
	"fmt"
	"strings"

	"github.com/veridia/fraudlens/internal/models"
)

// explanationPhrases maps well-known feature names to human-readable
// bullet lines. Features outside the table get the generic phrasing.
var explanationPhrases = map[string]string{
	"manipulation_composite": "earnings-manipulation indicators are elevated relative to the benchmark threshold",
	"distress_composite":     "the bankruptcy-distress composite sits in or near the distress zone",
	"accrual_ratio":          "accruals make up an unusually large share of reported earnings",
	"earnings_quality":       "operating cash flow lags reported net income",
	"strength_total":         "few balance-sheet strength signals are present",
	"days_sales_outstanding": "receivables are collected unusually slowly",
	"receivables_growth":     "receivables are growing faster than revenue",
	"debt_to_equity":         "leverage is high relative to equity",
	"net_margin":             "the company is unprofitable at the net level",
	"revenue_growth":         "revenue growth is unusually aggressive",
}

// BuildExplanation renders the deterministic prediction narrative: a
// headline risk band for the probability followed by up to three bullet
// lines for the top-ranked contributions.
func BuildExplanation(probability float64, contributions []models.FeatureContribution) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s estimated fraud risk (probability %.2f).", riskBand(probability), probability))
	for i, c := range contributions {
		if i == 3 {
			break
		}
		phrase, ok := explanationPhrases[c.Feature]
		if !ok {
			phrase = fmt.Sprintf("%s deviates from peer norms", strings.ReplaceAll(c.Feature, "_", " "))
		}
		b.WriteString("\n- ")
		b.WriteString(phrase)
	}
	return b.String()
}

func riskBand(probability float64) string {
	switch {
	case probability < 0.25:
		return "Very low"
	case probability < 0.5:
		return "Low"
	case probability < 0.75:
		return "Moderate"
	default:
		return "High"
	}
}
