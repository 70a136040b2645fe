package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/veridia/fraudlens/internal/models"
)

// defaultIndicatorOrder is the fallback importance ordering used when a
// model carries no parsable feature-index map, most telling indicator
// first.
var defaultIndicatorOrder = []string{
	"manipulation_composite",
	"distress_composite",
	"accrual_ratio",
	"earnings_quality",
	"strength_total",
	"days_sales_outstanding",
	"receivables_growth",
	"debt_to_equity",
	"net_margin",
	"revenue_growth",
}

// strategyResult is the raw output of one scoring strategy before accuracy
// scaling and rounding.
type strategyResult struct {
	probability   float64
	contributions []models.FeatureContribution
	metadata      map[string]interface{}
}

// scoringStrategy is the closed contract every model type is applied
// through.
type scoringStrategy interface {
	name() string
	score(features models.FeatureMap, ordering []string) (strategyResult, error)
}

// strategyFor maps a model's type tag to its scoring strategy. The set is
// closed; unknown tags fail here, at construction time.
func strategyFor(modelType models.ModelType) (scoringStrategy, error) {
	switch modelType {
	case models.ModelTypeRedFlagCount:
		return redFlagCountStrategy{}, nil
	case models.ModelTypeWeightedSigmoid:
		return weightedSigmoidStrategy{}, nil
	case models.ModelTypeLogisticBlend:
		return logisticBlendStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown model type %q", modelType)
	}
}

// featureOrdering reads the importance ordering from the model's stored
// feature-index map, lowest index first with name as tiebreaker. An empty
// or unparsable map falls back to the default indicator ordering.
func featureOrdering(model *models.MLModel) []string {
	if model.FeatureIndexes == "" {
		return defaultIndicatorOrder
	}
	var indexes map[string]int
	if err := json.Unmarshal([]byte(model.FeatureIndexes), &indexes); err != nil || len(indexes) == 0 {
		return defaultIndicatorOrder
	}
	names := make([]string, 0, len(indexes))
	for name := range indexes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if indexes[names[i]] != indexes[names[j]] {
			return indexes[names[i]] < indexes[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// redFlag reports whether the named indicator crosses its fraud threshold.
// The second return is false when the indicator is not in the threshold
// table or is absent from the feature map.
func redFlag(features models.FeatureMap, name string) (flagged, known bool) {
	v, ok := features.Number(name)
	if !ok {
		return false, false
	}
	switch name {
	case "manipulation_composite":
		return v > -1.78, true
	case "distress_composite":
		return v < 1.8, true
	case "accrual_ratio":
		return v > 0.05, true
	case "earnings_quality":
		return v < 1.0, true
	case "strength_total":
		return v <= 3, true
	case "days_sales_outstanding":
		return v > 90, true
	case "receivables_growth":
		rev, ok := features.Number("revenue_growth")
		if !ok {
			return false, false
		}
		return v > rev, true
	case "debt_to_equity":
		return v > 2.0, true
	case "net_margin":
		return v < 0, true
	case "revenue_growth":
		return v > 0.5, true
	default:
		return false, false
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// redFlagCountStrategy counts threshold breaches over the importance
// ordering and maps the count to a bucketed probability.
type redFlagCountStrategy struct{}

func (redFlagCountStrategy) name() string { return "red_flag_count" }

func (s redFlagCountStrategy) score(features models.FeatureMap, ordering []string) (strategyResult, error) {
	var flags, checked int
	var contributions []models.FeatureContribution
	for i, name := range ordering {
		flagged, known := redFlag(features, name)
		if !known {
			continue
		}
		checked++
		if flagged {
			flags++
			contributions = append(contributions, models.FeatureContribution{
				Feature:      name,
				Contribution: 1 / float64(i+1),
			})
		}
	}
	if checked == 0 {
		return strategyResult{}, fmt.Errorf("no scoreable indicators in feature map")
	}

	var probability float64
	switch {
	case flags == 0:
		probability = 0.05
	case flags <= 2:
		probability = 0.20
	case flags <= 4:
		probability = 0.45
	case flags <= 6:
		probability = 0.70
	default:
		probability = 0.90
	}

	return strategyResult{
		probability:   probability,
		contributions: contributions,
		metadata: map[string]interface{}{
			"strategy":           s.name(),
			"red_flags":          flags,
			"indicators_checked": checked,
		},
	}, nil
}

// weightedSigmoidStrategy accumulates rank-weighted threshold breaches
// into a raw score and squashes it through a sigmoid.
type weightedSigmoidStrategy struct{}

func (weightedSigmoidStrategy) name() string { return "weighted_sigmoid" }

func (s weightedSigmoidStrategy) score(features models.FeatureMap, ordering []string) (strategyResult, error) {
	raw := -2.0
	var checked int
	var contributions []models.FeatureContribution
	for i, name := range ordering {
		flagged, known := redFlag(features, name)
		if !known {
			continue
		}
		checked++
		if flagged {
			weight := 1 / float64(i+1)
			raw += 1.6 * weight
			contributions = append(contributions, models.FeatureContribution{
				Feature:      name,
				Contribution: weight,
			})
		}
	}
	if checked == 0 {
		return strategyResult{}, fmt.Errorf("no scoreable indicators in feature map")
	}

	return strategyResult{
		probability:   sigmoid(raw),
		contributions: contributions,
		metadata: map[string]interface{}{
			"strategy":           s.name(),
			"raw_score":          raw,
			"indicators_checked": checked,
		},
	}, nil
}

// logisticBlendStrategy blends the three composite scores directly through
// a fixed logistic model, ignoring the importance ordering.
type logisticBlendStrategy struct{}

func (logisticBlendStrategy) name() string { return "logistic_blend" }

func (s logisticBlendStrategy) score(features models.FeatureMap, _ []string) (strategyResult, error) {
	manipulation, mok := features.Number("manipulation_composite")
	distress, dok := features.Number("distress_composite")
	strength, sok := features.Number("strength_total")
	if !mok || !dok || !sok {
		return strategyResult{}, fmt.Errorf("composite scores missing from feature map")
	}

	// Each signal is centered so that zero sits at the indifference point
	// of its source score.
	manipulationSignal := (manipulation + 2.22) / 2
	distressSignal := (3.0 - distress) / 3.0
	strengthSignal := (4.5 - strength) / 4.5

	raw := -0.4 + 0.8*manipulationSignal + 0.7*distressSignal + 0.6*strengthSignal

	contributions := []models.FeatureContribution{
		{Feature: "manipulation_composite", Contribution: 0.8 * manipulationSignal},
		{Feature: "distress_composite", Contribution: 0.7 * distressSignal},
		{Feature: "strength_total", Contribution: 0.6 * strengthSignal},
	}
	sort.Slice(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Contribution) > math.Abs(contributions[j].Contribution)
	})

	return strategyResult{
		probability:   sigmoid(raw),
		contributions: contributions,
		metadata: map[string]interface{}{
			"strategy":  s.name(),
			"raw_score": raw,
		},
	}, nil
}

// fallbackEstimate is the degraded three-factor heuristic used when a
// strategy cannot produce a result.
func fallbackEstimate(features models.FeatureMap) strategyResult {
	probability := 0.10
	var contributions []models.FeatureContribution

	add := func(feature string, delta float64) {
		probability += delta
		contributions = append(contributions, models.FeatureContribution{
			Feature:      feature,
			Contribution: delta,
		})
	}

	if m, ok := features.Number("manipulation_composite"); ok {
		switch {
		case m > -1.78:
			add("manipulation_composite", 0.35)
		case m > -2.22:
			add("manipulation_composite", 0.20)
		}
	}
	if d, ok := features.Number("distress_composite"); ok {
		switch {
		case d < 1.8:
			add("distress_composite", 0.30)
		case d < 3.0:
			add("distress_composite", 0.15)
		}
	}
	if s, ok := features.Number("strength_total"); ok {
		switch {
		case s <= 3:
			add("strength_total", 0.25)
		case s <= 6:
			add("strength_total", 0.10)
		}
	}
	if probability > 0.95 {
		probability = 0.95
	}

	return strategyResult{
		probability:   probability,
		contributions: contributions,
		metadata:      map[string]interface{}{"strategy": "three_factor_fallback"},
	}
}
