package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// FeatureMap is the flat named view of every ratio, growth figure and score
// component for one statement. Values are numbers or booleans; the JSON
// encoding is the persisted FeatureSet blob and must round-trip losslessly
// for both.
type FeatureMap map[string]interface{}

// SetNumber stores a numeric feature. Missing upstream values are recorded
// as explicit zeroes so the predictor sees a stable key set.
func (m FeatureMap) SetNumber(name string, value float64) {
	m[name] = value
}

// SetBool stores a boolean feature.
func (m FeatureMap) SetBool(name string, value bool) {
	m[name] = value
}

// Number returns the numeric value of a feature. Booleans are encoded as
// 0/1 at this consumption point. The second return is false when the
// feature is absent.
func (m FeatureMap) Number(name string) (float64, bool) {
	v, ok := m[name]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Names returns the feature names in lexical order.
func (m FeatureMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marshal serializes the map to the persisted JSON blob.
func (m FeatureMap) Marshal() (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to serialize feature map: %w", err)
	}
	return string(raw), nil
}

// ParseFeatureMap deserializes a persisted FeatureSet blob.
func ParseFeatureMap(raw string) (FeatureMap, error) {
	var m FeatureMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("failed to parse feature map: %w", err)
	}
	return m, nil
}

// FeatureSet is the persisted feature map for one statement, regenerated
// whenever any upstream score changes.
type FeatureSet struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StatementID uuid.UUID `json:"statement_id" db:"statement_id"`
	Features    string    `json:"features" db:"features"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}

// FeatureMap parses the serialized blob back into a map.
func (fs *FeatureSet) FeatureMap() (FeatureMap, error) {
	return ParseFeatureMap(fs.Features)
}
