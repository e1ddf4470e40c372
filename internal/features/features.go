package features

import (
	"strings"

	"reviewpulse/internal/model"
)

const (
	Delivery = "delivery"
	Quality  = "quality"
	Value    = "value"
)

// Keywords maps each feature to its case-insensitive substring triggers.
// The table is data, not behavior, but the defaults are part of the output
// contract downstream dashboards rely on.
var Keywords = map[string][]string{
	Delivery: {"delivery", "shipping", "packaging", "arrival", "dispatch"},
	Quality:  {"quality", "durable", "sturdy", "defect", "material"},
	Value:    {"value", "worth", "expensive", "cheap", "money"},
}

// Detect returns 1 iff any keyword of the feature occurs as a substring of
// the lower-cased text, 0 otherwise. Unknown features and empty text
// always yield 0.
func Detect(text, feature string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	for _, kw := range Keywords[feature] {
		if strings.Contains(lower, kw) {
			return 1
		}
	}
	return 0
}

// DetectAll evaluates the full taxonomy for one review.
func DetectAll(text string) model.FeatureFlags {
	return model.FeatureFlags{
		Delivery: Detect(text, Delivery),
		Quality:  Detect(text, Quality),
		Value:    Detect(text, Value),
	}
}
