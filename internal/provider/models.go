package provider

import (
	"fmt"
	"sort"
)

// FallbackModel is the label substituted on the final retry attempt when the
// configured model keeps failing.
const FallbackModel = "gpt-4o-mini"

// ModelInfo maps a UI-friendly model label to the vendor model it resolves
// to.
type ModelInfo struct {
	ID             string
	Provider       string
	ContextTokens  int
	CostPer1KToken float64
}

// modelMapping keeps admin-facing labels stable while the underlying vendor
// IDs move.
var modelMapping = map[string]ModelInfo{
	"gpt-4o":                          {ID: "gpt-4o", Provider: "openai", ContextTokens: 128000, CostPer1KToken: 0.005},
	"GPT-4o (Creative, Rich Language)": {ID: "gpt-4o", Provider: "openai", ContextTokens: 128000, CostPer1KToken: 0.005},
	"gpt-4o-mini":                     {ID: "gpt-4o-mini", Provider: "openai", ContextTokens: 128000, CostPer1KToken: 0.00015},
	"GPT-4o mini (fast)":              {ID: "gpt-4o-mini", Provider: "openai", ContextTokens: 128000, CostPer1KToken: 0.00015},
	"gpt-4.1-mini":                    {ID: "gpt-4o-mini", Provider: "openai", ContextTokens: 128000, CostPer1KToken: 0.00015},
	"gpt-4.1-nano":                    {ID: "gpt-4o-mini", Provider: "openai", ContextTokens: 128000, CostPer1KToken: 0.00015},
	"claude-4.1-opus":                 {ID: "claude-opus-4-20250514", Provider: "anthropic", ContextTokens: 200000, CostPer1KToken: 0.015},
	"Claude 4.1 Opus (beta)":          {ID: "claude-opus-4-20250514", Provider: "anthropic", ContextTokens: 200000, CostPer1KToken: 0.015},
}

// ResolveModel maps a configured model label to vendor model info.
func ResolveModel(label string) (ModelInfo, error) {
	info, ok := modelMapping[label]
	if !ok {
		return ModelInfo{}, fmt.Errorf("unknown model %q; update the generation configuration", label)
	}
	return info, nil
}

// IsValidModel reports whether a label resolves to a known model.
func IsValidModel(label string) bool {
	_, ok := modelMapping[label]
	return ok
}

// AvailableModels returns the known model labels, sorted.
func AvailableModels() []string {
	labels := make([]string, 0, len(modelMapping))
	for label := range modelMapping {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
