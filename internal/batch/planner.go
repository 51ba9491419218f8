// Package batch plans order-preserving, token-budget-bounded batches for the
// external optimizer.
package batch

import (
	"github.com/devfikr/subpolish/internal/models"
)

const (
	// DefaultMaxTokensPerBatch is the external optimizer's approximate
	// input-size limit per call.
	DefaultMaxTokensPerBatch = 75000
	// DefaultCharsPerToken is a deliberately conservative estimation ratio.
	DefaultCharsPerToken = 3
	// MaxItemsPerRequest caps item count per optimize request, independently
	// of the token budget. Protects the upstream call's latency envelope.
	MaxItemsPerRequest = 50
)

// EstimateTokens approximates an item's token cost as
// ceil(len(content)/charsPerToken) over UTF-8 bytes.
func EstimateTokens(content string, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	n := len(content)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

// Plan walks items in order, closing a batch whenever the next item would
// push it over maxTokensPerBatch. A single item over budget still gets its
// own batch; items are atomic and never split or dropped. The result is a
// deterministic, exact, order-preserving partition of items.
func Plan(items []models.CaptionContent, maxTokensPerBatch, charsPerToken int) []models.OptimizationBatch {
	if maxTokensPerBatch <= 0 {
		maxTokensPerBatch = DefaultMaxTokensPerBatch
	}
	if len(items) == 0 {
		return nil
	}

	var batches []models.OptimizationBatch
	var current []models.CaptionContent
	used := 0
	for _, it := range items {
		cost := EstimateTokens(it.Content, charsPerToken)
		if len(current) > 0 && used+cost > maxTokensPerBatch {
			batches = append(batches, models.OptimizationBatch{Items: current})
			current = nil
			used = 0
		}
		current = append(current, it)
		used += cost
	}
	if len(current) > 0 {
		batches = append(batches, models.OptimizationBatch{Items: current})
	}

	for i := range batches {
		batches[i].BatchNumber = i + 1
		batches[i].TotalBatches = len(batches)
	}
	return batches
}
