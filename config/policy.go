package config

import "github.com/shopspring/decimal"

// Policy collects every tunable heuristic threshold in one place so parsing
// logic stays free of magic numbers and tests can override individual knobs.
type Policy struct {
	// MinRuleRows is the row count below which the rule parser is considered
	// to have under-extracted and the regex fallback scan runs.
	MinRuleRows int

	// FallbackDominanceRows is the fallback row count above which the result
	// strategy is downgraded to fallback-regex.
	FallbackDominanceRows int

	// EmbeddingSimilarity is the cosine similarity floor for an embedding
	// category suggestion.
	EmbeddingSimilarity float64

	// MismatchThreshold is the absolute dollar difference between
	// independently derived totals that gets recorded as a diagnostic.
	MismatchThreshold decimal.Decimal

	// WeakTextScore is the quality score below which PDF text is treated as
	// scanned and the OCR path runs.
	WeakTextScore float64

	// Confidence bands per extraction strategy.
	RuleConfidence     float64
	HybridConfidence   float64
	FallbackConfidence float64
	CorroborationBump  float64

	// Rent-roll sequence warning gates. Small portfolios have gaps by
	// nature, so the warning only fires at portfolio scale.
	SequenceMinLots  int
	SequenceGapRatio float64
	SequenceMaxGap   int

	// ChunkLines is the line count above which rent-roll text is split into
	// concurrently parsed chunks.
	ChunkLines int
}

func DefaultPolicy() Policy {
	return Policy{
		MinRuleRows:           3,
		FallbackDominanceRows: 10,
		EmbeddingSimilarity:   0.85,
		MismatchThreshold:     decimal.NewFromInt(500),
		WeakTextScore:         50,
		RuleConfidence:        0.65,
		HybridConfidence:      0.85,
		FallbackConfidence:    0.60,
		CorroborationBump:     0.05,
		SequenceMinLots:       200,
		SequenceGapRatio:      0.20,
		SequenceMaxGap:        10,
		ChunkLines:            500,
	}
}
