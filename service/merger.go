package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
)

// Merger reconciles up to three independently produced statements into one.
// No single extraction strategy is reliable across all document layouts; the
// merger's job is graceful degradation, not perfection.
type Merger struct {
	policy config.Policy
}

func NewMerger(policy config.Policy) *Merger {
	return &Merger{policy: policy}
}

// MergeInput carries the per-strategy statements. Nil statements are treated
// as empty; merging with an empty source is an identity operation.
type MergeInput struct {
	Rule           *dto.Statement
	RuleRows       int
	Structured     *dto.Statement
	StructuredRows int
	Fallback       *dto.Statement
	FallbackRows   int
}

// MergeOutcome is the single trusted result.
type MergeOutcome struct {
	Statement   *dto.Statement
	Strategy    dto.Strategy
	Confidence  float64
	Diagnostics []string
}

// Merge unions labels across sources, resolves net income by explicit source
// precedence (structured > rule > fallback), and assigns the strategy label
// and confidence band. Within one source repeated labels have already been
// summed; across sources the first writer wins, so merging a statement with
// itself (or with an empty source) changes nothing.
func (m *Merger) Merge(in MergeInput) MergeOutcome {
	final := dto.NewStatement()
	mergeStatement(final, in.Rule)
	mergeStatement(final, in.Structured)
	mergeStatement(final, in.Fallback)

	// Net-income precedence is explicit, not insertion-order dependent.
	for _, src := range []*dto.Statement{in.Structured, in.Rule, in.Fallback} {
		if src != nil && src.NetIncomeExplicit {
			final.NetIncome = src.NetIncome
			final.NetIncomeExplicit = true
			break
		}
	}

	strategy := m.resolveStrategy(in)
	confidence := m.confidence(strategy, in)
	diagnostics := m.diagnostics(final, in)

	return MergeOutcome{
		Statement:   final,
		Strategy:    strategy,
		Confidence:  confidence,
		Diagnostics: diagnostics,
	}
}

func mergeStatement(dst, src *dto.Statement) {
	if src == nil {
		return
	}
	for _, kind := range []dto.SectionKind{dto.SectionIncome, dto.SectionExpense, dto.SectionOtherExpense} {
		for _, item := range src.Section(kind).Items() {
			dst.Section(kind).AddIfAbsent(item.Label, item.Amount)
		}
	}
}

func (m *Merger) resolveStrategy(in MergeInput) dto.Strategy {
	if in.StructuredRows > 0 {
		if in.RuleRows == 0 {
			return dto.StrategyStructuredOnly
		}
		return dto.StrategyStructuredHybrid
	}
	if in.FallbackRows > m.policy.FallbackDominanceRows && in.RuleRows < m.policy.MinRuleRows {
		return dto.StrategyFallbackRegex
	}
	return dto.StrategyRuleParser
}

func (m *Merger) confidence(strategy dto.Strategy, in MergeInput) float64 {
	var c float64
	switch strategy {
	case dto.StrategyStructuredHybrid, dto.StrategyStructuredOnly:
		c = m.policy.HybridConfidence
	case dto.StrategyFallbackRegex:
		c = m.policy.FallbackConfidence
	default:
		c = m.policy.RuleConfidence
	}

	// Fallback corroborating the rule output is a trust signal.
	if in.FallbackRows > 0 && in.RuleRows > 0 && in.Rule != nil && in.Fallback != nil {
		diff := in.Rule.DerivedNetIncome().Sub(in.Fallback.DerivedNetIncome()).Abs()
		if diff.LessThanOrEqual(m.policy.MismatchThreshold) {
			c += m.policy.CorroborationBump
		}
	}
	if c > 1 {
		c = 1
	}
	return c
}

// diagnostics records cross-source total mismatches above the dollar
// threshold. These inform confidence consumers, never control flow.
func (m *Merger) diagnostics(final *dto.Statement, in MergeInput) []string {
	var out []string

	if in.Rule != nil && in.Structured != nil && in.RuleRows > 0 && in.StructuredRows > 0 {
		pairs := []struct {
			name       string
			rule, model decimal.Decimal
		}{
			{"income", in.Rule.Income.Total(), in.Structured.Income.Total()},
			{"expense", in.Rule.Expense.Total(), in.Structured.Expense.Total()},
			{"other_expense", in.Rule.OtherExpense.Total(), in.Structured.OtherExpense.Total()},
		}
		for _, p := range pairs {
			if p.rule.Sub(p.model).Abs().GreaterThan(m.policy.MismatchThreshold) {
				out = append(out, fmt.Sprintf("%s totals disagree: rule parser %s vs structured model %s",
					p.name, p.rule.StringFixed(2), p.model.StringFixed(2)))
			}
		}
	}

	if final.NetIncomeExplicit {
		diff := final.NetIncome.Sub(final.DerivedNetIncome()).Abs()
		if diff.GreaterThan(m.policy.MismatchThreshold) {
			out = append(out, fmt.Sprintf("explicit net income %s differs from derived %s by %s",
				final.NetIncome.StringFixed(2), final.DerivedNetIncome().StringFixed(2), diff.StringFixed(2)))
		}
	}
	return out
}
