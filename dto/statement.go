package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Strategy identifies which extraction path ultimately produced a statement.
type Strategy string

const (
	StrategyRuleParser       Strategy = "rule-parser"
	StrategyStructuredHybrid Strategy = "structured-hybrid"
	StrategyFallbackRegex    Strategy = "fallback-regex"
	StrategyStructuredOnly   Strategy = "structured-only"
)

// SectionKind names the three statement sections.
type SectionKind string

const (
	SectionIncome       SectionKind = "income"
	SectionExpense      SectionKind = "expense"
	SectionOtherExpense SectionKind = "other_expense"
)

// LineItem is a single labeled monetary figure within a section.
type LineItem struct {
	Label  string
	Amount decimal.Decimal
}

// Section is an ordered mapping of normalized label -> LineItem. The total is
// derived, recomputed on every mutation, and never stored independently.
// Repeated labels accumulate by summation.
type Section struct {
	order []string
	items map[string]LineItem
	total decimal.Decimal
}

func NewSection() *Section {
	return &Section{items: make(map[string]LineItem)}
}

// NormalizeLabel is the identity key for line items within a section.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// Add accumulates amount under label, preserving first-seen insertion order
// and the original casing of the first occurrence.
func (s *Section) Add(label string, amount decimal.Decimal) {
	key := NormalizeLabel(label)
	if key == "" {
		return
	}
	if existing, ok := s.items[key]; ok {
		existing.Amount = existing.Amount.Add(amount)
		s.items[key] = existing
	} else {
		s.order = append(s.order, key)
		s.items[key] = LineItem{Label: label, Amount: amount}
	}
	s.recompute()
}

// AddIfAbsent inserts label only when no item is stored under its normalized
// form. Cross-source merging uses this so that re-merging the same rows can
// never double a total.
func (s *Section) AddIfAbsent(label string, amount decimal.Decimal) {
	if _, ok := s.items[NormalizeLabel(label)]; ok {
		return
	}
	s.Add(label, amount)
}

func (s *Section) recompute() {
	total := decimal.Zero
	for _, key := range s.order {
		total = total.Add(s.items[key].Amount)
	}
	s.total = total
}

// Get returns the line item stored under the normalized form of label.
func (s *Section) Get(label string) (LineItem, bool) {
	item, ok := s.items[NormalizeLabel(label)]
	return item, ok
}

// Items returns the line items in insertion order.
func (s *Section) Items() []LineItem {
	out := make([]LineItem, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.items[key])
	}
	return out
}

func (s *Section) Len() int {
	return len(s.order)
}

func (s *Section) Total() decimal.Decimal {
	return s.total
}

// Statement is one extracted P&L.
type Statement struct {
	Income       *Section
	Expense      *Section
	OtherExpense *Section

	// NetIncome holds an explicitly supplied net figure from the source
	// document or model. When NetIncomeExplicit is false the derived value
	// income - expense - other_expense is authoritative.
	NetIncome         decimal.Decimal
	NetIncomeExplicit bool
}

func NewStatement() *Statement {
	return &Statement{
		Income:       NewSection(),
		Expense:      NewSection(),
		OtherExpense: NewSection(),
	}
}

// Section returns the section for kind; expense is the default bucket.
func (st *Statement) Section(kind SectionKind) *Section {
	switch kind {
	case SectionIncome:
		return st.Income
	case SectionOtherExpense:
		return st.OtherExpense
	default:
		return st.Expense
	}
}

// DerivedNetIncome is income - expense - other_expense.
func (st *Statement) DerivedNetIncome() decimal.Decimal {
	return st.Income.Total().Sub(st.Expense.Total()).Sub(st.OtherExpense.Total())
}

// EffectiveNetIncome prefers an explicitly supplied net figure.
func (st *Statement) EffectiveNetIncome() decimal.Decimal {
	if st.NetIncomeExplicit {
		return st.NetIncome
	}
	return st.DerivedNetIncome()
}

// TotalItems counts line items across all three sections.
func (st *Statement) TotalItems() int {
	return st.Income.Len() + st.Expense.Len() + st.OtherExpense.Len()
}

// SuggestionSource says which mapper tier produced a category suggestion.
type SuggestionSource string

const (
	SourceSynonym   SuggestionSource = "synonym"
	SourceEmbedding SuggestionSource = "embedding"
)

// CategorySuggestion is advisory; consumers may override it.
type CategorySuggestion struct {
	Category string           `json:"category"`
	Source   SuggestionSource `json:"source"`
	Score    *float64         `json:"score,omitempty"`
}

// ExtractionMetadata describes how a statement was produced.
type ExtractionMetadata struct {
	StructuredRows int     `json:"structured_rows"`
	RuleRows       int     `json:"rule_rows"`
	FallbackRows   int     `json:"fallback_rows"`
	ParseTimeMS    int64   `json:"parse_time_ms"`
	QualityScore   float64 `json:"quality_score"`
}

// ExtractionResult is the immutable outcome of one document upload. The
// persistence collaborator owns its durability.
type ExtractionResult struct {
	ID          string             `json:"id"`
	Statement   *Statement         `json:"-"`
	Strategy    Strategy           `json:"extraction_strategy"`
	Confidence  float64            `json:"confidence_score"`
	Metadata    ExtractionMetadata `json:"metadata"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}
