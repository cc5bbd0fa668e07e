package dto

import "errors"

// Error taxonomy. InputError and ExtractionEmpty are the only fatal classes;
// partial extraction surfaces as low confidence, and collaborator failures
// degrade to the next strategy tier.
var (
	ErrNoInput         = errors.New("no file or text payload provided")
	ErrExtractionEmpty = errors.New("no line items could be extracted from the document")
	ErrNoText          = errors.New("no text could be extracted from the document")
)

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type LineItemJSON struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type IncomeSectionJSON struct {
	IndividualItems []LineItemJSON `json:"individual_items"`
	TotalIncome     float64        `json:"total_income"`
}

type ExpenseSectionJSON struct {
	IndividualItems []LineItemJSON `json:"individual_items"`
	TotalExpense    float64        `json:"total_expense"`
}

type OtherExpenseSectionJSON struct {
	IndividualItems   []LineItemJSON `json:"individual_items"`
	TotalOtherExpense float64        `json:"total_other_expense"`
}

// StatementResponse is the external P&L shape. Sections expose array form
// here; internally line items stay label-keyed.
type StatementResponse struct {
	DocumentID          string                        `json:"document_id"`
	Income              IncomeSectionJSON             `json:"income"`
	Expense             ExpenseSectionJSON            `json:"expense"`
	OtherExpense        OtherExpenseSectionJSON       `json:"other_expense"`
	NetIncome           float64                       `json:"net_income"`
	CategorySuggestions map[string]CategorySuggestion `json:"category_suggestions"`
	Unmapped            []string                      `json:"unmapped"`
	Metadata            StatementMetadataJSON         `json:"metadata"`
	Diagnostics         []string                      `json:"diagnostics,omitempty"`
}

type StatementMetadataJSON struct {
	ExtractionStrategy string  `json:"extraction_strategy"`
	ConfidenceScore    float64 `json:"confidence_score"`
	StructuredRows     int     `json:"structured_rows"`
	RuleRows           int     `json:"rule_rows"`
	FallbackRows       int     `json:"fallback_rows"`
	ParseTimeMS        int64   `json:"parse_time_ms"`
}

type RentRollRowJSON struct {
	LotNumber     string   `json:"lot_number"`
	LotNumeric    int      `json:"lot_numeric"`
	Occupied      bool     `json:"occupied"`
	Rent          *float64 `json:"rent"`
	Tenant        string   `json:"tenant,omitempty"`
	OriginalToken string   `json:"original_token"`
	IsDuplicate   bool     `json:"is_duplicate"`
	MissingRent   bool     `json:"missing_rent"`
}

type RentRollResponse struct {
	Rows     []RentRollRowJSON   `json:"rows"`
	Warnings []ValidationWarning `json:"warnings"`
	Summary  RentRollSummary     `json:"summary"`
}

// ToJSON converts a statement into the external response shape.
func (st *Statement) ToJSON() (IncomeSectionJSON, ExpenseSectionJSON, OtherExpenseSectionJSON) {
	toItems := func(s *Section) []LineItemJSON {
		items := s.Items()
		out := make([]LineItemJSON, 0, len(items))
		for _, it := range items {
			out = append(out, LineItemJSON{Label: it.Label, Amount: it.Amount.InexactFloat64()})
		}
		return out
	}
	return IncomeSectionJSON{IndividualItems: toItems(st.Income), TotalIncome: st.Income.Total().InexactFloat64()},
		ExpenseSectionJSON{IndividualItems: toItems(st.Expense), TotalExpense: st.Expense.Total().InexactFloat64()},
		OtherExpenseSectionJSON{IndividualItems: toItems(st.OtherExpense), TotalOtherExpense: st.OtherExpense.Total().InexactFloat64()}
}
