package dto

import "github.com/shopspring/decimal"

// WarningCode enumerates rent-roll batch warnings.
type WarningCode string

const (
	WarnDuplicateLots WarningCode = "duplicate_lots"
	WarnMissingRent   WarningCode = "missing_rent"
	WarnNonSequential WarningCode = "non_sequential"
	WarnMatchedTotal  WarningCode = "matched_total"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ValidationWarning is attached to a rent-roll batch, never to a single row.
// Rows reference warnings through their boolean flags.
type ValidationWarning struct {
	Code     WarningCode `json:"code"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}

// RentRollRow is one parsed lot. Identity is LotNumber; duplicates are
// flagged, not merged.
type RentRollRow struct {
	LotNumber     string           `json:"lot_number"`
	LotNumeric    int              `json:"lot_numeric"`
	Occupied      bool             `json:"occupied"`
	Rent          *decimal.Decimal `json:"-"`
	Tenant        string           `json:"tenant,omitempty"`
	OriginalToken string           `json:"original_token"`
	IsDuplicate   bool             `json:"is_duplicate"`
	MissingRent   bool             `json:"missing_rent"`
}

// RentRollSummary is computed only over occupied rows with a known rent,
// except TotalLots which counts every parsed row.
type RentRollSummary struct {
	TotalLots         int     `json:"total_lots"`
	OccupiedLots      int     `json:"occupied_lots"`
	AverageRent       float64 `json:"average_rent"`
	ModeRent          float64 `json:"mode_rent"`
	TotalAnnualIncome float64 `json:"total_annual_income"`
	OccupancyRate     float64 `json:"occupancy_rate"`
	VacancyRate       float64 `json:"vacancy_rate"`
}
