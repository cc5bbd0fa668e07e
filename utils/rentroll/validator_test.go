package rentroll

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
)

func occupiedRow(lot int, rent string) dto.RentRollRow {
	r := decimal.RequireFromString(rent)
	return dto.RentRollRow{
		LotNumber:  fmt.Sprintf("%03d", lot),
		LotNumeric: lot,
		Occupied:   true,
		Rent:       &r,
	}
}

func vacantRow(lot int) dto.RentRollRow {
	return dto.RentRollRow{
		LotNumber:  fmt.Sprintf("%03d", lot),
		LotNumeric: lot,
	}
}

func warningCodes(warnings []dto.ValidationWarning) []dto.WarningCode {
	codes := make([]dto.WarningCode, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

func TestValidateSummaryStatistics(t *testing.T) {
	rows := make([]dto.RentRollRow, 0, 65)
	for i := 1; i <= 50; i++ {
		rows = append(rows, occupiedRow(i, "450.00"))
	}
	for i := 51; i <= 65; i++ {
		rows = append(rows, vacantRow(i))
	}

	warnings, summary := Validate(rows, 0, config.DefaultPolicy())
	assert.Empty(t, warnings)

	assert.Equal(t, 65, summary.TotalLots)
	assert.Equal(t, 50, summary.OccupiedLots)
	assert.Equal(t, 450.00, summary.AverageRent)
	assert.Equal(t, 450.00, summary.ModeRent)
	assert.Equal(t, 270000.00, summary.TotalAnnualIncome)
	assert.Equal(t, 76.9, summary.OccupancyRate)
	assert.Equal(t, 23.1, summary.VacancyRate)
}

func TestValidateModeRentTieBreaksLower(t *testing.T) {
	rows := []dto.RentRollRow{
		occupiedRow(1, "450.00"),
		occupiedRow(2, "450.00"),
		occupiedRow(3, "475.00"),
		occupiedRow(4, "475.00"),
	}
	_, summary := Validate(rows, 0, config.DefaultPolicy())
	assert.Equal(t, 450.00, summary.ModeRent)
	assert.Equal(t, 462.50, summary.AverageRent)
}

func TestValidateFlagsDuplicates(t *testing.T) {
	rows := []dto.RentRollRow{
		occupiedRow(2, "450.00"),
		occupiedRow(2, "455.00"),
		occupiedRow(3, "450.00"),
	}
	warnings, _ := Validate(rows, 0, config.DefaultPolicy())
	assert.Contains(t, warningCodes(warnings), dto.WarnDuplicateLots)

	assert.True(t, rows[0].IsDuplicate)
	assert.True(t, rows[1].IsDuplicate)
	assert.False(t, rows[2].IsDuplicate)
}

func TestValidateFlagsMissingRent(t *testing.T) {
	rows := []dto.RentRollRow{
		occupiedRow(1, "450.00"),
		{LotNumber: "002", LotNumeric: 2, Occupied: true},
		vacantRow(3),
	}
	warnings, summary := Validate(rows, 0, config.DefaultPolicy())
	assert.Contains(t, warningCodes(warnings), dto.WarnMissingRent)

	assert.True(t, rows[1].MissingRent)
	assert.False(t, rows[2].MissingRent, "vacant lots are not missing rent")

	// Occupied rows without a rent stay out of the rent statistics.
	assert.Equal(t, 1, summary.OccupiedLots)
}

func TestValidateReportsMatchedTotals(t *testing.T) {
	warnings, _ := Validate([]dto.RentRollRow{occupiedRow(1, "450.00")}, 2, config.DefaultPolicy())
	require.Len(t, warnings, 1)
	assert.Equal(t, dto.WarnMatchedTotal, warnings[0].Code)
	assert.Equal(t, dto.SeverityWarning, warnings[0].Severity)
}

func TestValidateSequenceWarningAtScale(t *testing.T) {
	pol := config.DefaultPolicy()

	// 200 lots spaced three apart: two thirds of the range is missing.
	rows := make([]dto.RentRollRow, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, occupiedRow(1+i*3, "450.00"))
	}
	warnings, _ := Validate(rows, 0, pol)
	assert.Contains(t, warningCodes(warnings), dto.WarnNonSequential)
}

func TestValidateSequenceWarningSkipsSmallParks(t *testing.T) {
	// Same gappy numbering, but far below the portfolio-scale floor.
	rows := []dto.RentRollRow{
		occupiedRow(1, "450.00"),
		occupiedRow(40, "450.00"),
		occupiedRow(90, "450.00"),
	}
	warnings, _ := Validate(rows, 0, config.DefaultPolicy())
	assert.NotContains(t, warningCodes(warnings), dto.WarnNonSequential)
}

func TestValidateEmptyOccupiedSetLeavesRentStatsZero(t *testing.T) {
	rows := []dto.RentRollRow{vacantRow(1), vacantRow(2)}
	_, summary := Validate(rows, 0, config.DefaultPolicy())
	assert.Equal(t, 2, summary.TotalLots)
	assert.Equal(t, 0, summary.OccupiedLots)
	assert.Zero(t, summary.AverageRent)
	assert.Zero(t, summary.TotalAnnualIncome)
	assert.Zero(t, summary.OccupancyRate)
}
