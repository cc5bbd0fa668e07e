package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/dto"
)

func TestExtractRentRollFromText(t *testing.T) {
	svc := NewRentRollService(nil, nil, config.DefaultPolicy())

	var b strings.Builder
	b.WriteString("Rent Roll - Park Haven\n")
	b.WriteString("Lot  Status  Rent  Tenant\n")
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&b, "Lot %d  Occupied  450.00  Tenant %c\n", i, 'A'+i%26)
	}
	for i := 51; i <= 65; i++ {
		fmt.Fprintf(&b, "Lot %d  Vacant\n", i)
	}
	b.WriteString("Total  22,500.00\n")

	resp, err := svc.ExtractRentRoll(context.Background(), &dto.ExtractRequest{Text: b.String()})
	require.NoError(t, err)

	assert.Len(t, resp.Rows, 65)
	assert.Equal(t, 65, resp.Summary.TotalLots)
	assert.Equal(t, 50, resp.Summary.OccupiedLots)
	assert.Equal(t, 450.00, resp.Summary.AverageRent)
	assert.Equal(t, 450.00, resp.Summary.ModeRent)
	assert.Equal(t, 270000.00, resp.Summary.TotalAnnualIncome)
	assert.Equal(t, 76.9, resp.Summary.OccupancyRate)
	assert.Equal(t, 23.1, resp.Summary.VacancyRate)

	assert.Equal(t, "001", resp.Rows[0].LotNumber)
	require.NotNil(t, resp.Rows[0].Rent)
	assert.Equal(t, 450.00, *resp.Rows[0].Rent)
	assert.Nil(t, resp.Rows[50].Rent)
}

func TestExtractRentRollDuplicateWarning(t *testing.T) {
	svc := NewRentRollService(nil, nil, config.DefaultPolicy())

	// "2" and "Lot 002" are the same lot once normalized.
	text := "2  Occupied  450.00\nLot 002  Occupied  455.00\n3  Vacant\n"
	resp, err := svc.ExtractRentRoll(context.Background(), &dto.ExtractRequest{Text: text})
	require.NoError(t, err)

	var codes []dto.WarningCode
	for _, w := range resp.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, dto.WarnDuplicateLots)
	assert.True(t, resp.Rows[0].IsDuplicate)
	assert.True(t, resp.Rows[1].IsDuplicate)
	assert.False(t, resp.Rows[2].IsDuplicate)
}

func TestExtractRentRollChunkedParsingMatchesSequential(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.ChunkLines = 10

	chunked := NewRentRollService(nil, nil, policy)
	sequential := NewRentRollService(nil, nil, config.DefaultPolicy())

	var b strings.Builder
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&b, "Lot %d  Occupied  %d.00\n", i, 400+i)
	}
	// The Total line sits in the last chunk but must suppress matching rents
	// in every chunk.
	b.WriteString("Total  401.00\n")
	req := func() *dto.ExtractRequest { return &dto.ExtractRequest{Text: b.String()} }

	got, err := chunked.ExtractRentRoll(context.Background(), req())
	require.NoError(t, err)
	want, err := sequential.ExtractRentRoll(context.Background(), req())
	require.NoError(t, err)

	require.Len(t, got.Rows, 40)
	assert.Equal(t, want.Rows, got.Rows)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Warnings, got.Warnings)

	// Lot 1's rent equals the Total figure and was discarded everywhere.
	assert.Nil(t, got.Rows[0].Rent)

	var codes []dto.WarningCode
	for _, w := range got.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, dto.WarnMatchedTotal)
}

func TestExtractRentRollErrorTaxonomy(t *testing.T) {
	svc := NewRentRollService(nil, nil, config.DefaultPolicy())

	_, err := svc.ExtractRentRoll(context.Background(), &dto.ExtractRequest{})
	assert.ErrorIs(t, err, dto.ErrNoInput)

	_, err = svc.ExtractRentRoll(context.Background(), &dto.ExtractRequest{Text: "  \n "})
	assert.ErrorIs(t, err, dto.ErrNoText)

	_, err = svc.ExtractRentRoll(context.Background(), &dto.ExtractRequest{Text: "no lots in this prose"})
	assert.ErrorIs(t, err, dto.ErrExtractionEmpty)
}
