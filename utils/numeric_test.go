package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountPlainAndThousands(t *testing.T) {
	v := ParseAmount("1,234.50")
	require.NotNil(t, v)
	assert.True(t, v.Equal(decimal.RequireFromString("1234.50")))

	v = ParseAmount("$120,000.00")
	require.NotNil(t, v)
	assert.True(t, v.Equal(decimal.RequireFromString("120000.00")))
}

func TestParseAmountNegativeConventions(t *testing.T) {
	want := decimal.RequireFromString("-1234.50")

	for _, raw := range []string{"(1,234.50)", "$(1,234.50)", "($1,234.50)", "1234.50-", "-1234.50", "-1,234.50"} {
		v := ParseAmount(raw)
		require.NotNil(t, v, raw)
		assert.True(t, v.Equal(want), "parsing %q gave %s", raw, v)
	}
}

func TestParseAmountDoesNotDoubleNegate(t *testing.T) {
	// A value that already parsed negative must not flip back to positive.
	v := ParseAmount("(-1,234.50)")
	require.NotNil(t, v)
	assert.True(t, v.Equal(decimal.RequireFromString("-1234.50")))
}

func TestParseAmountRejectsNonNumeric(t *testing.T) {
	assert.Nil(t, ParseAmount(""))
	assert.Nil(t, ParseAmount("   "))
	assert.Nil(t, ParseAmount("Occupied"))
	assert.Nil(t, ParseAmount("-"))
	assert.Nil(t, ParseAmount("."))
	assert.Nil(t, ParseAmount("$"))
}
