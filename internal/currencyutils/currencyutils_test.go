package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "", expected: "0"},
		{input: "   ", expected: "0"},
		{input: "1234.56", expected: "1234.56"},
		{input: "-12.345", expected: "-12.345"},
		{input: "1,234.56", expected: "1234.56"},
		{input: "1.234,56", expected: "1234.56"},
		{input: "1234,5", expected: "1234.5"},
		{input: "1,234", expected: "1234"},
		{input: "1'234.50", expected: "1234.5"},
		{input: "CHF 1'234.50", expected: "1234.5"},
		{input: "€ 99,90", expected: "99.9"},
		{input: "12,5x", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestStandardizeAmount(t *testing.T) {
	assert.Equal(t, "1234.56", StandardizeAmount("USD 1,234.56"))
	assert.Equal(t, "-1234.56", StandardizeAmount("-1.234,56"))
	assert.Equal(t, "1234567", StandardizeAmount("1,234,567"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1234.50", FormatAmount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "-0.10", FormatAmount(decimal.RequireFromString("-0.1")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
	assert.Equal(t, "1200.00", FormatAmount(decimal.New(12, 2)))
	assert.Equal(t, "1.005", FormatAmount(decimal.RequireFromString("1.005")))
	assert.Equal(t, "-0.12345", FormatAmount(decimal.RequireFromString("-0.12345")))
}

func TestFormatAmount_RoundTrip(t *testing.T) {
	for _, raw := range []string{"1.005", "0.1", "-42", "1234.5678"} {
		amount := decimal.RequireFromString(raw)
		parsed, err := ParseAmount(FormatAmount(amount))
		require.NoError(t, err)
		assert.True(t, amount.Equal(parsed), "%s became %s", raw, parsed)
	}
}
