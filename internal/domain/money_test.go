package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalAdditionIsExact(t *testing.T) {
	// The classic binary-float trap: 0.1 + 0.2 != 0.3 in IEEE 754.
	a, err := decimal.NewFromString("0.1")
	require.NoError(t, err)
	b, err := decimal.NewFromString("0.2")
	require.NoError(t, err)

	sum := RoundMoney(a.Add(b))
	want, err := decimal.NewFromString("0.3")
	require.NoError(t, err)
	assert.True(t, sum.Equal(want), "got %s", sum)
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fewer digits unchanged", input: "1.5", want: "1.5"},
		{name: "truncates at eight digits", input: "0.123456789", want: "0.12345679"},
		{name: "half rounds to even", input: "0.000000015", want: "0.00000002"},
		{name: "half rounds to even downward", input: "0.000000025", want: "0.00000002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := decimal.NewFromString(tt.input)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			got := RoundMoney(input)
			assert.True(t, got.Equal(want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive(decimal.NewFromInt(1)))
	assert.False(t, IsPositive(decimal.Zero))
	assert.False(t, IsPositive(decimal.NewFromInt(-1)))
}
