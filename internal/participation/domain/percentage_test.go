package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePercentage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"50", "50"},
		{"33.33", "33.33"},
		{"33,33", "33.33"},
		{"12.5%", "12.5"},
		{" 100 % ", "100"},
		{"0", "0"},
		{"0.00000001", "0.00000001"},
	}
	for _, c := range cases {
		got, err := ParsePercentage(c.in)
		require.NoError(t, err, c.in)
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "%s -> %s", c.in, got)
	}
}

func TestParsePercentageRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "%", "-1", "100.01", "abc", "12..5"} {
		_, err := ParsePercentage(in)
		assert.ErrorIs(t, err, ErrInvalidPercentage, in)
	}
}
