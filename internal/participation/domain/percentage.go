package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParsePercentage normalizes a human-entered percentage. Accepts a
// trailing percent sign and a comma decimal separator; the result must
// lie in [0, 100].
func ParsePercentage(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, ErrInvalidPercentage
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPercentage
	}
	if value.IsNegative() || value.GreaterThan(hundred) {
		return decimal.Zero, ErrInvalidPercentage
	}
	return value, nil
}
