package models

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value that tolerates the backend's loose encoding: JSON
// numbers, numeric strings, "", "NaN" and null all decode, the unusable ones
// as zero.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func AmountFromInt(v int64) Amount { return Amount{Decimal: decimal.NewFromInt(v)} }

// ParseAmount converts free-form text into a decimal, coercing anything that
// is not a finite number to zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "undefined", "infinity", "-infinity":
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	a.Decimal = ParseAmount(string(data))
	return nil
}

// MarshalJSON writes a bare JSON number, which is what the API expects.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}
