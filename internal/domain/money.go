package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount with two fractional digits. It travels as a
// "123.45" string in JSON and is stored as TEXT so sqlite never rounds it.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{d.Round(2)} }

func MoneyFromInt(units int64) Money { return Money{decimal.NewFromInt(units)} }

// ParseMoney accepts "250", "250.5" and "250.50"; more than two fractional
// digits is an error rather than a silent rounding.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	if !d.Equal(d.Round(2)) {
		return Money{}, fmt.Errorf("amount %q has more than 2 decimal places", s)
	}
	return Money{d.Round(2)}, nil
}

func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) String() string { return m.StringFixed(2) }

func (m Money) Plus(o Money) Money { return Money{m.Add(o.Decimal)} }

func (m Money) Times(qty int) Money { return Money{m.Mul(decimal.NewFromInt(int64(qty)))} }

func (m Money) Equals(o Money) bool { return m.Equal(o.Decimal) }

func (m Money) Less(o Money) bool { return m.LessThan(o.Decimal) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	p, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = p
	return nil
}

func (m Money) Value() (driver.Value, error) { return m.StringFixed(2), nil }

func (m *Money) Scan(v any) error { return m.Decimal.Scan(v) }
