package bhavbook

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// The whole book keeps a single currency. Indian listings, Indian brokers,
// rupee proceeds: a multi-currency model would be dead weight here.
const currency = "INR"

// Money represents a rupee amount. It wraps a decimal to keep the
// bookkeeping arithmetic exact.
type Money struct {
	value decimal.Decimal
}

// M creates a Money from a float. Convenient for literals and tests.
func M(value float64) Money { return Money{value: decimal.NewFromFloat(value)} }

// MD creates a Money from a decimal.
func MD(value decimal.Decimal) Money { return Money{value: value} }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// InexactFloat64 returns the nearest float64. For rendering only, never for
// bookkeeping.
func (m Money) InexactFloat64() float64 { return m.value.InexactFloat64() }

func (m Money) IsZero() bool       { return m.value.IsZero() }
func (m Money) IsNegative() bool   { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool { return m.value.Equal(n.value) }
func (m Money) Add(n Money) Money  { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money  { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money         { return Money{value: m.value.Neg()} }

// MulQ multiplies the amount by a whole share count.
func (m Money) MulQ(q int64) Money { return Money{value: m.value.Mul(decimal.NewFromInt(q))} }

// Div divides the amount by a decimal. The divisor must not be zero.
func (m Money) Div(n decimal.Decimal) Money { return Money{value: m.value.Div(n)} }

// String renders the amount with the rupee currency conventions.
func (m Money) String() string {
	cur := money.GetCurrency(currency)
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString is like String but prefixes positive amounts with '+' and
// renders zero as "-". Used in flow columns of reports.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) MarshalJSON() ([]byte, error) { return m.value.MarshalJSON() }

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.value = d
	return nil
}
