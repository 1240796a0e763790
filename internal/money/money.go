// Package money handles centavo-precise currency amounts and their
// Brazilian Real text representation.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a monetary value with centavo precision.
type Amount struct {
	d decimal.Decimal
}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Zero is the zero amount.
var Zero = Amount{}

// FromCents builds an Amount from an integer number of centavos.
func FromCents(cents int64) Amount {
	return Amount{d: decimal.New(cents, -2)}
}

// FromDecimal builds an Amount from an arbitrary decimal, rounding to
// centavos half-up.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d.Round(2)}
}

// FromFloat builds an Amount from a float64 value in reais.
func FromFloat(v float64) Amount {
	return Amount{d: decimal.NewFromFloat(v).Round(2)}
}

// Cents returns the amount as integer centavos.
func (a Amount) Cents() int64 {
	return a.d.Shift(2).IntPart()
}

// Decimal exposes the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

// Float returns the amount as a float64 in reais.
func (a Amount) Float() float64 {
	f, _ := a.d.Float64()
	return f
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

// Equal reports whether two amounts represent the same value.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// String implements fmt.Stringer using the plain decimal form.
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a fixed-point decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.d.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts either a decimal string or a JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrMalformedAmount
	}
	a.d = d.Round(2)
	return nil
}

// FormatBRL renders the amount as pt-BR currency text, e.g. "R$ 1.234,56".
func FormatBRL(a Amount) string {
	cents := a.Cents()
	negative := cents < 0
	if negative {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	out := brPrinter.Sprintf("R$ %d,%02d", whole, frac)
	if negative {
		out = "-" + out
	}
	return out
}

// ErrMalformedAmount indicates input that cannot be read as BRL currency.
var ErrMalformedAmount = errors.New("money: malformed amount")

// ParseBRL parses pt-BR currency text ("R$ 1.234,56", "1234,56") back
// into an Amount. It is the exact inverse of FormatBRL.
func ParseBRL(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return Amount{}, ErrMalformedAmount
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrMalformedAmount
	}
	if negative {
		d = d.Neg()
	}
	return Amount{d: d.Round(2)}, nil
}

// Split divides total into n parts differing by at most one centavo.
// Earlier parts absorb the remainder so the parts always sum back to
// total exactly.
func Split(total Amount, n int) []Amount {
	if n <= 0 {
		return nil
	}
	cents := total.Cents()
	base := cents / int64(n)
	remainder := cents - base*int64(n)
	sign := int64(1)
	if remainder < 0 {
		sign = -1
		remainder = -remainder
	}
	parts := make([]Amount, n)
	for i := range parts {
		c := base
		if int64(i) < remainder {
			c += sign
		}
		parts[i] = FromCents(c)
	}
	return parts
}

// Sum adds a list of amounts.
func Sum(amounts []Amount) Amount {
	total := Amount{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
