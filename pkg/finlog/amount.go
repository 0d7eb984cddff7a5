package finlog

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// amountScale is the number of decimal places kept in REAL columns (USD cents).
const amountScale = 2

// Amount is a USD value held as a decimal. It renders as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount creates an Amount from a float64.
func NewAmount(f float64) Amount {
	return Amount{decimal.NewFromFloat(f)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// Scan reads the REAL columns written by Value. SQLite hands back an
// INTEGER when a stored value has no fractional part.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		a.Decimal = decimal.Zero
	case float64:
		a.Decimal = decimal.NewFromFloat(v).Round(amountScale)
	case int64:
		a.Decimal = decimal.NewFromInt(v)
	default:
		return fmt.Errorf("unsupported amount column type %T", src)
	}
	return nil
}

// Value writes the amount rounded to cents.
func (a Amount) Value() (driver.Value, error) {
	return a.Round(amountScale).InexactFloat64(), nil
}

func (a Amount) Float() float64 {
	return a.InexactFloat64()
}

// scanNullAmount converts a nullable REAL column into an *Amount.
func scanNullAmount(src any) (*Amount, error) {
	if src == nil {
		return nil, nil
	}
	var a Amount
	if err := a.Scan(src); err != nil {
		return nil, err
	}
	return &a, nil
}
