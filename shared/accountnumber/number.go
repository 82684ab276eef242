package accountnumber

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/mbhbank/account-service/shared/sentinel"
	"github.com/shopspring/decimal"
)

// Length is the number of decimal digits in every generated account number.
const Length = 24

// Number is an account number. The padded 24-digit form does not fit into an
// int64, so the value is kept as an arbitrary-precision decimal.
type Number struct {
	d decimal.Decimal
}

// Parse accepts a non-negative integer of at most Length digits.
func Parse(s string) (Number, error) {
	if s == "" || len(s) > Length {
		return Number{}, fmt.Errorf("account number %q: %w", s, sentinel.ErrInvalid)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Number{}, fmt.Errorf("account number %q: %w", s, sentinel.ErrInvalid)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("account number %q: %w", s, sentinel.ErrInvalid)
	}
	return Number{d: d}, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Number) String() string { return n.d.String() }

func (n Number) IsZero() bool { return n.d.IsZero() }

func (n Number) Equal(other Number) bool { return n.d.Equal(other.d) }

// Cmp returns -1, 0 or +1 like decimal.Decimal.Cmp.
func (n Number) Cmp(other Number) int { return n.d.Cmp(other.d) }

// MarshalJSON renders the number as a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted string of digits.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("account number %s: %w", s, sentinel.ErrInvalid)
		}
		s = unquoted
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Value stores the number as NUMERIC text.
func (n Number) Value() (driver.Value, error) {
	return n.d.String(), nil
}

func (n *Number) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan account number: %w", err)
	}
	if !d.IsInteger() || d.IsNegative() {
		return fmt.Errorf("scan account number %s: %w", d.String(), sentinel.ErrInvalid)
	}
	n.d = d
	return nil
}
