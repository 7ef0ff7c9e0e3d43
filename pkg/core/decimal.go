package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// decimalCtx is the arithmetic context for monetary values. 34 digits is
// far beyond any price or amount the exchange accepts.
var decimalCtx = &apd.Context{
	Precision:   34,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Rounding:    apd.RoundHalfUp,
	Traps:       apd.DefaultTraps,
}

// FormatFixed8 renders d with exactly eight fractional digits, the fixed
// precision the exchange expects for order prices and amounts. Signature
// verification is byte-exact, so "0.1" must go on the wire as "0.10000000".
func FormatFixed8(d *apd.Decimal) (string, error) {
	var q apd.Decimal
	if _, err := decimalCtx.Quantize(&q, d, -8); err != nil {
		return "", fmt.Errorf("quantize to 8 decimals: %w", err)
	}
	return q.Text('f'), nil
}

// ParseDecimal parses the exchange's string-encoded decimal into dst.
func ParseDecimal(dst *apd.Decimal, s string) error {
	if _, _, err := dst.SetString(s); err != nil {
		return fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return nil
}
