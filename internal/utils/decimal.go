package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// RatioBound is the magnitude cap applied to every derived ratio before it
// is persisted. Values beyond it would overflow the fixed-precision columns.
var RatioBound = decimal.NewFromInt(1_000_000_000)

// ClampDecimal bounds d to the closed range [-RatioBound, RatioBound].
// Values outside the range are clamped to the nearest bound.
func ClampDecimal(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(RatioBound) {
		return RatioBound
	}
	if d.LessThan(RatioBound.Neg()) {
		return RatioBound.Neg()
	}
	return d
}

// ClampFloat maps a raw float computation onto the bounded decimal range.
// NaN becomes zero; infinities become the bound with the original sign.
func ClampFloat(f float64) decimal.Decimal {
	switch {
	case math.IsNaN(f):
		return decimal.Zero
	case math.IsInf(f, 1):
		return RatioBound
	case math.IsInf(f, -1):
		return RatioBound.Neg()
	}
	return ClampDecimal(decimal.NewFromFloat(f))
}

// SafeDiv divides num by den, returning nil when either operand is missing
// or the denominator is zero. No division here can produce NaN or infinity.
func SafeDiv(num, den *decimal.Decimal) *decimal.Decimal {
	if num == nil || den == nil || den.IsZero() {
		return nil
	}
	q := ClampDecimal(num.Div(*den))
	return &q
}
