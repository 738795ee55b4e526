package shipping

import "github.com/shopspring/decimal"

// FreeShippingProgress reports how far a physical subtotal is from the
// free-shipping threshold. Only product/package lines count toward the
// subtotal, and only when fulfillment is by shipping; the caller owns that
// filtering.
func FreeShippingProgress(subtotal, threshold float64) (remaining float64, percent int) {
	if threshold <= 0 {
		return 0, 100
	}

	sub := decimal.NewFromFloat(subtotal)
	thr := decimal.NewFromFloat(threshold)

	if sub.GreaterThanOrEqual(thr) {
		return 0, 100
	}

	remaining = thr.Sub(sub).Round(2).InexactFloat64()
	percent = int(sub.Div(thr).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	if percent > 100 {
		percent = 100
	}
	return remaining, percent
}
