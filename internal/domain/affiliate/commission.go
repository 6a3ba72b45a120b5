package affiliate

import "github.com/shopspring/decimal"

// ComputeCommission calculates the commission for an order amount at the
// given percentage rate. Pure function, no I/O: the caller supplies the
// commission base (the order's pre-discount subtotal) and the affiliate's
// rate as it stands at settlement time.
//
// A non-positive amount or rate yields a zero commission, which settles as
// a no-op success rather than an error.
func ComputeCommission(orderAmount, ratePercent decimal.Decimal) decimal.Decimal {
	if orderAmount.Sign() <= 0 || ratePercent.Sign() <= 0 {
		return decimal.Zero
	}
	return orderAmount.Mul(ratePercent).Div(decimal.NewFromInt(100))
}
