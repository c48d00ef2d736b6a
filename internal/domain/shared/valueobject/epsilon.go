// Package valueobject holds shared monetary value semantics. All amounts in
// the system are bare decimals in the store currency (LKR); what the domain
// shares is the comparison tolerance, not a wrapper type.
package valueobject

import "github.com/shopspring/decimal"

// Epsilon is the tolerance applied to every monetary comparison against
// zero. Amounts within 0.01 currency units of zero are treated as zero.
var Epsilon = decimal.NewFromFloat(0.01)

// ApproxZero reports whether an amount is within Epsilon of zero
func ApproxZero(amount decimal.Decimal) bool {
	return amount.Abs().LessThanOrEqual(Epsilon)
}
