package calc

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountPercentage returns how much cheaper discounted is than price, truncated to a whole percent.
func DiscountPercentage(price, discounted decimal.Decimal) int {
	if !price.IsPositive() || !discounted.LessThan(price) {
		return 0
	}
	return int(price.Sub(discounted).Mul(hundred).Div(price).IntPart())
}

// ToMinorUnits converts an amount to integer cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
