package normalize

import (
	"math"

	"github.com/shopspring/decimal"
)

// MinAmerican is the clamp applied to decimal prices at or below even stakes returned
const MinAmerican = -10000

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// IsDecimalLike reports whether price looks like a decimal (European) price
// rather than an American one
func IsDecimalLike(price float64) bool {
	return price > 1 && price < 10 && price != math.Trunc(price)
}

// ToAmerican returns price in American odds. Decimal-looking prices are
// converted; anything else is assumed to already be American.
func ToAmerican(price float64) int {
	if !IsDecimalLike(price) {
		return int(math.Round(price))
	}
	return DecimalToAmerican(price)
}

// DecimalToAmerican converts a decimal price to American odds
func DecimalToAmerican(price float64) int {
	d := decimal.NewFromFloat(price)
	if d.LessThanOrEqual(one) {
		return MinAmerican
	}

	profit := d.Sub(one)
	if d.LessThan(two) {
		// Favorite: stake needed to win 100
		return int(hundred.Neg().Div(profit).Round(0).IntPart())
	}
	// Underdog: profit on a 100 stake
	return int(profit.Mul(hundred).Round(0).IntPart())
}

// ImpliedProbability returns the break-even probability of an American price
func ImpliedProbability(american int) float64 {
	a := float64(american)
	if a < 0 {
		return -a / (-a + 100)
	}
	return 100 / (a + 100)
}
