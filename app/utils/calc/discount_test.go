package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountPercentage(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, 20, DiscountPercentage(d("100"), d("80")))
	assert.Equal(t, 33, DiscountPercentage(d("30"), d("20")))
	assert.Equal(t, 0, DiscountPercentage(d("30"), d("30")))
	assert.Equal(t, 0, DiscountPercentage(d("0"), d("0")))
}

func TestToMinorUnits(t *testing.T) {
	d := decimal.RequireFromString
	assert.Equal(t, int64(4999), ToMinorUnits(d("49.99")))
	assert.Equal(t, int64(100), ToMinorUnits(d("1")))
	assert.Equal(t, int64(1), ToMinorUnits(d("0.005")))
	assert.Equal(t, int64(0), ToMinorUnits(d("0.004")))
}
