package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoneyFormat(t *testing.T) {
	m := NewMoney("")
	assert.Equal(t, "$1,299.00", m.Format(decimal.RequireFromString("1299")))
	assert.Equal(t, "$49.99", m.Format(decimal.RequireFromString("49.99")))
	assert.Equal(t, "$0.00", m.Format(decimal.Zero))

	eur := NewMoney("€")
	assert.Equal(t, "€10.50", eur.Format(decimal.RequireFromString("10.5")))
}
