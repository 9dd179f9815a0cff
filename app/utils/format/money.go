package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// Money renders amounts for display, e.g. "$1,299.00".
type Money struct {
	ac accounting.Accounting
}

func NewMoney(symbol string) *Money {
	if symbol == "" {
		symbol = "$"
	}
	return &Money{ac: accounting.Accounting{Symbol: symbol, Precision: 2, Thousand: ",", Decimal: "."}}
}

func (m *Money) Format(amount decimal.Decimal) string {
	return m.ac.FormatMoney(amount.Round(2).InexactFloat64())
}
