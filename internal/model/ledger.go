package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one sale reported by the price source.
type TransactionRecord struct {
	Time     time.Time `json:"timestamp"`
	Symbol   string    `json:"symbol"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

// Amount returns quantity × price rounded to cents. A non-finite price
// yields zero.
func (t TransactionRecord) Amount() decimal.Decimal {
	if !finite(t.Price) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(t.Price).Mul(decimal.NewFromInt(int64(t.Quantity))).Round(2)
}

// PricePlaceholder is shown for a price that cannot be formatted.
const PricePlaceholder = "–"

// FormatPrice renders a price with exactly two decimals, or
// PricePlaceholder for NaN and infinities.
func FormatPrice(p float64) string {
	if !finite(p) {
		return PricePlaceholder
	}
	return decimal.NewFromFloat(p).StringFixed(2)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
