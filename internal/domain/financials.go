package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

var (
	foodGSTRate     = decimal.RequireFromString("0.05")
	platformGSTRate = decimal.RequireFromString("0.18")
	platformFlatFee = decimal.NewFromInt(10)
)

// Financials holds the totals shown for a cart
type Financials struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	FoodGST     decimal.Decimal `json:"foodGst"`
	PlatformFee decimal.Decimal `json:"platformFee"`
	PlatformGST decimal.Decimal `json:"platformGst"`
	Total       decimal.Decimal `json:"total"`
}

// CalcFinancials derives GST, platform fee and total from a subtotal.
// Food GST is 5% of the subtotal, the platform fee is a flat 10 on any
// non-empty cart and carries 18% GST. Taxes are rounded to the paisa and
// the total is the sum of the rounded parts.
func CalcFinancials(subtotal decimal.Decimal) Financials {
	fee := decimal.Zero
	if subtotal.IsPositive() {
		fee = platformFlatFee
	}
	foodGST := subtotal.Mul(foodGSTRate).Round(2)
	platformGST := fee.Mul(platformGSTRate).Round(2)

	return Financials{
		Subtotal:    subtotal,
		FoodGST:     foodGST,
		PlatformFee: fee,
		PlatformGST: platformGST,
		Total:       subtotal.Add(foodGST).Add(fee).Add(platformGST),
	}
}

// MarshalJSON writes every amount with two decimals
func (f Financials) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal    string `json:"subtotal"`
		FoodGST     string `json:"foodGst"`
		PlatformFee string `json:"platformFee"`
		PlatformGST string `json:"platformGst"`
		Total       string `json:"total"`
	}{
		Subtotal:    f.Subtotal.StringFixed(2),
		FoodGST:     f.FoodGST.StringFixed(2),
		PlatformFee: f.PlatformFee.StringFixed(2),
		PlatformGST: f.PlatformGST.StringFixed(2),
		Total:       f.Total.StringFixed(2),
	})
}

// CartSubtotal prefers the server summary and falls back to summing the lines
func CartSubtotal(items []CartItem, summary *CartSummary) decimal.Decimal {
	if summary != nil {
		return summary.Subtotal
	}
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// ItemCount sums quantities across cart rows
func ItemCount(items []CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
