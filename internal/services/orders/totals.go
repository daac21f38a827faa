package orders

import (
	"math"

	"restaurant-pos/internal/models"
)

// round2 keeps currency amounts at two decimal places. The epsilon
// catches half-paisa values that land just under the .5 boundary in
// binary float (333 * 2.5% is 8.324999... and must round to 8.33).
func round2(v float64) float64 {
	return math.Round(v*100+1e-9) / 100
}

// LineAmount is the price of one order line: unit price times quantity
// plus all addons.
func LineAmount(unitPrice float64, quantity int, addons []models.Addon) float64 {
	total := unitPrice * float64(quantity)
	for _, a := range addons {
		total += a.Price * float64(a.Quantity)
	}
	return round2(total)
}

// LineTax estimates the tax on one line from the item's tax group rate.
func LineTax(lineAmount, ratePercent float64) float64 {
	return round2(lineAmount * ratePercent / 100)
}

// RecomputeTotals derives order aggregates as the sum over all
// non-cancelled items. Totals never drift from item-level truth: every
// mutation calls this before writing the order row.
func RecomputeTotals(items []models.OrderItem) (subtotal, tax, total float64) {
	for _, item := range items {
		if item.Status == models.ItemCancelled {
			continue
		}
		subtotal += item.TotalPrice
		tax += item.TaxAmount
	}
	subtotal = round2(subtotal)
	tax = round2(tax)
	total = round2(subtotal + tax)
	return subtotal, tax, total
}
